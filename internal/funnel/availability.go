package funnel

import "github.com/sells-group/funnel-analytics/internal/model"

// Classify maps the campaign-statistics fetch outcome and the resolved
// configuration onto an availability status. A failed or still-pending
// fetch with configuration present means "temporarily unavailable, try
// again" (rate_limited); the same outcome with no configuration at all
// means "go set it up" (not_configured). A successful fetch is live
// regardless of configuration shape.
func Classify(sel model.ActiveSelection, legacy model.LegacyConfig, outcome model.FetchOutcome) model.AvailabilityStatus {
	if outcome == model.FetchSuccess {
		return model.StatusLive
	}
	if sel.Account != nil || legacy.HasAPIKey {
		return model.StatusRateLimited
	}
	return model.StatusNotConfigured
}
