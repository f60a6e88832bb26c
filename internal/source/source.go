// Package source abstracts where funnel inputs come from. The orchestrator
// talks to a DataSource and does not know whether it is backed by the live
// store and outreach service or by a YAML fixture.
package source

import (
	"context"

	"github.com/sells-group/funnel-analytics/internal/model"
)

// DataSource supplies the three inputs a funnel computation needs.
type DataSource interface {
	// PipelineSnapshot returns the current prospect-processing counters.
	PipelineSnapshot(ctx context.Context) (model.PipelineSnapshot, error)

	// CampaignConfig returns the configured accounts and campaigns plus
	// the legacy single-key configuration, if any.
	CampaignConfig(ctx context.Context) (model.CampaignConfig, model.LegacyConfig, error)

	// CampaignStatistics fetches engagement statistics for the given
	// selection. A failed or skipped fetch is reported through the
	// outcome, not the error: the returned error is reserved for
	// context cancellation.
	CampaignStatistics(ctx context.Context, sel model.ActiveSelection) (model.CampaignStats, model.FetchOutcome, error)
}
