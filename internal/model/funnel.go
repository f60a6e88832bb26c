package model

// AvailabilityStatus classifies whether the external engagement data can
// be trusted right now. Three-way on purpose: the dashboard has to tell
// "integration is temporarily failing" apart from "never set up".
type AvailabilityStatus string

const (
	StatusLive          AvailabilityStatus = "live"
	StatusRateLimited   AvailabilityStatus = "rate_limited"
	StatusNotConfigured AvailabilityStatus = "not_configured"
)

// StageKey identifies one of the five funnel checkpoints.
type StageKey string

const (
	StageUploaded   StageKey = "uploaded"
	StageResearched StageKey = "researched"
	StageSent       StageKey = "sent"
	StageOpened     StageKey = "opened"
	StageReplied    StageKey = "replied"
)

// StageKeys is the canonical funnel order.
var StageKeys = []StageKey{StageUploaded, StageResearched, StageSent, StageOpened, StageReplied}

// FunnelStage is a single checkpoint in the conversion funnel. Value is
// the raw counter for that stage, never re-derived from neighbors.
// PercentOfPrevious is the documented per-stage rate relative to its
// conventional predecessor, not a generic value[i]/value[i-1].
type FunnelStage struct {
	Key               StageKey `json:"key"`
	Label             string   `json:"label"`
	Value             int      `json:"value"`
	PercentOfPrevious float64  `json:"percent_of_previous"`
	Color             string   `json:"color"`
}

// FunnelSnapshot is the complete five-stage funnel, rebuilt from scratch
// on every recomputation.
type FunnelSnapshot struct {
	Stages                 []FunnelStage `json:"stages"`
	EndToEndConversionRate float64       `json:"end_to_end_conversion_rate"`
}

// Stage returns the stage with the given key, or a zero stage if absent.
func (f FunnelSnapshot) Stage(key StageKey) FunnelStage {
	for _, s := range f.Stages {
		if s.Key == key {
			return s
		}
	}
	return FunnelStage{Key: key}
}

// InsightBundle holds the generated insight and recommendation text for
// one funnel stage.
type InsightBundle struct {
	StageKey        StageKey `json:"stage_key"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}
