package funnel

import (
	"math"

	"github.com/sells-group/funnel-analytics/internal/model"
)

// Stage display metadata, in canonical funnel order.
var stageMeta = []struct {
	key   model.StageKey
	label string
	color string
}{
	{model.StageUploaded, "Contacts Uploaded", "#6366f1"},
	{model.StageResearched, "Research Completed", "#8b5cf6"},
	{model.StageSent, "Sent to Outreach", "#3b82f6"},
	{model.StageOpened, "Emails Opened", "#f59e0b"},
	{model.StageReplied, "Replies Received", "#10b981"},
}

// ratio returns numerator/denominator*100, or 0 when the denominator is
// zero. Never NaN or Inf.
func ratio(numerator, denominator int) float64 {
	if denominator <= 0 {
		return 0
	}
	return float64(numerator) / float64(denominator) * 100
}

// ResearchCompletionRate is the percentage of uploaded prospects whose
// research finished, rounded to a whole percent.
func ResearchCompletionRate(p model.PipelineSnapshot) float64 {
	return math.Round(ratio(p.Completed, p.TotalUploaded))
}

// SentRate is the percentage of completed prospects pushed to the
// outreach service, rounded to a whole percent.
//
// The double guard (completed>0 AND sent>0) is deliberate and must stay:
// it matches the long-standing dashboard behavior. For in-range inputs it
// is observationally equivalent to guarding on completed alone (a valid
// zero-send state reports 0 either way), but the equivalence holds only
// because sent can never be negative, so do not "simplify" it without
// re-verifying the sent=0 boundary.
func SentRate(p model.PipelineSnapshot) float64 {
	if p.Completed > 0 && p.SentToCampaignCount > 0 {
		return math.Round(ratio(p.SentToCampaignCount, p.Completed))
	}
	return 0
}

// EndToEndConversionRate is replies as a percentage of everything
// uploaded, rounded to two decimals. This is the only rate the engine
// derives across the internal/external boundary, and it only trusts
// totals it owns.
func EndToEndConversionRate(p model.PipelineSnapshot, c model.CampaignStats) float64 {
	if p.TotalUploaded > 0 && c.EmailsReplied > 0 {
		return math.Round(ratio(c.EmailsReplied, p.TotalUploaded)*100) / 100
	}
	return 0
}

// ClickToOpenRate is clicks as a percentage of opens, rounded to a whole
// percent. Stage-detail only; it never appears as a funnel stage percent.
func ClickToOpenRate(c model.CampaignStats) float64 {
	if c.EmailsOpened > 0 && c.EmailsClicked > 0 {
		return math.Round(ratio(c.EmailsClicked, c.EmailsOpened))
	}
	return 0
}

// sanitizePipeline clamps negative counters to zero. Upstream data can be
// partial or malformed; the aggregator never throws it back.
func sanitizePipeline(p model.PipelineSnapshot) model.PipelineSnapshot {
	clamp := func(n int) int {
		if n < 0 {
			return 0
		}
		return n
	}
	return model.PipelineSnapshot{
		TotalUploaded:       clamp(p.TotalUploaded),
		Completed:           clamp(p.Completed),
		Processing:          clamp(p.Processing),
		Failed:              clamp(p.Failed),
		SentToCampaignCount: clamp(p.SentToCampaignCount),
	}
}

// sanitizeStats clamps negative counters to zero and rates into [0, 100].
func sanitizeStats(c model.CampaignStats) model.CampaignStats {
	clamp := func(n int) int {
		if n < 0 {
			return 0
		}
		return n
	}
	clampRate := func(r float64) float64 {
		switch {
		case r < 0 || math.IsNaN(r):
			return 0
		case r > 100:
			return 100
		}
		return r
	}
	c.EmailsSent = clamp(c.EmailsSent)
	c.EmailsOpened = clamp(c.EmailsOpened)
	c.EmailsClicked = clamp(c.EmailsClicked)
	c.EmailsReplied = clamp(c.EmailsReplied)
	c.OverallOpenRate = clampRate(c.OverallOpenRate)
	c.OverallClickRate = clampRate(c.OverallClickRate)
	c.OverallReplyRate = clampRate(c.OverallReplyRate)
	return c
}

// Aggregate combines the internal pipeline snapshot and the external
// campaign statistics into the five-stage funnel. Each stage's value is
// its raw counter; the per-stage percent is the documented rate for that
// stage, not a generic chain ratio:
//
//	uploaded    percent 100 (head of funnel, fixed)
//	researched  completed / uploaded (owned data)
//	sent        sent / completed (owned data, see SentRate)
//	opened      the service-supplied overall open rate; the service's
//	            denominator can include contacts outside the uploaded set,
//	            so a local opened/sent ratio would be wrong
//	replied     the service-supplied overall reply rate, same reason
//
// When status is not live, the external stages (sent through replied use
// external counters where applicable) simply carry whatever zero-valued
// snapshot was passed in; the aggregator itself never branches on the
// status for stage math. Deterministic and idempotent: identical inputs
// produce identical snapshots.
func Aggregate(p model.PipelineSnapshot, c model.CampaignStats, _ model.AvailabilityStatus) model.FunnelSnapshot {
	p = sanitizePipeline(p)
	c = sanitizeStats(c)

	values := []int{
		p.TotalUploaded,
		p.Completed,
		p.SentToCampaignCount,
		c.EmailsOpened,
		c.EmailsReplied,
	}
	percents := []float64{
		100,
		ResearchCompletionRate(p),
		SentRate(p),
		c.OverallOpenRate,
		c.OverallReplyRate,
	}

	stages := make([]model.FunnelStage, len(stageMeta))
	for i, m := range stageMeta {
		stages[i] = model.FunnelStage{
			Key:               m.key,
			Label:             m.label,
			Value:             values[i],
			PercentOfPrevious: percents[i],
			Color:             m.color,
		}
	}

	return model.FunnelSnapshot{
		Stages:                 stages,
		EndToEndConversionRate: EndToEndConversionRate(p, c),
	}
}
