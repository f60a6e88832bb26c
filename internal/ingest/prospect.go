package ingest

import "github.com/sells-group/funnel-analytics/internal/model"

// CountSentToCampaign derives the sent counter from a prospect list: an
// entry counts once its SentToCampaignID is non-nil and non-empty.
func CountSentToCampaign(prospects []model.Prospect) int {
	n := 0
	for _, pr := range prospects {
		if pr.SentToCampaignID != nil && *pr.SentToCampaignID != "" {
			n++
		}
	}
	return n
}

// SummarizeProspects builds a pipeline snapshot from a raw prospect list.
// The status counts intentionally do not include queued prospects as a
// separate field; they are part of TotalUploaded only.
func SummarizeProspects(prospects []model.Prospect) model.PipelineSnapshot {
	snap := model.PipelineSnapshot{
		TotalUploaded:       len(prospects),
		SentToCampaignCount: CountSentToCampaign(prospects),
	}
	for _, pr := range prospects {
		switch pr.Status {
		case model.ProspectStatusComplete:
			snap.Completed++
		case model.ProspectStatusProcessing:
			snap.Processing++
		case model.ProspectStatusFailed:
			snap.Failed++
		}
	}
	return snap
}

// SanitizeSummary clamps negative counters in an externally supplied
// pipeline summary. Sent exceeding completed is left alone: upstream can
// legitimately violate that relationship and the aggregator tolerates it.
func SanitizeSummary(snap model.PipelineSnapshot) model.PipelineSnapshot {
	clamp := func(n int) int {
		if n < 0 {
			return 0
		}
		return n
	}
	return model.PipelineSnapshot{
		TotalUploaded:       clamp(snap.TotalUploaded),
		Completed:           clamp(snap.Completed),
		Processing:          clamp(snap.Processing),
		Failed:              clamp(snap.Failed),
		SentToCampaignCount: clamp(snap.SentToCampaignCount),
	}
}
