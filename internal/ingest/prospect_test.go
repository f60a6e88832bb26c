package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/funnel-analytics/internal/model"
)

func strPtr(s string) *string { return &s }

func TestCountSentToCampaign(t *testing.T) {
	prospects := []model.Prospect{
		{ID: "1", SentToCampaignID: strPtr("c1")},
		{ID: "2"},
		{ID: "3", SentToCampaignID: strPtr("")},
		{ID: "4", SentToCampaignID: strPtr("c2")},
	}
	assert.Equal(t, 2, CountSentToCampaign(prospects))
}

func TestCountSentToCampaign_Empty(t *testing.T) {
	assert.Equal(t, 0, CountSentToCampaign(nil))
}

func TestSummarizeProspects(t *testing.T) {
	prospects := []model.Prospect{
		{Status: model.ProspectStatusComplete, SentToCampaignID: strPtr("c1")},
		{Status: model.ProspectStatusComplete},
		{Status: model.ProspectStatusProcessing},
		{Status: model.ProspectStatusFailed},
		{Status: model.ProspectStatusQueued},
	}

	snap := SummarizeProspects(prospects)

	assert.Equal(t, model.PipelineSnapshot{
		TotalUploaded:       5,
		Completed:           2,
		Processing:          1,
		Failed:              1,
		SentToCampaignCount: 1,
	}, snap)
}

func TestSummarizeProspects_CountsNeedNotSumToTotal(t *testing.T) {
	// Queued prospects are only part of the total.
	snap := SummarizeProspects([]model.Prospect{
		{Status: model.ProspectStatusQueued},
		{Status: model.ProspectStatusQueued},
	})
	assert.Equal(t, 2, snap.TotalUploaded)
	assert.Equal(t, 0, snap.Completed+snap.Processing+snap.Failed)
}

func TestSanitizeSummary(t *testing.T) {
	snap := SanitizeSummary(model.PipelineSnapshot{
		TotalUploaded: -1,
		Completed:     5,
		Processing:    -2,
		Failed:        0,
		// Sent exceeding completed is allowed through.
		SentToCampaignCount: 9,
	})

	assert.Equal(t, model.PipelineSnapshot{
		Completed:           5,
		SentToCampaignCount: 9,
	}, snap)
}
