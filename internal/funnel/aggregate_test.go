package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/funnel-analytics/internal/model"
)

func TestAggregate_ScenarioA_SentGuardHoldsAtZero(t *testing.T) {
	pipe := model.PipelineSnapshot{
		TotalUploaded:       100,
		Completed:           80,
		Processing:          15,
		Failed:              5,
		SentToCampaignCount: 0,
	}

	f := Aggregate(pipe, model.CampaignStats{}, model.StatusLive)

	assert.Equal(t, 80.0, f.Stage(model.StageResearched).PercentOfPrevious)
	// completed > 0 but sent = 0: the double guard still reports 0.
	assert.Equal(t, 0.0, f.Stage(model.StageSent).PercentOfPrevious)
	assert.Equal(t, 0, f.Stage(model.StageSent).Value)
}

func TestAggregate_ScenarioB_SentAndConversion(t *testing.T) {
	pipe := model.PipelineSnapshot{
		TotalUploaded:       100,
		Completed:           80,
		SentToCampaignCount: 40,
	}
	stats := model.CampaignStats{EmailsReplied: 8}

	f := Aggregate(pipe, stats, model.StatusLive)

	assert.Equal(t, 50.0, f.Stage(model.StageSent).PercentOfPrevious)
	assert.Equal(t, 8.00, f.EndToEndConversionRate)
}

func TestAggregate_ScenarioD_ExternalStagesZeroInternalPopulated(t *testing.T) {
	pipe := model.PipelineSnapshot{
		TotalUploaded: 50,
		Completed:     30,
		Processing:    20,
	}

	// Fetch failed, nothing configured: zero-valued stats snapshot.
	f := Aggregate(pipe, model.CampaignStats{}, model.StatusNotConfigured)

	assert.Equal(t, 50, f.Stage(model.StageUploaded).Value)
	assert.Equal(t, 30, f.Stage(model.StageResearched).Value)
	assert.Equal(t, 0, f.Stage(model.StageSent).Value)
	assert.Equal(t, 0, f.Stage(model.StageOpened).Value)
	assert.Equal(t, 0, f.Stage(model.StageReplied).Value)
	assert.Equal(t, 0.0, f.EndToEndConversionRate)
}

func TestAggregate_ZeroUploadedProducesNoArtifacts(t *testing.T) {
	f := Aggregate(model.PipelineSnapshot{}, model.CampaignStats{}, model.StatusLive)

	for _, s := range f.Stages {
		assert.Equal(t, 0, s.Value, string(s.Key))
		if s.Key != model.StageUploaded {
			assert.Equal(t, 0.0, s.PercentOfPrevious, string(s.Key))
		}
		assert.False(t, s.PercentOfPrevious != s.PercentOfPrevious, "NaN percent for %s", s.Key)
	}
	assert.Equal(t, 0.0, f.EndToEndConversionRate)
}

func TestAggregate_StageOrderAndLabels(t *testing.T) {
	f := Aggregate(model.PipelineSnapshot{}, model.CampaignStats{}, model.StatusLive)

	require.Len(t, f.Stages, 5)
	for i, key := range model.StageKeys {
		assert.Equal(t, key, f.Stages[i].Key)
		assert.NotEmpty(t, f.Stages[i].Label)
		assert.NotEmpty(t, f.Stages[i].Color)
	}
}

func TestAggregate_OpenedUsesSuppliedRateNotLocalRatio(t *testing.T) {
	pipe := model.PipelineSnapshot{TotalUploaded: 100, Completed: 100, SentToCampaignCount: 10}
	stats := model.CampaignStats{
		EmailsSent:       500, // service sends to contacts beyond the uploaded set
		EmailsOpened:     200,
		OverallOpenRate:  40.0,
		OverallReplyRate: 3.4,
	}

	f := Aggregate(pipe, stats, model.StatusLive)

	// 200/10 would be 2000%; the supplied 40% wins.
	assert.Equal(t, 40.0, f.Stage(model.StageOpened).PercentOfPrevious)
	assert.Equal(t, 200, f.Stage(model.StageOpened).Value)
	assert.Equal(t, 3.4, f.Stage(model.StageReplied).PercentOfPrevious)
}

func TestAggregate_SuppliedRatesPassThroughUnrounded(t *testing.T) {
	stats := model.CampaignStats{OverallOpenRate: 21.7, OverallReplyRate: 3.4}

	f := Aggregate(model.PipelineSnapshot{TotalUploaded: 100}, stats, model.StatusLive)

	assert.Equal(t, 21.7, f.Stage(model.StageOpened).PercentOfPrevious)
	assert.Equal(t, 3.4, f.Stage(model.StageReplied).PercentOfPrevious)
}

func TestAggregate_Idempotent(t *testing.T) {
	pipe := model.PipelineSnapshot{TotalUploaded: 321, Completed: 200, Processing: 100, Failed: 21, SentToCampaignCount: 150}
	stats := model.CampaignStats{EmailsSent: 150, EmailsOpened: 60, EmailsClicked: 12, EmailsReplied: 7, OverallOpenRate: 40, OverallClickRate: 8, OverallReplyRate: 4.7}

	first := Aggregate(pipe, stats, model.StatusLive)
	second := Aggregate(pipe, stats, model.StatusLive)
	assert.Equal(t, first, second)
}

func TestAggregate_NegativeInputsClamped(t *testing.T) {
	pipe := model.PipelineSnapshot{TotalUploaded: -5, Completed: -1, SentToCampaignCount: -3}
	stats := model.CampaignStats{EmailsOpened: -2, OverallOpenRate: -10, OverallReplyRate: 250}

	f := Aggregate(pipe, stats, model.StatusLive)

	for _, s := range f.Stages {
		assert.GreaterOrEqual(t, s.Value, 0, string(s.Key))
		assert.GreaterOrEqual(t, s.PercentOfPrevious, 0.0, string(s.Key))
		assert.LessOrEqual(t, s.PercentOfPrevious, 100.0, string(s.Key))
	}
}

func TestResearchCompletionRate_Monotonic(t *testing.T) {
	prev := 0.0
	for completed := 0; completed <= 100; completed += 5 {
		rate := ResearchCompletionRate(model.PipelineSnapshot{TotalUploaded: 100, Completed: completed})
		assert.GreaterOrEqual(t, rate, prev)
		prev = rate
	}
}

func TestSentRate_Rounding(t *testing.T) {
	// 1/3 → 33%, 2/3 → 67%.
	assert.Equal(t, 33.0, SentRate(model.PipelineSnapshot{Completed: 3, SentToCampaignCount: 1}))
	assert.Equal(t, 67.0, SentRate(model.PipelineSnapshot{Completed: 3, SentToCampaignCount: 2}))
}

func TestEndToEndConversionRate_TwoDecimals(t *testing.T) {
	rate := EndToEndConversionRate(
		model.PipelineSnapshot{TotalUploaded: 300},
		model.CampaignStats{EmailsReplied: 7},
	)
	assert.Equal(t, 2.33, rate)
}

func TestEndToEndConversionRate_ZeroGuards(t *testing.T) {
	assert.Equal(t, 0.0, EndToEndConversionRate(model.PipelineSnapshot{}, model.CampaignStats{EmailsReplied: 5}))
	assert.Equal(t, 0.0, EndToEndConversionRate(model.PipelineSnapshot{TotalUploaded: 10}, model.CampaignStats{}))
}

func TestClickToOpenRate(t *testing.T) {
	assert.Equal(t, 25.0, ClickToOpenRate(model.CampaignStats{EmailsOpened: 40, EmailsClicked: 10}))
	assert.Equal(t, 0.0, ClickToOpenRate(model.CampaignStats{EmailsOpened: 0, EmailsClicked: 10}))
	assert.Equal(t, 0.0, ClickToOpenRate(model.CampaignStats{EmailsOpened: 40, EmailsClicked: 0}))
}
