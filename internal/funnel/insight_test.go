package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/funnel-analytics/internal/model"
)

func liveFixture() (model.PipelineSnapshot, model.CampaignStats, model.FunnelSnapshot) {
	pipe := model.PipelineSnapshot{
		TotalUploaded:       1200,
		Completed:           900,
		Processing:          250,
		Failed:              50,
		SentToCampaignCount: 600,
	}
	stats := model.CampaignStats{
		EmailsSent:       600,
		EmailsOpened:     240,
		EmailsClicked:    60,
		EmailsReplied:    30,
		OverallOpenRate:  40.0,
		OverallClickRate: 10.0,
		OverallReplyRate: 5.0,
	}
	return pipe, stats, Aggregate(pipe, stats, model.StatusLive)
}

func TestInsights_BundlePerStageInOrder(t *testing.T) {
	pipe, stats, f := liveFixture()

	bundles := Insights(f, pipe, stats, model.StatusLive)

	require.Len(t, bundles, 5)
	for i, key := range model.StageKeys {
		assert.Equal(t, key, bundles[i].StageKey)
		assert.GreaterOrEqual(t, len(bundles[i].Insights), 3, string(key))
		assert.LessOrEqual(t, len(bundles[i].Insights), 5, string(key))
		assert.GreaterOrEqual(t, len(bundles[i].Recommendations), 2, string(key))
		assert.LessOrEqual(t, len(bundles[i].Recommendations), 3, string(key))
	}
}

func TestInsights_Deterministic(t *testing.T) {
	pipe, stats, f := liveFixture()

	first := Insights(f, pipe, stats, model.StatusLive)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Insights(f, pipe, stats, model.StatusLive))
	}
}

func TestInsights_GoldenLiveOutput(t *testing.T) {
	pipe, stats, f := liveFixture()

	bundles := Insights(f, pipe, stats, model.StatusLive)

	uploaded := bundles[0]
	assert.Equal(t, []string{
		"1,200 contacts uploaded into the research pipeline",
		"250 prospects are currently being researched",
		"50 prospects failed research and need attention",
	}, uploaded.Insights)

	opened := bundles[3]
	assert.Equal(t, []string{
		"240 emails opened out of 600 sent",
		"Overall open rate is 40.0%",
		"Click-to-open rate is 25%",
		"Open rate is strong for cold outreach",
	}, opened.Insights)

	replied := bundles[4]
	assert.Contains(t, replied.Insights, "End-to-end conversion from upload to reply is 2.50%")
	assert.Contains(t, replied.Insights, "Reply rate is strong for cold outreach")
}

func TestInsights_SentStageAlwaysThreeInsights(t *testing.T) {
	tests := []struct {
		name string
		pipe model.PipelineSnapshot
		want string
	}{
		{
			name: "sends remaining",
			pipe: model.PipelineSnapshot{TotalUploaded: 1200, Completed: 900, SentToCampaignCount: 600},
			want: "300 completed prospects remain to be sent",
		},
		{
			name: "nothing sent yet",
			pipe: model.PipelineSnapshot{TotalUploaded: 100, Completed: 80},
			want: "Completed prospects are waiting to be sent",
		},
		{
			name: "fully sent",
			pipe: model.PipelineSnapshot{TotalUploaded: 100, Completed: 80, SentToCampaignCount: 80},
			want: "All completed research has been sent",
		},
		{
			name: "empty pipeline",
			pipe: model.PipelineSnapshot{},
			want: "All completed research has been sent",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Aggregate(tt.pipe, model.CampaignStats{}, model.StatusLive)
			sent := Insights(f, tt.pipe, model.CampaignStats{}, model.StatusLive)[2]

			require.GreaterOrEqual(t, len(sent.Insights), 3)
			assert.Contains(t, sent.Insights, tt.want)
		})
	}
}

func TestInsights_NotConfiguredSwapsSentRecommendation(t *testing.T) {
	pipe := model.PipelineSnapshot{TotalUploaded: 10, Completed: 5}
	f := Aggregate(pipe, model.CampaignStats{}, model.StatusNotConfigured)

	bundles := Insights(f, pipe, model.CampaignStats{}, model.StatusNotConfigured)
	sent := bundles[2]

	assert.Contains(t, sent.Recommendations, "Connect an outreach account and select a default campaign")
	assert.NotContains(t, sent.Recommendations, "Monitor campaign performance as sends accumulate")
}

func TestInsights_LiveSentRecommendation(t *testing.T) {
	pipe, stats, f := liveFixture()

	bundles := Insights(f, pipe, stats, model.StatusLive)
	sent := bundles[2]

	assert.Contains(t, sent.Recommendations, "Monitor campaign performance as sends accumulate")
}

func TestInsights_RateLimitedEngagementStages(t *testing.T) {
	pipe := model.PipelineSnapshot{TotalUploaded: 100, Completed: 80}
	f := Aggregate(pipe, model.CampaignStats{}, model.StatusRateLimited)

	bundles := Insights(f, pipe, model.CampaignStats{}, model.StatusRateLimited)

	for _, idx := range []int{3, 4} {
		b := bundles[idx]
		assert.Contains(t, b.Insights, "The outreach service is temporarily unavailable, try refreshing shortly")
		assert.Contains(t, b.Recommendations, "Retry the refresh in a few minutes")
	}
}

func TestInsights_EmptyPipelineRecommendsUpload(t *testing.T) {
	f := Aggregate(model.PipelineSnapshot{}, model.CampaignStats{}, model.StatusNotConfigured)

	bundles := Insights(f, model.PipelineSnapshot{}, model.CampaignStats{}, model.StatusNotConfigured)

	assert.Contains(t, bundles[0].Recommendations, "Upload a contact list to start filling the funnel")
}
