package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/funnel-analytics/internal/model"
)

func TestClassify(t *testing.T) {
	account := &model.AccountRef{ID: "a1"}

	tests := []struct {
		name    string
		sel     model.ActiveSelection
		legacy  model.LegacyConfig
		outcome model.FetchOutcome
		want    model.AvailabilityStatus
	}{
		{
			name:    "configured success is live",
			sel:     model.ActiveSelection{Account: account},
			outcome: model.FetchSuccess,
			want:    model.StatusLive,
		},
		{
			name:    "unconfigured success is still live",
			outcome: model.FetchSuccess,
			want:    model.StatusLive,
		},
		{
			name:    "configured failure is rate limited",
			sel:     model.ActiveSelection{Account: account},
			outcome: model.FetchFailure,
			want:    model.StatusRateLimited,
		},
		{
			name:    "configured pending is rate limited",
			sel:     model.ActiveSelection{Account: account},
			outcome: model.FetchPending,
			want:    model.StatusRateLimited,
		},
		{
			name:    "legacy key failure is rate limited",
			legacy:  model.LegacyConfig{HasAPIKey: true},
			outcome: model.FetchFailure,
			want:    model.StatusRateLimited,
		},
		{
			name:    "unconfigured failure is not configured",
			outcome: model.FetchFailure,
			want:    model.StatusNotConfigured,
		},
		{
			name:    "unconfigured pending is not configured",
			outcome: model.FetchPending,
			want:    model.StatusNotConfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.sel, tt.legacy, tt.outcome))
		})
	}
}
