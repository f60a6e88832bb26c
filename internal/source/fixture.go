package source

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/funnel-analytics/internal/ingest"
	"github.com/sells-group/funnel-analytics/internal/model"
)

// FixtureSource serves funnel inputs from a YAML file. Used for demos and
// local development without a database or API key.
type FixtureSource struct {
	doc fixtureDoc
}

type fixtureDoc struct {
	Pipeline struct {
		TotalUploaded       int `yaml:"total_uploaded"`
		Completed           int `yaml:"completed"`
		Processing          int `yaml:"processing"`
		Failed              int `yaml:"failed"`
		SentToCampaignCount int `yaml:"sent_to_campaign_count"`
	} `yaml:"pipeline"`
	Accounts []struct {
		ID      string `yaml:"id"`
		Name    string `yaml:"name"`
		Default bool   `yaml:"default"`
	} `yaml:"accounts"`
	Campaigns []struct {
		ID         string `yaml:"id"`
		CampaignID string `yaml:"campaign_id"`
		Name       string `yaml:"name"`
		Default    bool   `yaml:"default"`
		AccountID  string `yaml:"account_id"`
	} `yaml:"campaigns"`
	Legacy struct {
		HasAPIKey  bool   `yaml:"has_api_key"`
		CampaignID string `yaml:"campaign_id"`
	} `yaml:"legacy"`
	Statistics struct {
		// Outcome is success, failure, or pending.
		Outcome string `yaml:"outcome"`
		// Fields holds raw statistics keyed however the fixture author
		// spelled them; the usual alias resolution applies.
		Fields map[string]any `yaml:"fields"`
	} `yaml:"statistics"`
}

// NewFixture loads a fixture file from disk.
func NewFixture(path string) (*FixtureSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "source: read fixture")
	}

	var doc fixtureDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "source: unmarshal fixture")
	}
	return &FixtureSource{doc: doc}, nil
}

func (s *FixtureSource) PipelineSnapshot(_ context.Context) (model.PipelineSnapshot, error) {
	p := s.doc.Pipeline
	return ingest.SanitizeSummary(model.PipelineSnapshot{
		TotalUploaded:       p.TotalUploaded,
		Completed:           p.Completed,
		Processing:          p.Processing,
		Failed:              p.Failed,
		SentToCampaignCount: p.SentToCampaignCount,
	}), nil
}

func (s *FixtureSource) CampaignConfig(_ context.Context) (model.CampaignConfig, model.LegacyConfig, error) {
	var cfg model.CampaignConfig
	for _, a := range s.doc.Accounts {
		cfg.Accounts = append(cfg.Accounts, model.AccountRef{
			ID:        a.ID,
			Name:      a.Name,
			IsDefault: a.Default,
		})
	}
	for _, c := range s.doc.Campaigns {
		cfg.Campaigns = append(cfg.Campaigns, model.CampaignRef{
			ID:                 c.ID,
			ExternalCampaignID: c.CampaignID,
			Name:               c.Name,
			IsDefault:          c.Default,
			AccountID:          c.AccountID,
		})
	}
	legacy := model.LegacyConfig{
		HasAPIKey:  s.doc.Legacy.HasAPIKey,
		CampaignID: s.doc.Legacy.CampaignID,
	}
	return cfg, legacy, nil
}

func (s *FixtureSource) CampaignStatistics(_ context.Context, _ model.ActiveSelection) (model.CampaignStats, model.FetchOutcome, error) {
	switch s.doc.Statistics.Outcome {
	case "success":
		return ingest.ResolveStatistics(s.doc.Statistics.Fields), model.FetchSuccess, nil
	case "failure":
		return model.CampaignStats{}, model.FetchFailure, nil
	default:
		return model.CampaignStats{}, model.FetchPending, nil
	}
}
