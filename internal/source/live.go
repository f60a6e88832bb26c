package source

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/funnel-analytics/internal/funnel"
	"github.com/sells-group/funnel-analytics/internal/ingest"
	"github.com/sells-group/funnel-analytics/internal/model"
	"github.com/sells-group/funnel-analytics/internal/store"
	"github.com/sells-group/funnel-analytics/pkg/outreach"
)

// LiveSource reads pipeline counters from the store and engagement
// statistics from the outreach service.
type LiveSource struct {
	store  store.Store
	client outreach.Client
	legacy model.LegacyConfig
}

// NewLive creates a LiveSource. client may be nil when no API key is
// configured; statistics fetches then report a pending outcome.
func NewLive(st store.Store, client outreach.Client, legacy model.LegacyConfig) *LiveSource {
	return &LiveSource{store: st, client: client, legacy: legacy}
}

func (s *LiveSource) PipelineSnapshot(ctx context.Context) (model.PipelineSnapshot, error) {
	snap, err := s.store.PipelineSummary(ctx)
	if err != nil {
		return model.PipelineSnapshot{}, eris.Wrap(err, "source: pipeline summary")
	}
	return ingest.SanitizeSummary(*snap), nil
}

// CampaignConfig lists accounts from the store and the campaigns of the
// account the resolver would pick. Campaigns of other accounts are not
// loaded; the resolver only ever looks inside the selected account.
func (s *LiveSource) CampaignConfig(ctx context.Context) (model.CampaignConfig, model.LegacyConfig, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return model.CampaignConfig{}, s.legacy, eris.Wrap(err, "source: list accounts")
	}

	cfg := model.CampaignConfig{Accounts: accounts}
	if account := funnel.SelectAccount(accounts); account != nil {
		campaigns, err := s.store.ListCampaigns(ctx, account.ID)
		if err != nil {
			return model.CampaignConfig{}, s.legacy, eris.Wrapf(err, "source: list campaigns for %s", account.ID)
		}
		cfg.Campaigns = campaigns
	}
	return cfg, s.legacy, nil
}

func (s *LiveSource) CampaignStatistics(ctx context.Context, sel model.ActiveSelection) (model.CampaignStats, model.FetchOutcome, error) {
	if s.client == nil || (sel.Account == nil && sel.Campaign == nil) {
		return model.CampaignStats{}, model.FetchPending, nil
	}

	var accountID, campaignID string
	if sel.Account != nil {
		accountID = sel.Account.ID
	}
	if sel.Campaign != nil {
		campaignID = sel.Campaign.ExternalCampaignID
	}

	resp, err := s.client.CampaignStatistics(ctx, accountID, campaignID)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return model.CampaignStats{}, model.FetchFailure, err
		}
		zap.L().Warn("source: statistics fetch failed",
			zap.String("account_id", accountID),
			zap.String("campaign_id", campaignID),
			zap.Error(err))
		return model.CampaignStats{}, model.FetchFailure, nil
	}
	if !resp.Success {
		zap.L().Warn("source: statistics fetch rejected",
			zap.String("account_id", accountID),
			zap.String("campaign_id", campaignID))
		return model.CampaignStats{}, model.FetchFailure, nil
	}

	return ingest.ResolveStatistics(resp.Statistics), model.FetchSuccess, nil
}

// SyncRemoteConfig pulls accounts and campaigns from the outreach service
// into the store so the resolver sees current configuration. Used by the
// seed command and on-demand refreshes.
func (s *LiveSource) SyncRemoteConfig(ctx context.Context) error {
	if s.client == nil {
		return eris.New("source: no outreach client configured")
	}

	accounts, err := s.client.ListAccounts(ctx)
	if err != nil {
		return eris.Wrap(err, "source: sync accounts")
	}

	for _, a := range accounts {
		if err := s.store.UpsertAccount(ctx, model.AccountRef{
			ID:        a.ID,
			Name:      a.Name,
			IsDefault: a.Default,
		}); err != nil {
			return eris.Wrapf(err, "source: upsert account %s", a.ID)
		}

		campaigns, err := s.client.ListCampaigns(ctx, a.ID)
		if err != nil {
			return eris.Wrapf(err, "source: sync campaigns for %s", a.ID)
		}
		for _, c := range campaigns {
			if err := s.store.UpsertCampaign(ctx, model.CampaignRef{
				ID:                 c.ID,
				ExternalCampaignID: c.CampaignID,
				Name:               c.Name,
				IsDefault:          c.Default,
				AccountID:          c.AccountID,
			}); err != nil {
				return eris.Wrapf(err, "source: upsert campaign %s", c.ID)
			}
		}
	}

	zap.L().Info("source: remote config synced", zap.Int("accounts", len(accounts)))
	return nil
}
