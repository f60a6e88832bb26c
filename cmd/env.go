package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/funnel-analytics/internal/model"
	"github.com/sells-group/funnel-analytics/internal/orchestrator"
	"github.com/sells-group/funnel-analytics/internal/source"
	"github.com/sells-group/funnel-analytics/internal/store"
	"github.com/sells-group/funnel-analytics/pkg/outreach"
)

// funnelEnv holds the composed store, data source, and orchestrator used
// by the funnel/status/serve/export commands.
type funnelEnv struct {
	Store  store.Store // nil in fixture mode
	Source source.DataSource
	Orch   *orchestrator.Orchestrator
}

// Close releases resources held by the environment.
func (fe *funnelEnv) Close() {
	if fe.Store != nil {
		_ = fe.Store.Close()
	}
}

// initEnv composes the data source from config and performs the initial
// load. Fixture mode wins over the store when both are configured.
// Callers should defer env.Close().
func initEnv(ctx context.Context, mode string) (*funnelEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	env := &funnelEnv{}

	if cfg.Fixture.Path != "" {
		src, err := source.NewFixture(cfg.Fixture.Path)
		if err != nil {
			return nil, err
		}
		env.Source = src
		zap.L().Info("using fixture source", zap.String("path", cfg.Fixture.Path))
	} else {
		st, err := initStore(ctx)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
		env.Store = st
		env.Source = source.NewLive(st, initOutreachClient(), legacyFromConfig())
	}

	env.Orch = orchestrator.New(env.Source,
		orchestrator.WithStaleAfter(time.Duration(cfg.Funnel.StaleAfterMinutes)*time.Minute))
	if err := env.Orch.Load(ctx); err != nil {
		env.Close()
		return nil, err
	}

	return env, nil
}

// initStore opens the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		zap.L().Debug("opening sqlite store", zap.String("path", cfg.Store.DatabaseURL))
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		zap.L().Debug("opening postgres store")
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initOutreachClient builds the outreach client, or nil when no API key
// is configured.
func initOutreachClient() outreach.Client {
	if cfg.Outreach.APIKey == "" {
		zap.L().Debug("FUNNEL_OUTREACH_API_KEY not set, engagement data unavailable")
		return nil
	}

	opts := []outreach.Option{
		outreach.WithRateLimit(cfg.Outreach.RequestsPerSec, cfg.Outreach.Burst),
	}
	if cfg.Outreach.BaseURL != "" {
		opts = append(opts, outreach.WithBaseURL(cfg.Outreach.BaseURL))
	}
	return outreach.NewClient(cfg.Outreach.APIKey, opts...)
}

func legacyFromConfig() model.LegacyConfig {
	return model.LegacyConfig{
		HasAPIKey:  cfg.Outreach.APIKey != "",
		CampaignID: cfg.Outreach.LegacyCampaignID,
	}
}
