// Package orchestrator owns the current funnel view. It holds the latest
// snapshot of each input, recomputes the full view whenever any input
// changes, and serves read copies to the API and CLI.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/funnel-analytics/internal/funnel"
	"github.com/sells-group/funnel-analytics/internal/model"
	"github.com/sells-group/funnel-analytics/internal/source"
)

// DefaultStaleAfter is how long a computed view stays fresh without any
// input update. Staleness is passive: nothing re-fetches on its own, the
// flag just tells consumers the view is old.
const DefaultStaleAfter = 30 * time.Minute

// View is the fully computed dashboard state. Returned by value, safe to
// hand out concurrently.
type View struct {
	Funnel     model.FunnelSnapshot     `json:"funnel"`
	Insights   []model.InsightBundle    `json:"insights"`
	Status     model.AvailabilityStatus `json:"status"`
	Selection  model.ActiveSelection    `json:"selection"`
	ComputedAt time.Time                `json:"computed_at"`
}

// Orchestrator reconciles pipeline counters, campaign configuration, and
// engagement statistics into a single consistent view. Each input stream
// carries its own sequence number; an update older than what is already
// held is dropped, so out-of-order delivery cannot roll the view back.
type Orchestrator struct {
	src        source.DataSource
	staleAfter time.Duration

	mu          sync.RWMutex
	pipeline    model.PipelineSnapshot
	config      model.CampaignConfig
	legacy      model.LegacyConfig
	stats       model.CampaignStats
	outcome     model.FetchOutcome
	pipelineSeq uint64
	configSeq   uint64
	statsSeq    uint64
	view        View
	loaded      bool
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithStaleAfter overrides the staleness threshold.
func WithStaleAfter(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.staleAfter = d
		}
	}
}

// New creates an orchestrator over the given data source. Call Load
// before serving views.
func New(src source.DataSource, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		src:        src,
		staleAfter: DefaultStaleAfter,
		outcome:    model.FetchPending,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Load performs the initial fetch: pipeline counters and campaign
// configuration concurrently, then statistics for whatever the resolver
// selects. Each input degrades independently: a failed fetch logs, leaves
// that input at its zero value, and never blocks the others. Load only
// errors on context cancellation.
func (o *Orchestrator) Load(ctx context.Context) error {
	var (
		pipe   model.PipelineSnapshot
		cfg    model.CampaignConfig
		legacy model.LegacyConfig
	)

	var g errgroup.Group
	g.Go(func() error {
		p, err := o.src.PipelineSnapshot(ctx)
		if err != nil {
			zap.L().Warn("orchestrator: pipeline load failed, starting empty", zap.Error(err))
			return nil
		}
		pipe = p
		return nil
	})
	g.Go(func() error {
		c, l, err := o.src.CampaignConfig(ctx)
		if err != nil {
			zap.L().Warn("orchestrator: config load failed, starting unconfigured", zap.Error(err))
			return nil
		}
		cfg, legacy = c, l
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "orchestrator: initial load")
	}

	sel := funnel.Resolve(cfg.Accounts, cfg.Campaigns, legacy)
	stats, outcome, err := o.src.CampaignStatistics(ctx, sel)
	if err != nil {
		return eris.Wrap(err, "orchestrator: initial statistics fetch")
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.pipeline = pipe
	o.config = cfg
	o.legacy = legacy
	o.stats = stats
	o.outcome = outcome
	o.pipelineSeq++
	o.configSeq++
	o.statsSeq++
	o.loaded = true
	o.recompute()

	zap.L().Info("orchestrator: loaded",
		zap.Int("uploaded", pipe.TotalUploaded),
		zap.Int("accounts", len(cfg.Accounts)),
		zap.String("status", string(o.view.Status)))
	return nil
}

// UpdatePipeline replaces the pipeline counters if seq is newer than the
// held update. Returns whether the update was applied.
func (o *Orchestrator) UpdatePipeline(snap model.PipelineSnapshot, seq uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if seq <= o.pipelineSeq {
		return false
	}
	o.pipelineSeq = seq
	o.pipeline = snap
	o.recompute()
	return true
}

// UpdateConfig replaces the campaign configuration if seq is newer than
// the held update. Returns whether the update was applied.
func (o *Orchestrator) UpdateConfig(cfg model.CampaignConfig, legacy model.LegacyConfig, seq uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if seq <= o.configSeq {
		return false
	}
	o.configSeq = seq
	o.config = cfg
	o.legacy = legacy
	o.recompute()
	return true
}

// UpdateStats replaces the engagement statistics if seq is newer than the
// held update. Returns whether the update was applied.
func (o *Orchestrator) UpdateStats(stats model.CampaignStats, outcome model.FetchOutcome, seq uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if seq <= o.statsSeq {
		return false
	}
	o.statsSeq = seq
	o.stats = stats
	o.outcome = outcome
	o.recompute()
	return true
}

// ReloadConfig re-reads campaign configuration from the source, for use
// after a configuration write (for example changing the default campaign).
func (o *Orchestrator) ReloadConfig(ctx context.Context) error {
	cfg, legacy, err := o.src.CampaignConfig(ctx)
	if err != nil {
		return eris.Wrap(err, "orchestrator: reload config")
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.configSeq++
	o.config = cfg
	o.legacy = legacy
	o.recompute()
	return nil
}

// ReloadPipeline re-reads the pipeline counters from the source, for use
// after a prospect write.
func (o *Orchestrator) ReloadPipeline(ctx context.Context) error {
	pipe, err := o.src.PipelineSnapshot(ctx)
	if err != nil {
		return eris.Wrap(err, "orchestrator: reload pipeline")
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.pipelineSeq++
	o.pipeline = pipe
	o.recompute()
	return nil
}

// Refresh re-fetches engagement statistics for the current selection and
// recomputes. Pipeline counters and configuration are not re-read; those
// arrive through their own update streams.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	o.mu.RLock()
	sel := o.view.Selection
	o.mu.RUnlock()

	stats, outcome, err := o.src.CampaignStatistics(ctx, sel)
	if err != nil {
		return eris.Wrap(err, "orchestrator: refresh statistics")
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.statsSeq++
	o.stats = stats
	o.outcome = outcome
	o.recompute()

	zap.L().Info("orchestrator: refreshed", zap.String("status", string(o.view.Status)))
	return nil
}

// View returns a copy of the current computed view.
func (o *Orchestrator) View() View {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.view
}

// Loaded reports whether the initial load has completed.
func (o *Orchestrator) Loaded() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.loaded
}

// Stale reports whether the view is older than the staleness threshold.
func (o *Orchestrator) Stale() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return !o.loaded || time.Since(o.view.ComputedAt) > o.staleAfter
}

// recompute rebuilds the view from the held inputs. Callers hold mu.
func (o *Orchestrator) recompute() {
	sel := funnel.Resolve(o.config.Accounts, o.config.Campaigns, o.legacy)
	status := funnel.Classify(sel, o.legacy, o.outcome)
	f := funnel.Aggregate(o.pipeline, o.stats, status)

	o.view = View{
		Funnel:     f,
		Insights:   funnel.Insights(f, o.pipeline, o.stats, status),
		Status:     status,
		Selection:  sel,
		ComputedAt: time.Now().UTC(),
	}
}
