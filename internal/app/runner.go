// Package app wires the service together from explicit dependencies and
// drives its lifecycle. Nothing here is a singleton; every collaborator
// is constructed once and passed down.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wealthlens/wealthlens/internal/analytics"
	"github.com/wealthlens/wealthlens/internal/cache"
	"github.com/wealthlens/wealthlens/internal/config"
	"github.com/wealthlens/wealthlens/internal/domain"
	"github.com/wealthlens/wealthlens/internal/insight"
	"github.com/wealthlens/wealthlens/internal/logger"
	"github.com/wealthlens/wealthlens/internal/money"
	"github.com/wealthlens/wealthlens/internal/remote"
	"github.com/wealthlens/wealthlens/internal/syncer"
)

// Runner owns the constructed service graph.
type Runner struct {
	log       *logger.Logger
	cfg       *config.Config
	repo      *syncer.Repository
	insights  *insight.Client
	scheduler *syncer.Scheduler
	solver    analytics.SolverConfig
}

// NewRunner creates an empty runner around a logger.
func NewRunner(log *logger.Logger) *Runner {
	return &Runner{log: log}
}

// Initialize builds the service graph from a loaded configuration.
func (r *Runner) Initialize(cfg *config.Config) error {
	r.cfg = cfg

	store, err := cache.NewFileStore(cfg.CacheDir, r.log.Logger)
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}

	client := remote.NewClient(remote.Config{
		BaseURL: cfg.SyncBaseURL,
		Timeout: cfg.SyncTimeout,
		Logger:  r.log.Logger,
	})

	r.repo = syncer.NewRepository(syncer.Config{
		Client: client,
		Store:  store,
		TTL:    cfg.CacheTTL,
		Logger: r.log.Logger,
	})

	if cfg.InsightBaseURL != "" {
		r.insights = insight.NewClient(insight.Config{
			BaseURL:   cfg.InsightBaseURL,
			Timeout:   cfg.InsightTimeout,
			Staleness: cfg.InsightStaleness,
			Logger:    r.log.Logger,
		})
	}

	if cfg.RefreshInterval > 0 {
		r.scheduler = syncer.NewScheduler(syncer.SchedulerConfig{
			Repository: r.repo,
			Interval:   cfg.RefreshInterval,
			Logger:     r.log.Logger,
		})
	}

	solver := analytics.DefaultSolverConfig()
	solver.MinRate = cfg.XIRRMinRate
	solver.MaxRate = cfg.XIRRMaxRate
	r.solver = solver

	r.log.Info("runner initialized",
		zap.String("sync_base_url", cfg.SyncBaseURL),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Bool("scheduler", r.scheduler != nil))
	return nil
}

// Repository exposes the sync repository to read-only consumers.
func (r *Runner) Repository() *syncer.Repository { return r.repo }

// Insights exposes the streaming insight client; nil when no insight
// backend is configured.
func (r *Runner) Insights() *insight.Client { return r.insights }

// Run performs an initial aggregate sync, reports portfolio performance,
// and then keeps the background scheduler going until ctx is cancelled.
// Each aggregate run is scoped under one correlation ID.
func (r *Runner) Run(ctx context.Context) error {
	opLog := r.log.WithOperation("sync_all")
	agg := r.repo.SyncAll(ctx, false)
	if !agg.AnySuccessful() {
		opLog.Error("all domains unavailable",
			zap.Strings("errors", agg.Errors()))
	}
	r.reportAggregate(opLog, agg)
	r.reportPortfolio(opLog, agg)

	if r.scheduler == nil {
		return nil
	}
	if err := r.scheduler.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func (r *Runner) reportAggregate(log *zap.Logger, agg syncer.AggregateResult) {
	for _, d := range domain.All() {
		res := agg.Results[d]
		log.Info("domain state",
			zap.String("domain", d.String()),
			zap.String("origin", res.Origin.String()),
			zap.Bool("degraded", res.Degraded),
			zap.Time("synced_at", res.LastUpdated()))
	}
	log.Info("availability",
		zap.Float64("percentage", agg.Status.AvailabilityPercentage()*100))
}

func (r *Runner) reportPortfolio(log *zap.Logger, agg syncer.AggregateResult) {
	res, ok := agg.Results[domain.MfTransactionsDomain]
	if !ok || !res.HasData() || res.Data.MfTransactions == nil {
		return
	}
	mf := *res.Data.MfTransactions

	// No live per-scheme valuations in the sync payloads; estimate from
	// the latest transacted NAV.
	currentValues := make(map[string]money.Money)
	for name, txns := range mf.SchemeTransactions() {
		currentValues[name] = analytics.EstimateCurrentValue(txns)
	}

	summary := analytics.ComputePortfolioSummary(mf, currentValues, time.Now(), r.solver)
	for _, scheme := range summary.Schemes {
		log.Info("scheme performance",
			zap.String("scheme", scheme.SchemeName),
			zap.String("invested", scheme.InvestedDisplay()),
			zap.String("current", scheme.CurrentValueDisplay()),
			zap.String("absolute_return", scheme.AbsoluteReturnDisplay()),
			zap.String("xirr", scheme.XIRRDisplay()))
	}
	log.Info("portfolio summary",
		zap.Int("schemes", summary.SchemeCount),
		zap.String("total_invested", summary.TotalInvested.Compact()),
		zap.String("total_current", summary.TotalCurrentValue.Compact()),
		zap.String("best_xirr_scheme", summary.BestXIRRScheme),
		zap.String("worst_xirr_scheme", summary.WorstXIRRScheme))
}
