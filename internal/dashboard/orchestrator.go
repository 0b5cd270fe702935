// Package dashboard fans out the three dashboard fetches — market overview,
// portfolio analysis, opportunities — and delivers each region's result (or
// scoped failure) to the view as it resolves.
package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"finpulse/internal/api"
)

// View receives region deliveries. Exactly one of the show/fail pair is
// called per region per load; calls are serialized by the orchestrator but
// may arrive in any order across regions.
type View interface {
	ShowOverview(*api.MarketOverview)
	OverviewFailed(error)
	ShowPortfolio(*api.PortfolioAnalysis)
	PortfolioFailed(error)
	ShowOpportunities([]api.Opportunity)
	OpportunitiesFailed(error)
}

// Orchestrator loads the dashboard. The three fetches are independent: a
// failing region renders a scoped error and never blocks or corrupts its
// siblings. Each region carries a generation counter so a stale response
// from a superseded load is discarded instead of overwriting fresher
// content.
type Orchestrator struct {
	client *api.Client
	view   View
	log    *slog.Logger

	mu             sync.Mutex // serializes view deliveries
	overviewGen    atomic.Uint64
	portfolioGen   atomic.Uint64
	opportunityGen atomic.Uint64
}

// New creates a dashboard orchestrator delivering to view.
func New(client *api.Client, view View, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		client: client,
		view:   view,
		log:    log.With("component", "dashboard"),
	}
}

// Load starts all three fetches. Calling Load again supersedes every region:
// prior in-flight responses are discarded on arrival. Fetch errors are
// delivered to the view, never returned.
func (o *Orchestrator) Load(ctx context.Context) {
	o.loadOverview(ctx)
	o.ReloadPortfolio(ctx)
	o.loadOpportunities(ctx)
}

// ReloadPortfolio re-fetches only the portfolio region. The trade workflow
// uses it for read-after-write consistency.
func (o *Orchestrator) ReloadPortfolio(ctx context.Context) {
	gen := o.portfolioGen.Add(1)
	go func() {
		snapshot, err := o.client.PortfolioAnalysis(ctx)
		o.deliver(gen, &o.portfolioGen, "portfolio", err, func() {
			if err != nil {
				o.view.PortfolioFailed(err)
				return
			}
			o.view.ShowPortfolio(snapshot)
		})
	}()
}

func (o *Orchestrator) loadOverview(ctx context.Context) {
	gen := o.overviewGen.Add(1)
	go func() {
		overview, err := o.client.MarketOverview(ctx)
		o.deliver(gen, &o.overviewGen, "overview", err, func() {
			if err != nil {
				o.view.OverviewFailed(err)
				return
			}
			o.view.ShowOverview(overview)
		})
	}()
}

func (o *Orchestrator) loadOpportunities(ctx context.Context) {
	gen := o.opportunityGen.Add(1)
	go func() {
		list, err := o.client.Opportunities(ctx)
		o.deliver(gen, &o.opportunityGen, "opportunities", err, func() {
			if err != nil {
				o.view.OpportunitiesFailed(err)
				return
			}
			o.view.ShowOpportunities(list.Opportunities)
		})
	}()
}

// deliver applies the generation guard and hands the region result to the
// view under the delivery lock.
func (o *Orchestrator) deliver(gen uint64, current *atomic.Uint64, region string, err error, apply func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != current.Load() {
		o.log.Debug("discarding stale response", "region", region, "generation", gen)
		return
	}
	if err != nil {
		o.log.Warn("region fetch failed", "region", region, "error", err)
	}
	apply()
}
