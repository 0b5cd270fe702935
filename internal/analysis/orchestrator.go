// Package analysis fans out the per-symbol analysis facets — PulseScore,
// risk radar, hedge suggestions — plus the raw quote, with the same
// per-region failure isolation as the dashboard.
package analysis

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"finpulse/internal/api"
)

// View receives facet deliveries for the most recent Analyze call. Facets
// render as soon as they individually resolve; they are not required to be
// mutually consistent at any instant.
type View interface {
	ShowQuote(*api.StockData)
	QuoteFailed(error)
	ShowPulse(*api.PulseScore)
	PulseFailed(error)
	ShowRisk(*api.RiskRadar)
	RiskFailed(error)
	ShowHedge(*api.Hedge)
	HedgeFailed(error)
}

// Orchestrator runs stock analysis. Each Analyze call supersedes the
// previous one: all four facet fetches share the invocation's generation,
// and responses arriving for an older generation are discarded so facets
// for a stale symbol never overwrite the current one.
type Orchestrator struct {
	client *api.Client
	view   View
	log    *slog.Logger

	mu  sync.Mutex // serializes view deliveries
	gen atomic.Uint64
}

// New creates an analysis orchestrator delivering to view.
func New(client *api.Client, view View, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		client: client,
		view:   view,
		log:    log.With("component", "analysis"),
	}
}

// Analyze fetches all facets for symbol. A blank symbol (after trimming)
// fails validation with zero network calls. Facet fetch errors are delivered
// to the view as scoped failures, never returned.
func (o *Orchestrator) Analyze(ctx context.Context, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return &api.ValidationError{Field: "symbol", Reason: "symbol is required"}
	}

	gen := o.gen.Add(1)
	o.log.Info("analyzing", "symbol", symbol, "generation", gen)

	go func() {
		quote, err := o.client.Stock(ctx, symbol)
		o.deliver(gen, "quote", err, func() {
			if err != nil {
				o.view.QuoteFailed(err)
				return
			}
			o.view.ShowQuote(quote)
		})
	}()
	go func() {
		pulse, err := o.client.PulseScore(ctx, symbol)
		o.deliver(gen, "pulsescore", err, func() {
			if err != nil {
				o.view.PulseFailed(err)
				return
			}
			o.view.ShowPulse(pulse)
		})
	}()
	go func() {
		risk, err := o.client.Risk(ctx, symbol)
		o.deliver(gen, "risk", err, func() {
			if err != nil {
				o.view.RiskFailed(err)
				return
			}
			o.view.ShowRisk(risk)
		})
	}()
	go func() {
		hedge, err := o.client.Hedge(ctx, symbol)
		o.deliver(gen, "hedge", err, func() {
			if err != nil {
				o.view.HedgeFailed(err)
				return
			}
			o.view.ShowHedge(hedge)
		})
	}()

	return nil
}

func (o *Orchestrator) deliver(gen uint64, facet string, err error, apply func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen.Load() {
		o.log.Debug("discarding stale facet", "facet", facet, "generation", gen)
		return
	}
	if err != nil {
		o.log.Warn("facet fetch failed", "facet", facet, "error", err)
	}
	apply()
}
