package analysis

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"finpulse/internal/api"
)

type facetView struct {
	mu sync.Mutex
	wg sync.WaitGroup

	quote    *api.StockData
	quoteErr error
	pulse    *api.PulseScore
	pulseErr error
	risk     *api.RiskRadar
	riskErr  error
	hedge    *api.Hedge
	hedgeErr error
}

func (v *facetView) expect(n int) { v.wg.Add(n) }
func (v *facetView) wait()        { v.wg.Wait() }

func (v *facetView) ShowQuote(q *api.StockData) {
	v.mu.Lock()
	v.quote, v.quoteErr = q, nil
	v.mu.Unlock()
	v.wg.Done()
}
func (v *facetView) QuoteFailed(err error) {
	v.mu.Lock()
	v.quote, v.quoteErr = nil, err
	v.mu.Unlock()
	v.wg.Done()
}
func (v *facetView) ShowPulse(p *api.PulseScore) {
	v.mu.Lock()
	v.pulse, v.pulseErr = p, nil
	v.mu.Unlock()
	v.wg.Done()
}
func (v *facetView) PulseFailed(err error) {
	v.mu.Lock()
	v.pulse, v.pulseErr = nil, err
	v.mu.Unlock()
	v.wg.Done()
}
func (v *facetView) ShowRisk(r *api.RiskRadar) {
	v.mu.Lock()
	v.risk, v.riskErr = r, nil
	v.mu.Unlock()
	v.wg.Done()
}
func (v *facetView) RiskFailed(err error) {
	v.mu.Lock()
	v.risk, v.riskErr = nil, err
	v.mu.Unlock()
	v.wg.Done()
}
func (v *facetView) ShowHedge(h *api.Hedge) {
	v.mu.Lock()
	v.hedge, v.hedgeErr = h, nil
	v.mu.Unlock()
	v.wg.Done()
}
func (v *facetView) HedgeFailed(err error) {
	v.mu.Lock()
	v.hedge, v.hedgeErr = nil, err
	v.mu.Unlock()
	v.wg.Done()
}

// analysisServer serves all four facet endpoints. riskStatus lets tests
// break the risk facet in isolation.
func analysisServer(t *testing.T, riskStatus int, requests *atomic.Int64) *httptest.Server {
	t.Helper()
	count := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if requests != nil {
				requests.Add(1)
			}
			next(w, r)
		}
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/stock/{symbol}", count(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.StockData{Symbol: r.PathValue("symbol"), CurrentPrice: 190.5})
	}))
	mux.HandleFunc("GET /api/pulsescore/{symbol}", count(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.PulseScore{Symbol: r.PathValue("symbol"), PulseScore: 72, Trend: "Bullish"})
	}))
	mux.HandleFunc("GET /api/risk/{symbol}", count(func(w http.ResponseWriter, r *http.Request) {
		if riskStatus != http.StatusOK {
			w.WriteHeader(riskStatus)
			io.WriteString(w, `{"detail": "risk engine unavailable"}`)
			return
		}
		json.NewEncoder(w).Encode(api.RiskRadar{Symbol: r.PathValue("symbol"), RiskLevel: "Medium", Color: "orange"})
	}))
	mux.HandleFunc("GET /api/hedge/{symbol}", count(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.Hedge{Symbol: r.PathValue("symbol"), HedgeScore: 78})
	}))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newOrchestrator(srvURL string, view View) *Orchestrator {
	client := api.NewClient(srvURL, 5*time.Second, func() string { return "tok" }, nil)
	return New(client, view, nil)
}

func TestAnalyzeBlankSymbolNoNetwork(t *testing.T) {
	var requests atomic.Int64
	srv := analysisServer(t, http.StatusOK, &requests)
	view := &facetView{}
	o := newOrchestrator(srv.URL, view)

	for _, symbol := range []string{"", "   ", "\t"} {
		if err := o.Analyze(context.Background(), symbol); !api.IsValidation(err) {
			t.Errorf("Analyze(%q) error = %v, want ValidationError", symbol, err)
		}
	}
	if n := requests.Load(); n != 0 {
		t.Errorf("blank symbols issued %d network calls, want 0", n)
	}
}

func TestAnalyzeDeliversAllFacets(t *testing.T) {
	srv := analysisServer(t, http.StatusOK, nil)
	view := &facetView{}
	o := newOrchestrator(srv.URL, view)

	view.expect(4)
	if err := o.Analyze(context.Background(), " aapl "); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	view.wait()

	// Symbol is trimmed and upper-cased before hitting the wire.
	if view.quote == nil || view.quote.Symbol != "AAPL" {
		t.Errorf("quote = %+v", view.quote)
	}
	if view.pulse == nil || view.pulse.PulseScore != 72 {
		t.Errorf("pulse = %+v", view.pulse)
	}
	if view.risk == nil || view.risk.RiskLevel != "Medium" {
		t.Errorf("risk = %+v", view.risk)
	}
	if view.hedge == nil || view.hedge.HedgeScore != 78 {
		t.Errorf("hedge = %+v", view.hedge)
	}
}

func TestFailingFacetIsScoped(t *testing.T) {
	srv := analysisServer(t, http.StatusServiceUnavailable, nil)
	view := &facetView{}
	o := newOrchestrator(srv.URL, view)

	view.expect(4)
	if err := o.Analyze(context.Background(), "TSLA"); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	view.wait()

	if view.riskErr == nil {
		t.Error("expected scoped risk error")
	}
	if got := api.Detail(view.riskErr); got != "risk engine unavailable" {
		t.Errorf("risk detail = %q", got)
	}
	if view.pulse == nil || view.hedge == nil || view.quote == nil {
		t.Error("sibling facets blocked by failing risk fetch")
	}
}

func TestStaleSymbolDiscarded(t *testing.T) {
	release := make(chan struct{})
	var slowServed sync.WaitGroup
	slowServed.Add(4)

	facet := func(payload func(symbol string) any) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			s := r.PathValue("symbol")
			if s == "SLOW" {
				<-release // hold stale responses until the new analysis lands
				defer slowServed.Done()
			}
			json.NewEncoder(w).Encode(payload(s))
		}
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/stock/{symbol}", facet(func(s string) any { return api.StockData{Symbol: s} }))
	mux.HandleFunc("GET /api/pulsescore/{symbol}", facet(func(s string) any { return api.PulseScore{Symbol: s} }))
	mux.HandleFunc("GET /api/risk/{symbol}", facet(func(s string) any { return api.RiskRadar{Symbol: s} }))
	mux.HandleFunc("GET /api/hedge/{symbol}", facet(func(s string) any { return api.Hedge{Symbol: s} }))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	view := &facetView{}
	o := newOrchestrator(srv.URL, view)

	// First analysis is held at the server; second completes normally.
	if err := o.Analyze(context.Background(), "SLOW"); err != nil {
		t.Fatalf("Analyze(SLOW): %v", err)
	}
	view.expect(4)
	if err := o.Analyze(context.Background(), "FAST"); err != nil {
		t.Fatalf("Analyze(FAST): %v", err)
	}
	view.wait()

	// Release the stale responses and let them flow through the guard.
	close(release)
	slowServed.Wait()
	time.Sleep(50 * time.Millisecond)

	view.mu.Lock()
	defer view.mu.Unlock()
	for name, got := range map[string]string{
		"quote": view.quote.Symbol,
		"pulse": view.pulse.Symbol,
		"risk":  view.risk.Symbol,
		"hedge": view.hedge.Symbol,
	} {
		if got != "FAST" {
			t.Errorf("%s facet shows %q, want FAST (stale SLOW must be discarded)", name, got)
		}
	}
}
