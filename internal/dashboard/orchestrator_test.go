package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"finpulse/internal/api"
)

// recordingView records deliveries and signals a WaitGroup per delivery so
// tests can wait for all regions deterministically.
type recordingView struct {
	mu sync.Mutex
	wg sync.WaitGroup

	overview      *api.MarketOverview
	overviewErr   error
	portfolio     *api.PortfolioAnalysis
	portfolioErr  error
	opportunities []api.Opportunity
	oppsErr       error

	portfolioShows int
}

func (v *recordingView) expect(n int) { v.wg.Add(n) }
func (v *recordingView) wait()        { v.wg.Wait() }

func (v *recordingView) ShowOverview(o *api.MarketOverview) {
	v.mu.Lock()
	v.overview, v.overviewErr = o, nil
	v.mu.Unlock()
	v.wg.Done()
}

func (v *recordingView) OverviewFailed(err error) {
	v.mu.Lock()
	v.overview, v.overviewErr = nil, err
	v.mu.Unlock()
	v.wg.Done()
}

func (v *recordingView) ShowPortfolio(p *api.PortfolioAnalysis) {
	v.mu.Lock()
	v.portfolio, v.portfolioErr = p, nil
	v.portfolioShows++
	v.mu.Unlock()
	v.wg.Done()
}

func (v *recordingView) PortfolioFailed(err error) {
	v.mu.Lock()
	v.portfolio, v.portfolioErr = nil, err
	v.mu.Unlock()
	v.wg.Done()
}

func (v *recordingView) ShowOpportunities(o []api.Opportunity) {
	v.mu.Lock()
	v.opportunities, v.oppsErr = o, nil
	v.mu.Unlock()
	v.wg.Done()
}

func (v *recordingView) OpportunitiesFailed(err error) {
	v.mu.Lock()
	v.opportunities, v.oppsErr = nil, err
	v.mu.Unlock()
	v.wg.Done()
}

// dashboardServer serves the three dashboard endpoints; overviewStatus lets
// tests break one region.
func dashboardServer(t *testing.T, overviewStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/market/overview", func(w http.ResponseWriter, r *http.Request) {
		if overviewStatus != http.StatusOK {
			w.WriteHeader(overviewStatus)
			io.WriteString(w, `{"detail": "overview unavailable"}`)
			return
		}
		json.NewEncoder(w).Encode(api.MarketOverview{MarketSentiment: "Bullish", SPYPerformance: 2.4})
	})
	mux.HandleFunc("GET /api/portfolio/analysis", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.PortfolioAnalysis{
			CashBalance: 50000,
			Holdings:    []api.Holding{{Symbol: "AAPL", Shares: 10}},
		})
	})
	mux.HandleFunc("GET /api/opportunities", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.OpportunityList{
			Opportunities: []api.Opportunity{{Symbol: "NVDA", Type: "Momentum Breakout"}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newOrchestrator(srvURL string, view View) *Orchestrator {
	client := api.NewClient(srvURL, 5*time.Second, func() string { return "tok" }, nil)
	return New(client, view, nil)
}

func TestLoadDeliversAllRegions(t *testing.T) {
	srv := dashboardServer(t, http.StatusOK)
	view := &recordingView{}
	o := newOrchestrator(srv.URL, view)

	view.expect(3)
	o.Load(context.Background())
	view.wait()

	if view.overview == nil || view.overview.MarketSentiment != "Bullish" {
		t.Errorf("overview = %+v", view.overview)
	}
	if view.portfolio == nil || len(view.portfolio.Holdings) != 1 {
		t.Errorf("portfolio = %+v", view.portfolio)
	}
	if len(view.opportunities) != 1 || view.opportunities[0].Symbol != "NVDA" {
		t.Errorf("opportunities = %+v", view.opportunities)
	}
}

func TestFailingOverviewDoesNotBlockSiblings(t *testing.T) {
	srv := dashboardServer(t, http.StatusBadGateway)
	view := &recordingView{}
	o := newOrchestrator(srv.URL, view)

	view.expect(3)
	o.Load(context.Background())
	view.wait()

	if view.overviewErr == nil {
		t.Error("expected scoped overview error")
	}
	if view.portfolio == nil {
		t.Error("portfolio blocked by failing overview")
	}
	if view.opportunities == nil {
		t.Error("opportunities blocked by failing overview")
	}
}

func TestReloadPortfolioRefetchesOnlyPortfolio(t *testing.T) {
	srv := dashboardServer(t, http.StatusOK)
	view := &recordingView{}
	o := newOrchestrator(srv.URL, view)

	view.expect(3)
	o.Load(context.Background())
	view.wait()

	view.expect(1)
	o.ReloadPortfolio(context.Background())
	view.wait()

	view.mu.Lock()
	defer view.mu.Unlock()
	if view.portfolioShows != 2 {
		t.Errorf("portfolio delivered %d times, want 2", view.portfolioShows)
	}
}

func TestStalePortfolioResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	served := make(chan struct{}, 2)
	first := true

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/portfolio/analysis", func(w http.ResponseWriter, r *http.Request) {
		if first {
			first = false
			<-release // hold the first response until the second lands
			json.NewEncoder(w).Encode(api.PortfolioAnalysis{CashBalance: 1})
		} else {
			json.NewEncoder(w).Encode(api.PortfolioAnalysis{CashBalance: 2})
		}
		served <- struct{}{}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	view := &recordingView{}
	o := newOrchestrator(srv.URL, view)

	o.ReloadPortfolio(context.Background()) // generation 1, held at the server
	view.expect(1)
	o.ReloadPortfolio(context.Background()) // generation 2, completes
	view.wait()
	<-served

	close(release) // let the stale response land
	<-served
	time.Sleep(50 * time.Millisecond) // give a wrong delivery time to happen

	view.mu.Lock()
	defer view.mu.Unlock()
	if view.portfolioShows != 1 {
		t.Fatalf("portfolio delivered %d times, want 1 (stale discarded)", view.portfolioShows)
	}
	if view.portfolio.CashBalance != 2 {
		t.Errorf("CashBalance = %v, want 2 (latest generation)", view.portfolio.CashBalance)
	}
}
