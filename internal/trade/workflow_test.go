package trade

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"finpulse/internal/api"
)

type countingRefresher struct {
	reloads atomic.Int64
}

func (c *countingRefresher) ReloadPortfolio(ctx context.Context) {
	c.reloads.Add(1)
}

func newFixture(t *testing.T, handler http.HandlerFunc) (*Workflow, *countingRefresher, *atomic.Int64) {
	t.Helper()
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, 5*time.Second, func() string { return "tok" }, nil)
	refresher := &countingRefresher{}
	return NewWorkflow(client, refresher, nil), refresher, &requests
}

func TestExecuteValidationNoNetwork(t *testing.T) {
	w, refresher, requests := newFixture(t, func(http.ResponseWriter, *http.Request) {})

	cases := []struct {
		name   string
		symbol string
		shares int
		action string
	}{
		{"empty symbol", "", 5, "buy"},
		{"blank symbol", "   ", 5, "buy"},
		{"zero shares", "AAPL", 0, "buy"},
		{"negative shares", "AAPL", -3, "sell"},
		{"bad action", "AAPL", 5, "hold"},
		{"empty action", "AAPL", 5, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := w.Execute(context.Background(), c.symbol, c.shares, c.action)
			if !api.IsValidation(err) {
				t.Errorf("error = %v, want ValidationError", err)
			}
		})
	}

	if n := requests.Load(); n != 0 {
		t.Errorf("invalid trades issued %d network calls, want 0", n)
	}
	if n := refresher.reloads.Load(); n != 0 {
		t.Errorf("invalid trades triggered %d portfolio reloads, want 0", n)
	}
}

func TestExecuteSuccessRefetchesPortfolioOnce(t *testing.T) {
	var got api.TradeRequest
	w, refresher, _ := newFixture(t, func(rw http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(rw).Encode(api.TradeResult{
			Message:     "Successfully buy 5 shares of AAPL",
			CurrentCash: 49000,
			TradeValue:  1000,
		})
	})

	res, err := w.Execute(context.Background(), "aapl", 5, "BUY")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Message != "Successfully buy 5 shares of AAPL" {
		t.Errorf("Message = %q", res.Message)
	}
	// Input is normalized before submission.
	if got.Symbol != "AAPL" || got.Action != "buy" || got.Shares != 5 {
		t.Errorf("submitted %+v, want AAPL/5/buy", got)
	}
	if n := refresher.reloads.Load(); n != 1 {
		t.Errorf("portfolio reloaded %d times, want exactly 1", n)
	}
}

func TestExecuteFailureSurfacesDetailNoRefetch(t *testing.T) {
	w, refresher, _ := newFixture(t, func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusBadRequest)
		io.WriteString(rw, `{"detail": "Insufficient funds"}`)
	})

	_, err := w.Execute(context.Background(), "AAPL", 500, "buy")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := api.Detail(err); got != "Insufficient funds" {
		t.Errorf("detail = %q, want %q", got, "Insufficient funds")
	}
	if n := refresher.reloads.Load(); n != 0 {
		t.Errorf("failed trade triggered %d portfolio reloads, want 0", n)
	}
}

func TestExecuteWithoutRefresher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		json.NewEncoder(rw).Encode(api.TradeResult{Message: "ok"})
	}))
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, 5*time.Second, func() string { return "tok" }, nil)
	w := NewWorkflow(client, nil, nil)
	if _, err := w.Execute(context.Background(), "AAPL", 1, "sell"); err != nil {
		t.Fatalf("Execute with nil refresher: %v", err)
	}
}
