// finpulse-cli drives the FinPulse client from the command line. It shares
// the session database with the TUI, so a login here carries over there.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/joho/godotenv"

	"finpulse/internal/analysis"
	"finpulse/internal/api"
	"finpulse/internal/auth"
	"finpulse/internal/config"
	"finpulse/internal/dashboard"
	"finpulse/internal/logging"
	"finpulse/internal/session"
	"finpulse/internal/trade"
	"finpulse/internal/viewmodel"
)

const version = "0.1.0"

func main() {
	godotenv.Load()

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: finpulse-cli <command> [arguments]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  login <username> <password>                  Sign in and persist the session\n")
		fmt.Fprintf(os.Stderr, "  register <username> <email> <name> <pass>    Create an account\n")
		fmt.Fprintf(os.Stderr, "  whoami                                       Show the current user\n")
		fmt.Fprintf(os.Stderr, "  dashboard                                    Print the dashboard\n")
		fmt.Fprintf(os.Stderr, "  analyze <symbol>                             Analyze a stock\n")
		fmt.Fprintf(os.Stderr, "  trade <symbol> <shares> <buy|sell>           Execute a trade\n")
		fmt.Fprintf(os.Stderr, "  logout                                       Clear the persisted session\n")
		fmt.Fprintf(os.Stderr, "  version                                      Print the CLI version\n")
		fmt.Fprintf(os.Stderr, "\n")
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	if os.Args[1] == "version" {
		fmt.Printf("finpulse-cli %s\n", version)
		return
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd string, args []string) error {
	cfg, err := config.Load(os.Getenv("FINPULSE_CONFIG"))
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.SessionPath), 0o755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	slot, err := session.OpenSQLiteSlot(cfg.Storage.SessionPath)
	if err != nil {
		return err
	}
	defer slot.Close()

	sessions := session.NewStore(slot, logger)
	client := api.NewClient(cfg.Server.BaseURL, cfg.Server.Timeout(), sessions.Token, logger)
	ctrl := auth.NewController(client, sessions, logger)
	ctx := context.Background()

	switch cmd {
	case "login":
		if len(args) != 2 {
			return errors.New("usage: finpulse-cli login <username> <password>")
		}
		user, err := ctrl.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s (%s)\n", user.Username, user.FullName)
		return nil

	case "register":
		if len(args) != 4 {
			return errors.New("usage: finpulse-cli register <username> <email> <full-name> <password>")
		}
		res, err := ctrl.Register(ctx, auth.RegisterForm{
			Username: args[0], Email: args[1], FullName: args[2], Password: args[3],
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s — log in with: finpulse-cli login %s <password>\n", res.Message, res.Username)
		return nil

	case "whoami":
		user, err := requireSession(ctx, ctrl)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s  %s\n", user.Username, user.FullName, user.Email)
		return nil

	case "dashboard":
		if _, err := requireSession(ctx, ctrl); err != nil {
			return err
		}
		view := &consoleDashboard{}
		view.wg.Add(3)
		dashboard.New(client, view, logger).Load(ctx)
		view.wg.Wait()
		return nil

	case "analyze":
		if len(args) != 1 {
			return errors.New("usage: finpulse-cli analyze <symbol>")
		}
		if _, err := requireSession(ctx, ctrl); err != nil {
			return err
		}
		view := &consoleAnalysis{}
		view.wg.Add(4)
		if err := analysis.New(client, view, logger).Analyze(ctx, args[0]); err != nil {
			return err
		}
		view.wg.Wait()
		return nil

	case "trade":
		if len(args) != 3 {
			return errors.New("usage: finpulse-cli trade <symbol> <shares> <buy|sell>")
		}
		if _, err := requireSession(ctx, ctrl); err != nil {
			return err
		}
		shares, _ := strconv.Atoi(args[1])
		res, err := trade.NewWorkflow(client, nil, logger).Execute(ctx, args[0], shares, args[2])
		if err != nil {
			return err
		}
		fmt.Printf("%s\ntrade value: $%.2f  cash: $%.2f\n", res.Message, res.TradeValue, res.CurrentCash)
		return nil

	case "logout":
		if err := ctrl.Logout(); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil

	default:
		flag.Usage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// requireSession restores the persisted session and fails when none exists.
func requireSession(ctx context.Context, ctrl *auth.Controller) (*api.UserProfile, error) {
	user, err := ctrl.Restore(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("not logged in; run: finpulse-cli login <username> <password>")
	}
	return user, nil
}

// consoleDashboard prints each dashboard region as it resolves. Output order
// follows delivery order, not a fixed layout.
type consoleDashboard struct {
	mu sync.Mutex
	wg sync.WaitGroup
}

var _ dashboard.View = (*consoleDashboard)(nil)

func (v *consoleDashboard) ShowOverview(o *api.MarketOverview) {
	v.mu.Lock()
	fmt.Printf("MARKET   %s  SPY %+.2f%%\n", o.MarketSentiment, o.SPYPerformance)
	v.mu.Unlock()
	v.wg.Done()
}

func (v *consoleDashboard) OverviewFailed(err error) { v.fail("MARKET", err) }

func (v *consoleDashboard) ShowPortfolio(p *api.PortfolioAnalysis) {
	v.mu.Lock()
	fmt.Printf("CASH     $%.2f  holdings $%.2f  gain/loss %+.2f (%+.2f%%)  risk %s\n",
		p.CashBalance, p.HoldingsValue, p.TotalGainLoss, p.TotalGainLossPercent, p.OverallRisk)
	for _, h := range p.Holdings {
		fmt.Printf("  %-6s %5d @ %.2f  value %.2f  %+.2f%%\n",
			h.Symbol, h.Shares, h.AvgPrice, h.CurrentValue, h.GainLossPercent)
	}
	for _, insight := range p.AIInsights {
		fmt.Printf("  - %s\n", insight)
	}
	v.mu.Unlock()
	v.wg.Done()
}

func (v *consoleDashboard) PortfolioFailed(err error) { v.fail("PORTFOLIO", err) }

func (v *consoleDashboard) ShowOpportunities(list []api.Opportunity) {
	v.mu.Lock()
	for _, op := range list {
		fmt.Printf("OPP      %-6s %-22s %+.2f%%  confidence %.0f%%\n",
			op.Symbol, op.Type, op.CurrentChange, op.Confidence)
	}
	v.mu.Unlock()
	v.wg.Done()
}

func (v *consoleDashboard) OpportunitiesFailed(err error) { v.fail("OPPORTUNITIES", err) }

func (v *consoleDashboard) fail(region string, err error) {
	v.mu.Lock()
	fmt.Printf("%-8s unavailable: %s\n", region, api.Detail(err))
	v.mu.Unlock()
	v.wg.Done()
}

// consoleAnalysis prints each analysis facet as it resolves.
type consoleAnalysis struct {
	mu sync.Mutex
	wg sync.WaitGroup
}

var _ analysis.View = (*consoleAnalysis)(nil)

func (v *consoleAnalysis) ShowQuote(q *api.StockData) {
	v.mu.Lock()
	fmt.Printf("QUOTE    %s  $%.2f  %+.2f (%+.2f%%)  %s\n",
		q.Symbol, q.CurrentPrice, q.PriceChange, q.PriceChangePercent, q.CompanyName)
	v.mu.Unlock()
	v.wg.Done()
}

func (v *consoleAnalysis) QuoteFailed(err error) { v.fail("QUOTE", err) }

func (v *consoleAnalysis) ShowPulse(p *api.PulseScore) {
	v.mu.Lock()
	fmt.Printf("PULSE    %.0f (%s)  %s  %s\n",
		p.PulseScore, viewmodel.ScoreBand(p.PulseScore), p.Trend, p.Recommendation)
	v.mu.Unlock()
	v.wg.Done()
}

func (v *consoleAnalysis) PulseFailed(err error) { v.fail("PULSE", err) }

func (v *consoleAnalysis) ShowRisk(r *api.RiskRadar) {
	v.mu.Lock()
	fmt.Printf("RISK     %s (score %.0f)  volatility %.1f%%  drawdown %.1f%%  beta %.2f\n",
		r.RiskLevel, r.RiskScore, r.Volatility, r.MaxDrawdown, r.Beta)
	v.mu.Unlock()
	v.wg.Done()
}

func (v *consoleAnalysis) RiskFailed(err error) { v.fail("RISK", err) }

func (v *consoleAnalysis) ShowHedge(h *api.Hedge) {
	v.mu.Lock()
	fmt.Printf("HEDGE    score %.0f  %s\n", h.HedgeScore, h.PortfolioImpact)
	for _, s := range h.Suggestions {
		fmt.Printf("  %-5s %s (%.0f%% effective)\n", s.Symbol, s.Description, s.Effectiveness)
	}
	v.mu.Unlock()
	v.wg.Done()
}

func (v *consoleAnalysis) HedgeFailed(err error) { v.fail("HEDGE", err) }

func (v *consoleAnalysis) fail(facet string, err error) {
	v.mu.Lock()
	fmt.Printf("%-8s unavailable: %s\n", facet, api.Detail(err))
	v.mu.Unlock()
	v.wg.Done()
}
