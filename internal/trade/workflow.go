// Package trade validates and submits trades, then refreshes the portfolio
// so displayed state reflects the write.
package trade

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"finpulse/internal/api"
)

// Request is the client-side trade input, validated before submission.
type Request struct {
	Symbol string `validate:"required"`
	Shares int    `validate:"required,gt=0"`
	Action string `validate:"required,oneof=buy sell"`
}

// PortfolioRefresher re-fetches the portfolio region. The dashboard
// orchestrator satisfies this.
type PortfolioRefresher interface {
	ReloadPortfolio(ctx context.Context)
}

// Workflow submits trades with the current session token.
type Workflow struct {
	client    *api.Client
	portfolio PortfolioRefresher
	validate  *validator.Validate
	log       *slog.Logger
}

// NewWorkflow creates a trade workflow. portfolio may be nil when no
// dashboard is attached (scripted use).
func NewWorkflow(client *api.Client, portfolio PortfolioRefresher, log *slog.Logger) *Workflow {
	if log == nil {
		log = slog.Default()
	}
	return &Workflow{
		client:    client,
		portfolio: portfolio,
		validate:  validator.New(),
		log:       log.With("component", "trade"),
	}
}

// Execute validates and submits a trade. On success it returns the server's
// confirmation and triggers exactly one portfolio re-fetch; on any failure
// it triggers none. Validation failures never reach the network.
func (w *Workflow) Execute(ctx context.Context, symbol string, shares int, action string) (*api.TradeResult, error) {
	req := Request{
		Symbol: strings.ToUpper(strings.TrimSpace(symbol)),
		Shares: shares,
		Action: strings.ToLower(strings.TrimSpace(action)),
	}
	if err := w.validate.Struct(req); err != nil {
		return nil, asValidationError(err)
	}

	res, err := w.client.Trade(ctx, api.TradeRequest{
		Symbol: req.Symbol,
		Shares: req.Shares,
		Action: req.Action,
	})
	if err != nil {
		w.log.Warn("trade rejected", "symbol", req.Symbol, "action", req.Action, "error", err)
		return nil, err
	}

	w.log.Info("trade executed", "symbol", req.Symbol, "shares", req.Shares, "action", req.Action)
	if w.portfolio != nil {
		w.portfolio.ReloadPortfolio(ctx)
	}
	return res, nil
}

// asValidationError translates the first validator field error into the
// client error taxonomy.
func asValidationError(err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return &api.ValidationError{Field: "trade", Reason: err.Error()}
	}

	fe := fields[0]
	switch fe.Field() {
	case "Symbol":
		return &api.ValidationError{Field: "symbol", Reason: "symbol is required"}
	case "Shares":
		return &api.ValidationError{Field: "shares", Reason: "shares must be a positive integer"}
	case "Action":
		return &api.ValidationError{Field: "action", Reason: "action must be buy or sell"}
	default:
		return &api.ValidationError{Field: strings.ToLower(fe.Field()), Reason: fe.Error()}
	}
}
