package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource returns the current bearer token, or "" when logged out.
// Readers always go through the source rather than capturing a token, so a
// logout is visible to every subsequent request.
type TokenSource func() string

// Client talks to the FinPulse REST API.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	token        TokenSource
	authRejected func()
	log          *slog.Logger
}

// NewClient creates a FinPulse API client. token supplies the bearer token
// for authenticated endpoints; it may return "" while logged out.
func NewClient(baseURL string, timeout time.Duration, token TokenSource, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		token:      token,
		log:        log.With("component", "api"),
	}
}

// OnAuthRejected registers fn to be called whenever a bearer-authenticated
// request is rejected with 401. The auth controller uses this to force a
// logout so a stale token is never retried indefinitely.
func (c *Client) OnAuthRejected(fn func()) {
	c.authRejected = fn
}

// ---------------------------------------------------------------------------
// Endpoints
// ---------------------------------------------------------------------------

// Login exchanges credentials for a bearer token via POST /token. The request
// is form-encoded per the OAuth2 password flow. A 401 maps to AuthError.
func (c *Client) Login(ctx context.Context, username, password string) (*Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tok Token
	if err := c.do(req, false, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Register creates a new account via POST /register. It does not log in.
func (c *Client) Register(ctx context.Context, r RegisterRequest) (*RegisterResult, error) {
	var res RegisterResult
	if err := c.postJSON(ctx, "/register", false, r, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*UserProfile, error) {
	var u UserProfile
	if err := c.get(ctx, "/users/me", true, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// MarketOverview fetches market sentiment and SPY performance.
func (c *Client) MarketOverview(ctx context.Context) (*MarketOverview, error) {
	var o MarketOverview
	if err := c.get(ctx, "/api/market/overview", false, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// PortfolioAnalysis fetches the authenticated user's portfolio snapshot.
func (c *Client) PortfolioAnalysis(ctx context.Context) (*PortfolioAnalysis, error) {
	var p PortfolioAnalysis
	if err := c.get(ctx, "/api/portfolio/analysis", true, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PulseScore fetches the PulseScore facet for a symbol.
func (c *Client) PulseScore(ctx context.Context, symbol string) (*PulseScore, error) {
	var p PulseScore
	if err := c.get(ctx, "/api/pulsescore/"+url.PathEscape(symbol), false, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Risk fetches the risk radar facet for a symbol.
func (c *Client) Risk(ctx context.Context, symbol string) (*RiskRadar, error) {
	var r RiskRadar
	if err := c.get(ctx, "/api/risk/"+url.PathEscape(symbol), false, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Hedge fetches hedge suggestions for a symbol. Requires authentication.
func (c *Client) Hedge(ctx context.Context, symbol string) (*Hedge, error) {
	var h Hedge
	if err := c.get(ctx, "/api/hedge/"+url.PathEscape(symbol), true, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Opportunities fetches the current opportunity list.
func (c *Client) Opportunities(ctx context.Context) (*OpportunityList, error) {
	var l OpportunityList
	if err := c.get(ctx, "/api/opportunities", false, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// Stock fetches the raw quote and indicator data for a symbol.
func (c *Client) Stock(ctx context.Context, symbol string) (*StockData, error) {
	var s StockData
	if err := c.get(ctx, "/api/stock/"+url.PathEscape(symbol), false, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Trade submits a trade with the current session token.
func (c *Client) Trade(ctx context.Context, t TradeRequest) (*TradeResult, error) {
	var res TradeResult
	if err := c.postJSON(ctx, "/api/trade", true, t, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ---------------------------------------------------------------------------
// Request plumbing
// ---------------------------------------------------------------------------

func (c *Client) get(ctx context.Context, path string, auth bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	return c.do(req, auth, out)
}

func (c *Client) postJSON(ctx context.Context, path string, auth bool, body, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding body for %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, auth, out)
}

// do executes the request, attaching the bearer token when auth is true, and
// decodes the response into out. Failures map onto the error taxonomy:
// transport errors become NetworkError, 401 becomes AuthError (firing the
// auth-rejected hook for bearer calls), other non-2xx become ServerError.
func (c *Client) do(req *http.Request, auth bool, out any) error {
	bearer := false
	if auth && c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
			bearer = true
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: req.Method + " " + req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		detail := decodeDetail(resp.Body)
		if bearer && c.authRejected != nil {
			c.log.Warn("bearer token rejected", "path", req.URL.Path)
			c.authRejected()
		}
		return &AuthError{Detail: detail}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{StatusCode: resp.StatusCode, Detail: decodeDetail(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Path, err)
	}
	return nil
}

// decodeDetail extracts the "detail" message from a FastAPI error body. The
// detail field may be a plain string or structured validation output; in the
// latter case the raw JSON is returned verbatim.
func decodeDetail(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return ""
	}
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}
	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}
	return string(envelope.Detail)
}
