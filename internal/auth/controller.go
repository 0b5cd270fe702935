// Package auth drives the login, registration, and logout flows against the
// FinPulse service and owns the session state machine.
package auth

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"finpulse/internal/api"
	"finpulse/internal/session"
)

// State is the authentication state.
type State int

const (
	LoggedOut State = iota
	Restoring
	Authenticating
	LoggedIn
)

func (s State) String() string {
	switch s {
	case Restoring:
		return "restoring"
	case Authenticating:
		return "authenticating"
	case LoggedIn:
		return "logged-in"
	default:
		return "logged-out"
	}
}

// RegisterForm is the client-side registration input.
type RegisterForm struct {
	Username string
	Email    string
	FullName string
	Password string
}

// Controller transitions the session through
// LoggedOut → Authenticating → LoggedIn and back. At most one login or
// logout flow is expected in flight at a time; the state itself is still
// mutex-guarded because the forced-logout hook can fire from a fetch
// goroutine.
type Controller struct {
	client   *api.Client
	sessions *session.Store
	log      *slog.Logger

	mu      sync.Mutex
	state   State
	onLogin func(*api.UserProfile)
}

// NewController creates the controller and installs the forced-logout hook:
// any bearer-authenticated call rejected with 401 clears the session so a
// stale token is never retried.
func NewController(client *api.Client, sessions *session.Store, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	c := &Controller{
		client:   client,
		sessions: sessions,
		log:      log.With("component", "auth"),
	}
	client.OnAuthRejected(c.forceLogout)
	return c
}

// OnLogin registers fn to run exactly once after each successful login or
// session restore, after the session is installed. The application uses it
// to trigger the dashboard load.
func (c *Controller) OnLogin(fn func(*api.UserProfile)) {
	c.mu.Lock()
	c.onLogin = fn
	c.mu.Unlock()
}

// State returns the current authentication state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Login exchanges credentials for a token, chains the profile fetch, and on
// success installs and persists the session. Empty fields fail validation
// before any network call.
func (c *Controller) Login(ctx context.Context, username, password string) (*api.UserProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &api.ValidationError{Field: "username", Reason: "username is required"}
	}
	if password == "" {
		return nil, &api.ValidationError{Field: "password", Reason: "password is required"}
	}

	c.setState(Authenticating)

	tok, err := c.client.Login(ctx, username, password)
	if err != nil {
		c.setState(LoggedOut)
		if api.IsAuth(err) {
			c.log.Info("login rejected", "username", username)
			return nil, &api.AuthError{Detail: "invalid credentials"}
		}
		return nil, err
	}

	// Token accepted; adopt it so the profile fetch can authenticate, then
	// install the full session only once the profile arrives.
	c.sessions.Adopt(tok.AccessToken)
	user, err := c.client.Me(ctx)
	if err != nil {
		c.sessions.Clear()
		c.setState(LoggedOut)
		return nil, err
	}

	if err := c.sessions.Set(tok.AccessToken, user); err != nil {
		c.log.Warn("session installed but token not persisted", "error", err)
	}
	c.setState(LoggedIn)
	c.log.Info("logged in", "username", user.Username)
	c.fireOnLogin(user)
	return user, nil
}

// Register creates an account. It does not log in; the caller returns to the
// login view with the username pre-filled. All four fields are required.
func (c *Controller) Register(ctx context.Context, form RegisterForm) (*api.RegisterResult, error) {
	required := []struct{ field, value string }{
		{"username", strings.TrimSpace(form.Username)},
		{"email", strings.TrimSpace(form.Email)},
		{"full_name", strings.TrimSpace(form.FullName)},
		{"password", form.Password},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, &api.ValidationError{Field: r.field, Reason: r.field + " is required"}
		}
	}

	res, err := c.client.Register(ctx, api.RegisterRequest{
		Username: strings.TrimSpace(form.Username),
		Email:    strings.TrimSpace(form.Email),
		FullName: strings.TrimSpace(form.FullName),
		Password: form.Password,
	})
	if err != nil {
		return nil, err
	}
	c.log.Info("registered", "username", res.Username)
	return res, nil
}

// Logout unconditionally clears the session and the durable slot. Calling it
// while already logged out is a no-op.
func (c *Controller) Logout() error {
	c.setState(LoggedOut)
	if err := c.sessions.Clear(); err != nil {
		return err
	}
	c.log.Info("logged out")
	return nil
}

// Restore loads a previously persisted token and, if one exists, validates
// it by fetching the profile. With no stored token it returns (nil, nil)
// without any network call. A rejected token clears the session.
func (c *Controller) Restore(ctx context.Context) (*api.UserProfile, error) {
	token, err := c.sessions.Restore()
	if err != nil {
		return nil, err
	}
	if token == "" {
		c.setState(LoggedOut)
		return nil, nil
	}

	c.setState(Restoring)
	user, err := c.client.Me(ctx)
	if err != nil {
		c.sessions.Clear()
		c.setState(LoggedOut)
		return nil, err
	}

	if err := c.sessions.Set(token, user); err != nil {
		c.log.Warn("restored session but token not re-persisted", "error", err)
	}
	c.setState(LoggedIn)
	c.log.Info("session restored", "username", user.Username)
	c.fireOnLogin(user)
	return user, nil
}

func (c *Controller) fireOnLogin(user *api.UserProfile) {
	c.mu.Lock()
	fn := c.onLogin
	c.mu.Unlock()
	if fn != nil {
		fn(user)
	}
}

// forceLogout clears the session after a bearer call was rejected. It runs
// from the API client's auth-rejected hook, possibly on a fetch goroutine.
func (c *Controller) forceLogout() {
	c.setState(LoggedOut)
	if err := c.sessions.Clear(); err != nil {
		c.log.Warn("clearing session after auth rejection", "error", err)
	}
	c.log.Warn("session cleared after rejected bearer token")
}
