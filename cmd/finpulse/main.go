package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
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

// Styles.
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	panelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
)

// classStyles keys lipgloss styles on the display classes the view-model
// mappers produce.
var classStyles = map[string]lipgloss.Style{
	viewmodel.BandExcellent: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
	viewmodel.BandGood:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	viewmodel.BandModerate:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	viewmodel.BandWeak:      lipgloss.NewStyle().Foreground(lipgloss.Color("9")),

	viewmodel.RiskLowClass:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	viewmodel.RiskMediumClass: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	viewmodel.RiskHighClass:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),

	viewmodel.ColorGreenClass:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	viewmodel.ColorOrangeClass:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	viewmodel.ColorRedClass:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	viewmodel.ColorNeutralClass: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

	viewmodel.TrendBullishClass: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
	viewmodel.TrendBearishClass: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	viewmodel.TrendNeutralClass: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

	viewmodel.GainPositiveClass: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	viewmodel.GainNegativeClass: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	viewmodel.GainFlatClass:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

func classStyle(class string) lipgloss.Style {
	if s, ok := classStyles[class]; ok {
		return s
	}
	return dimStyle
}

// Screens.
type screen int

const (
	screenLogin screen = iota
	screenRegister
	screenDashboard
	screenAnalysis
	screenTrade
)

// Messages.
type restoredMsg struct {
	user *api.UserProfile
	err  error
}

type loginDoneMsg struct {
	user *api.UserProfile
	err  error
}

type registerDoneMsg struct {
	res *api.RegisterResult
	err error
}

type logoutDoneMsg struct{ err error }

type overviewMsg struct {
	overview *api.MarketOverview
	err      error
}

type portfolioMsg struct {
	snapshot *api.PortfolioAnalysis
	err      error
}

type opportunitiesMsg struct {
	list []api.Opportunity
	err  error
}

type quoteMsg struct {
	quote *api.StockData
	err   error
}

type pulseMsg struct {
	pulse *api.PulseScore
	err   error
}

type riskMsg struct {
	risk *api.RiskRadar
	err  error
}

type hedgeMsg struct {
	hedge *api.Hedge
	err   error
}

type tradeDoneMsg struct {
	res *api.TradeResult
	err error
}

// uiSink forwards orchestrator deliveries into the bubbletea event loop. It
// satisfies both the dashboard and analysis view interfaces; the send field
// is wired to Program.Send before the program runs.
type uiSink struct {
	send func(tea.Msg)
}

var (
	_ dashboard.View = (*uiSink)(nil)
	_ analysis.View  = (*uiSink)(nil)
)

func (s *uiSink) ShowOverview(o *api.MarketOverview)     { s.send(overviewMsg{overview: o}) }
func (s *uiSink) OverviewFailed(err error)               { s.send(overviewMsg{err: err}) }
func (s *uiSink) ShowPortfolio(p *api.PortfolioAnalysis) { s.send(portfolioMsg{snapshot: p}) }
func (s *uiSink) PortfolioFailed(err error)              { s.send(portfolioMsg{err: err}) }
func (s *uiSink) ShowOpportunities(o []api.Opportunity)  { s.send(opportunitiesMsg{list: o}) }
func (s *uiSink) OpportunitiesFailed(err error)          { s.send(opportunitiesMsg{err: err}) }

func (s *uiSink) ShowQuote(q *api.StockData)  { s.send(quoteMsg{quote: q}) }
func (s *uiSink) QuoteFailed(err error)       { s.send(quoteMsg{err: err}) }
func (s *uiSink) ShowPulse(p *api.PulseScore) { s.send(pulseMsg{pulse: p}) }
func (s *uiSink) PulseFailed(err error)       { s.send(pulseMsg{err: err}) }
func (s *uiSink) ShowRisk(r *api.RiskRadar)   { s.send(riskMsg{risk: r}) }
func (s *uiSink) RiskFailed(err error)        { s.send(riskMsg{err: err}) }
func (s *uiSink) ShowHedge(h *api.Hedge)      { s.send(hedgeMsg{hedge: h}) }
func (s *uiSink) HedgeFailed(err error)       { s.send(hedgeMsg{err: err}) }

// app bundles the wired core the TUI drives.
type app struct {
	ctrl   *auth.Controller
	dash   *dashboard.Orchestrator
	stocks *analysis.Orchestrator
	trades *trade.Workflow
	logger *slog.Logger
}

// Model.
type model struct {
	app    *app
	screen screen

	width, height int
	ready         bool
	viewport      viewport.Model

	user   *api.UserProfile
	status string
	busy   bool

	loginInputs []textinput.Model
	loginFocus  int

	regInputs []textinput.Model
	regFocus  int

	symbolInput textinput.Model
	symbol      string

	tradeInputs []textinput.Model
	tradeFocus  int

	// Dashboard regions. Each holds either data or a scoped error; nil data
	// with a nil error means the region is still loading.
	overview         *api.MarketOverview
	overviewErr      error
	portfolio        *api.PortfolioAnalysis
	portfolioErr     error
	opportunities    []api.Opportunity
	opportunitiesErr error

	// Analysis facets for the current symbol.
	quote    *api.StockData
	quoteErr error
	pulse    *api.PulseScore
	pulseErr error
	risk     *api.RiskRadar
	riskErr  error
	hedge    *api.Hedge
	hedgeErr error
}

func newInput(placeholder string, width int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 64
	ti.Width = width
	return ti
}

func initialModel(a *app) model {
	login := []textinput.Model{newInput("username", 32), newInput("password", 32)}
	login[0].Focus()
	login[1].EchoMode = textinput.EchoPassword

	reg := []textinput.Model{
		newInput("username", 32),
		newInput("email", 32),
		newInput("full name", 32),
		newInput("password", 32),
	}
	reg[3].EchoMode = textinput.EchoPassword

	symbol := newInput("symbol (e.g. AAPL)", 16)

	tr := []textinput.Model{newInput("symbol", 16), newInput("shares", 8), newInput("buy or sell", 8)}

	return model{
		app:         a,
		screen:      screenLogin,
		loginInputs: login,
		regInputs:   reg,
		symbolInput: symbol,
		tradeInputs: tr,
	}
}

func (m model) Init() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		user, err := a.ctrl.Restore(context.Background())
		return restoredMsg{user: user, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - 2
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshContent()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenLogin:
			return m.updateLogin(msg)
		case screenRegister:
			return m.updateRegister(msg)
		case screenDashboard:
			return m.updateDashboard(msg)
		case screenAnalysis:
			return m.updateAnalysis(msg)
		case screenTrade:
			return m.updateTrade(msg)
		}

	case restoredMsg:
		if msg.err != nil {
			if api.IsAuth(msg.err) {
				m.status = "stored session expired, please log in"
			} else {
				m.status = errLine(msg.err)
			}
			return m, nil
		}
		if msg.user != nil {
			m.enterDashboard(msg.user)
		}
		return m, nil

	case loginDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = errLine(msg.err)
			m.refreshContent()
			return m, nil
		}
		m.enterDashboard(msg.user)
		return m, nil

	case registerDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = errLine(msg.err)
			return m, nil
		}
		// Back to login with the new username pre-filled.
		m.screen = screenLogin
		m.status = okStyle.Render(msg.res.Message + " — log in to continue")
		m.loginInputs[0].SetValue(msg.res.Username)
		m.loginInputs[1].SetValue("")
		m.setLoginFocus(1)
		return m, nil

	case logoutDoneMsg:
		m.resetToLogin("logged out")
		return m, nil

	case overviewMsg:
		m.overview, m.overviewErr = msg.overview, msg.err
		return m.afterRegion(msg.err)
	case portfolioMsg:
		m.portfolio, m.portfolioErr = msg.snapshot, msg.err
		return m.afterRegion(msg.err)
	case opportunitiesMsg:
		m.opportunities, m.opportunitiesErr = msg.list, msg.err
		return m.afterRegion(msg.err)

	case quoteMsg:
		m.quote, m.quoteErr = msg.quote, msg.err
		return m.afterRegion(msg.err)
	case pulseMsg:
		m.pulse, m.pulseErr = msg.pulse, msg.err
		return m.afterRegion(msg.err)
	case riskMsg:
		m.risk, m.riskErr = msg.risk, msg.err
		return m.afterRegion(msg.err)
	case hedgeMsg:
		m.hedge, m.hedgeErr = msg.hedge, msg.err
		return m.afterRegion(msg.err)

	case tradeDoneMsg:
		m.busy = false
		if msg.err != nil {
			// Inputs are preserved so the user can correct and resubmit.
			m.status = errLine(msg.err)
			if api.IsAuth(msg.err) {
				m.resetToLogin("session expired, please log in again")
			}
			return m, nil
		}
		for i := range m.tradeInputs {
			m.tradeInputs[i].SetValue("")
		}
		m.setTradeFocus(0)
		m.status = okStyle.Render(msg.res.Message)
		return m, nil
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// afterRegion refreshes the rendered content and forces a return to the
// login screen when a region failed because the bearer token was rejected.
func (m model) afterRegion(err error) (tea.Model, tea.Cmd) {
	if err != nil && api.IsAuth(err) && m.screen != screenLogin {
		m.resetToLogin("session expired, please log in again")
		return m, nil
	}
	m.refreshContent()
	return m, nil
}

func (m *model) enterDashboard(user *api.UserProfile) {
	m.user = user
	m.screen = screenDashboard
	m.status = ""
	m.refreshContent()
}

func (m *model) resetToLogin(status string) {
	m.screen = screenLogin
	m.user = nil
	m.status = status
	m.busy = false
	m.overview, m.overviewErr = nil, nil
	m.portfolio, m.portfolioErr = nil, nil
	m.opportunities, m.opportunitiesErr = nil, nil
	m.clearAnalysis()
	m.loginInputs[1].SetValue("")
	m.setLoginFocus(0)
}

func (m *model) clearAnalysis() {
	m.symbol = ""
	m.quote, m.quoteErr = nil, nil
	m.pulse, m.pulseErr = nil, nil
	m.risk, m.riskErr = nil, nil
	m.hedge, m.hedgeErr = nil, nil
}

// ---------------------------------------------------------------------------
// Per-screen key handling

func (m model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		m.setLoginFocus((m.loginFocus + 1) % len(m.loginInputs))
		return m, nil
	case "shift+tab", "up":
		m.setLoginFocus((m.loginFocus + len(m.loginInputs) - 1) % len(m.loginInputs))
		return m, nil
	case "ctrl+r":
		m.screen = screenRegister
		m.status = ""
		m.setRegFocus(0)
		return m, nil
	case "enter":
		if m.busy {
			return m, nil
		}
		username := m.loginInputs[0].Value()
		password := m.loginInputs[1].Value()
		m.busy = true
		m.status = "signing in..."
		a := m.app
		return m, func() tea.Msg {
			user, err := a.ctrl.Login(context.Background(), username, password)
			return loginDoneMsg{user: user, err: err}
		}
	}
	var cmd tea.Cmd
	m.loginInputs[m.loginFocus], cmd = m.loginInputs[m.loginFocus].Update(msg)
	return m, cmd
}

func (m model) updateRegister(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.screen = screenLogin
		m.status = ""
		m.setLoginFocus(0)
		return m, nil
	case "tab", "down":
		m.setRegFocus((m.regFocus + 1) % len(m.regInputs))
		return m, nil
	case "shift+tab", "up":
		m.setRegFocus((m.regFocus + len(m.regInputs) - 1) % len(m.regInputs))
		return m, nil
	case "enter":
		if m.busy {
			return m, nil
		}
		form := auth.RegisterForm{
			Username: m.regInputs[0].Value(),
			Email:    m.regInputs[1].Value(),
			FullName: m.regInputs[2].Value(),
			Password: m.regInputs[3].Value(),
		}
		m.busy = true
		m.status = "creating account..."
		a := m.app
		return m, func() tea.Msg {
			res, err := a.ctrl.Register(context.Background(), form)
			return registerDoneMsg{res: res, err: err}
		}
	}
	var cmd tea.Cmd
	m.regInputs[m.regFocus], cmd = m.regInputs[m.regFocus].Update(msg)
	return m, cmd
}

func (m model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "r":
		m.overview, m.overviewErr = nil, nil
		m.portfolio, m.portfolioErr = nil, nil
		m.opportunities, m.opportunitiesErr = nil, nil
		m.refreshContent()
		m.app.dash.Load(context.Background())
		return m, nil
	case "a":
		m.screen = screenAnalysis
		m.status = ""
		m.symbolInput.Focus()
		m.refreshContent()
		return m, nil
	case "t":
		m.screen = screenTrade
		m.status = ""
		m.setTradeFocus(0)
		return m, nil
	case "l":
		a := m.app
		return m, func() tea.Msg {
			return logoutDoneMsg{err: a.ctrl.Logout()}
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) updateAnalysis(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.screen = screenDashboard
		m.status = ""
		m.symbolInput.Blur()
		m.refreshContent()
		return m, nil
	case "enter":
		symbol := m.symbolInput.Value()
		if err := m.app.stocks.Analyze(context.Background(), symbol); err != nil {
			m.status = errLine(err)
			return m, nil
		}
		m.clearAnalysis()
		m.symbol = strings.ToUpper(strings.TrimSpace(symbol))
		m.status = ""
		m.refreshContent()
		return m, nil
	}
	var cmd tea.Cmd
	m.symbolInput, cmd = m.symbolInput.Update(msg)
	return m, cmd
}

func (m model) updateTrade(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.screen = screenDashboard
		m.status = ""
		m.refreshContent()
		return m, nil
	case "tab", "down":
		m.setTradeFocus((m.tradeFocus + 1) % len(m.tradeInputs))
		return m, nil
	case "shift+tab", "up":
		m.setTradeFocus((m.tradeFocus + len(m.tradeInputs) - 1) % len(m.tradeInputs))
		return m, nil
	case "enter":
		if m.busy {
			return m, nil
		}
		symbol := m.tradeInputs[0].Value()
		// A non-numeric share count becomes zero and fails validation with
		// the same message as any other bad share count.
		shares, _ := strconv.Atoi(strings.TrimSpace(m.tradeInputs[1].Value()))
		action := m.tradeInputs[2].Value()
		m.busy = true
		m.status = "submitting..."
		a := m.app
		return m, func() tea.Msg {
			res, err := a.trades.Execute(context.Background(), symbol, shares, action)
			return tradeDoneMsg{res: res, err: err}
		}
	}
	var cmd tea.Cmd
	m.tradeInputs[m.tradeFocus], cmd = m.tradeInputs[m.tradeFocus].Update(msg)
	return m, cmd
}

func (m *model) setLoginFocus(i int) {
	m.loginFocus = i
	for j := range m.loginInputs {
		if j == i {
			m.loginInputs[j].Focus()
		} else {
			m.loginInputs[j].Blur()
		}
	}
}

func (m *model) setRegFocus(i int) {
	m.regFocus = i
	for j := range m.regInputs {
		if j == i {
			m.regInputs[j].Focus()
		} else {
			m.regInputs[j].Blur()
		}
	}
}

func (m *model) setTradeFocus(i int) {
	m.tradeFocus = i
	for j := range m.tradeInputs {
		if j == i {
			m.tradeInputs[j].Focus()
		} else {
			m.tradeInputs[j].Blur()
		}
	}
}

// ---------------------------------------------------------------------------
// Rendering

func (m *model) refreshContent() {
	if !m.ready {
		return
	}
	switch m.screen {
	case screenDashboard:
		m.viewport.SetContent(m.renderDashboard())
	case screenAnalysis:
		m.viewport.SetContent(m.renderAnalysis())
	}
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	who := ""
	if m.user != nil {
		who = "  " + m.user.Username
	}
	header := headerStyle.Render(padOrTrunc(" FinPulse"+who+" ", m.width))
	footer := footerStyle.Render(padOrTrunc(m.footerHints(), m.width))

	var body string
	switch m.screen {
	case screenLogin:
		body = m.renderLogin()
	case screenRegister:
		body = m.renderRegister()
	case screenTrade:
		body = m.renderTrade()
	default:
		body = m.viewport.View()
	}

	return header + "\n" + body + "\n" + footer
}

func (m model) footerHints() string {
	switch m.screen {
	case screenLogin:
		return " enter sign in  tab next field  ctrl+r register  ctrl+c quit"
	case screenRegister:
		return " enter create account  tab next field  esc back  ctrl+c quit"
	case screenDashboard:
		return " r reload  a analyze  t trade  l logout  q quit  pgup/dn scroll"
	case screenAnalysis:
		return " enter analyze  esc dashboard  ctrl+c quit"
	case screenTrade:
		return " enter submit  tab next field  esc dashboard  ctrl+c quit"
	}
	return ""
}

func (m model) renderLogin() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Sign in to FinPulse") + "\n\n")
	b.WriteString("  " + labelStyle.Render("Username") + "  " + m.loginInputs[0].View() + "\n")
	b.WriteString("  " + labelStyle.Render("Password") + "  " + m.loginInputs[1].View() + "\n\n")
	b.WriteString("  " + dimStyle.Render("demo account: john_doe / password123") + "\n")
	if m.status != "" {
		b.WriteString("\n  " + m.status + "\n")
	}
	return m.padBody(b.String())
}

func (m model) renderRegister() string {
	var b strings.Builder
	labels := []string{"Username ", "Email    ", "Full name", "Password "}
	b.WriteString("\n  " + titleStyle.Render("Create a FinPulse account") + "\n\n")
	for i, in := range m.regInputs {
		b.WriteString("  " + labelStyle.Render(labels[i]) + "  " + in.View() + "\n")
	}
	if m.status != "" {
		b.WriteString("\n  " + m.status + "\n")
	}
	return m.padBody(b.String())
}

func (m model) renderTrade() string {
	var b strings.Builder
	labels := []string{"Symbol", "Shares", "Action"}
	b.WriteString("\n  " + titleStyle.Render("Execute trade") + "\n\n")
	for i, in := range m.tradeInputs {
		b.WriteString("  " + labelStyle.Render(labels[i]) + "  " + in.View() + "\n")
	}
	if m.portfolio != nil {
		b.WriteString("\n  " + labelStyle.Render("Cash available") + "  " +
			valueStyle.Render(fmt.Sprintf("$%.2f", m.portfolio.CashBalance)) + "\n")
	}
	if m.status != "" {
		b.WriteString("\n  " + m.status + "\n")
	}
	return m.padBody(b.String())
}

// padBody fills the body to the viewport height so the footer stays pinned.
func (m model) padBody(s string) string {
	lines := strings.Count(s, "\n")
	want := m.height - 2
	for lines < want-1 {
		s += "\n"
		lines++
	}
	return s
}

func (m model) renderDashboard() string {
	var b strings.Builder

	b.WriteString("\n" + panelStyle.Render("  Market Overview") + "\n")
	switch {
	case m.overviewErr != nil:
		b.WriteString(regionError("market overview", m.overviewErr))
	case m.overview == nil:
		b.WriteString(dimStyle.Render("  loading...") + "\n")
	default:
		o := m.overview
		b.WriteString("  " + labelStyle.Render("Sentiment") + "  " +
			classStyle(viewmodel.TrendClass(o.MarketSentiment)).Render(o.MarketSentiment) + "\n")
		b.WriteString("  " + labelStyle.Render("SPY      ") + "  " +
			classStyle(viewmodel.GainClass(o.SPYPerformance)).Render(fmt.Sprintf("%+.2f%%", o.SPYPerformance)) + "\n")
	}

	b.WriteString("\n" + panelStyle.Render("  Portfolio") + "\n")
	switch {
	case m.portfolioErr != nil:
		b.WriteString(regionError("portfolio", m.portfolioErr))
	case m.portfolio == nil:
		b.WriteString(dimStyle.Render("  loading...") + "\n")
	default:
		b.WriteString(renderPortfolio(m.portfolio))
	}

	b.WriteString("\n" + panelStyle.Render("  Opportunities") + "\n")
	switch {
	case m.opportunitiesErr != nil:
		b.WriteString(regionError("opportunities", m.opportunitiesErr))
	case m.opportunities == nil:
		b.WriteString(dimStyle.Render("  loading...") + "\n")
	case len(m.opportunities) == 0:
		b.WriteString(dimStyle.Render("  no opportunities right now") + "\n")
	default:
		for _, op := range m.opportunities {
			b.WriteString(fmt.Sprintf("  %s  %s  %s  ",
				valueStyle.Render(fmt.Sprintf("%-6s", op.Symbol)),
				dimStyle.Render(fmt.Sprintf("%-22s", op.Type)),
				classStyle(viewmodel.GainClass(op.CurrentChange)).Render(fmt.Sprintf("%+6.2f%%", op.CurrentChange))))
			b.WriteString(dimStyle.Render(fmt.Sprintf("confidence %.0f%%", op.Confidence)) + "\n")
		}
	}

	return b.String()
}

func renderPortfolio(p *api.PortfolioAnalysis) string {
	var b strings.Builder
	b.WriteString("  " + labelStyle.Render("Cash     ") + "  " + valueStyle.Render(fmt.Sprintf("$%.2f", p.CashBalance)) + "\n")
	b.WriteString("  " + labelStyle.Render("Holdings ") + "  " + valueStyle.Render(fmt.Sprintf("$%.2f", p.HoldingsValue)) + "\n")
	b.WriteString("  " + labelStyle.Render("Gain/Loss") + "  " +
		classStyle(viewmodel.GainClass(p.TotalGainLoss)).Render(fmt.Sprintf("%+.2f (%+.2f%%)", p.TotalGainLoss, p.TotalGainLossPercent)) + "\n")
	b.WriteString("  " + labelStyle.Render("Risk     ") + "  " +
		classStyle(viewmodel.RiskClass(p.OverallRisk)).Render(p.OverallRisk) +
		dimStyle.Render(fmt.Sprintf("   diversification %.0f", p.DiversificationScore)) + "\n")

	if len(p.Holdings) > 0 {
		b.WriteString("\n" + dimStyle.Render(fmt.Sprintf("  %-6s %7s %10s %10s %9s", "Symbol", "Shares", "Avg", "Value", "G/L%")) + "\n")
		for _, h := range p.Holdings {
			b.WriteString(fmt.Sprintf("  %-6s %7d %10.2f %10.2f %s\n",
				h.Symbol, h.Shares, h.AvgPrice, h.CurrentValue,
				classStyle(viewmodel.GainClass(h.GainLossPercent)).Render(fmt.Sprintf("%+8.2f%%", h.GainLossPercent))))
		}
	}
	for _, insight := range p.AIInsights {
		b.WriteString("  " + dimStyle.Render("• "+insight) + "\n")
	}
	return b.String()
}

func (m model) renderAnalysis() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Stock Analysis") + "  " + m.symbolInput.View() + "\n")
	if m.status != "" {
		b.WriteString("  " + m.status + "\n")
	}
	if m.symbol == "" {
		b.WriteString("\n  " + dimStyle.Render("enter a symbol to analyze") + "\n")
		return b.String()
	}

	b.WriteString("\n" + panelStyle.Render("  Quote — "+m.symbol) + "\n")
	switch {
	case m.quoteErr != nil:
		b.WriteString(regionError("quote", m.quoteErr))
	case m.quote == nil:
		b.WriteString(dimStyle.Render("  loading...") + "\n")
	default:
		q := m.quote
		b.WriteString("  " + valueStyle.Render(fmt.Sprintf("$%.2f", q.CurrentPrice)) + "  " +
			classStyle(viewmodel.GainClass(q.PriceChange)).Render(fmt.Sprintf("%+.2f (%+.2f%%)", q.PriceChange, q.PriceChangePercent)) + "\n")
		b.WriteString("  " + dimStyle.Render(fmt.Sprintf("%s   vol %.0f   RSI %.1f", q.CompanyName, q.Volume, q.RSI)) + "\n")
	}

	b.WriteString("\n" + panelStyle.Render("  PulseScore") + "\n")
	switch {
	case m.pulseErr != nil:
		b.WriteString(regionError("pulsescore", m.pulseErr))
	case m.pulse == nil:
		b.WriteString(dimStyle.Render("  loading...") + "\n")
	default:
		p := m.pulse
		band := viewmodel.ScoreBand(p.PulseScore)
		b.WriteString("  " + classStyle(band).Render(fmt.Sprintf("%.0f (%s)", p.PulseScore, band)) + "  " +
			classStyle(viewmodel.TrendClass(p.Trend)).Render(p.Trend) + "  " +
			valueStyle.Render(p.Recommendation) + "\n")
		b.WriteString("  " + dimStyle.Render(fmt.Sprintf("momentum %.0f  trend %.0f  volume %.0f  rsi %.0f  confidence %.0f%%",
			p.Breakdown.Momentum, p.Breakdown.Trend, p.Breakdown.Volume, p.Breakdown.RSI, p.Confidence)) + "\n")
	}

	b.WriteString("\n" + panelStyle.Render("  Risk Radar") + "\n")
	switch {
	case m.riskErr != nil:
		b.WriteString(regionError("risk", m.riskErr))
	case m.risk == nil:
		b.WriteString(dimStyle.Render("  loading...") + "\n")
	default:
		r := m.risk
		b.WriteString("  " + classStyle(viewmodel.RiskClass(r.RiskLevel)).Render(r.RiskLevel) + "  " +
			classStyle(viewmodel.RiskColorClass(r.Color)).Render(fmt.Sprintf("score %.0f", r.RiskScore)) + "\n")
		b.WriteString("  " + dimStyle.Render(fmt.Sprintf("volatility %.1f%%  drawdown %.1f%%  sharpe %.2f  beta %.2f",
			r.Volatility, r.MaxDrawdown, r.SharpeRatio, r.Beta)) + "\n")
		b.WriteString("  " + dimStyle.Render(fmt.Sprintf("stress: crash %.1f%%  recession %.1f%%  vol spike %.1f%%",
			r.StressTest.MarketCrash, r.StressTest.Recession, r.StressTest.VolatilitySpike)) + "\n")
	}

	b.WriteString("\n" + panelStyle.Render("  Hedge Suggestions") + "\n")
	switch {
	case m.hedgeErr != nil:
		b.WriteString(regionError("hedge", m.hedgeErr))
	case m.hedge == nil:
		b.WriteString(dimStyle.Render("  loading...") + "\n")
	default:
		h := m.hedge
		b.WriteString("  " + valueStyle.Render(fmt.Sprintf("hedge score %.0f", h.HedgeScore)) + "  " +
			dimStyle.Render(h.PortfolioImpact) + "\n")
		for _, s := range h.Suggestions {
			b.WriteString(fmt.Sprintf("  %s %s  %s\n",
				valueStyle.Render(fmt.Sprintf("%-5s", s.Symbol)),
				dimStyle.Render(fmt.Sprintf("(%s, %.0f%% effective)", s.Type, s.Effectiveness)),
				dimStyle.Render(s.Description)))
		}
	}

	return b.String()
}

// regionError renders a scoped inline error for one region.
func regionError(region string, err error) string {
	return errStyle.Render("  "+region+" unavailable: "+api.Detail(err)) + "\n"
}

func errLine(err error) string {
	return errStyle.Render(api.Detail(err))
}

// padOrTrunc pads s with spaces to width, or truncates if longer.
func padOrTrunc(s string, width int) string {
	n := len(s)
	if n >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-n)
}

func main() {
	godotenv.Load()

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the TUI, so logs go to a rotated file.
	if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "creating log directory: %v\n", err)
		os.Exit(1)
	}
	logger, closer := logging.NewRotatingFile(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Format)
	defer closer.Close()

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.SessionPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "creating session directory: %v\n", err)
		os.Exit(1)
	}
	slot, err := session.OpenSQLiteSlot(cfg.Storage.SessionPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer slot.Close()

	sessions := session.NewStore(slot, logger)
	client := api.NewClient(cfg.Server.BaseURL, cfg.Server.Timeout(), sessions.Token, logger)
	ctrl := auth.NewController(client, sessions, logger)

	sink := &uiSink{}
	dash := dashboard.New(client, sink, logger)
	stocks := analysis.New(client, sink, logger)
	trades := trade.NewWorkflow(client, dash, logger)

	// Every successful login or restore triggers exactly one dashboard load.
	ctrl.OnLogin(func(*api.UserProfile) {
		dash.Load(context.Background())
	})

	a := &app{ctrl: ctrl, dash: dash, stocks: stocks, trades: trades, logger: logger}
	p := tea.NewProgram(initialModel(a), tea.WithAltScreen())
	sink.send = p.Send

	logger.Info("starting", "server", cfg.Server.BaseURL)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
