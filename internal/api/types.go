// Package api provides the HTTP client and wire types for the FinPulse
// analytics service.
package api

// Token is the response from POST /token.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserProfile is the authenticated user as returned by GET /users/me. It is
// replaced wholesale on every fetch, never partially mutated.
type UserProfile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Disabled bool   `json:"disabled"`
}

// RegisterRequest is the body for POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// RegisterResult is the response from POST /register.
type RegisterResult struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

// MarketOverview is the response from GET /api/market/overview.
type MarketOverview struct {
	MarketSentiment string  `json:"market_sentiment"`
	SPYPerformance  float64 `json:"spy_performance"`
	Timestamp       string  `json:"timestamp"`
}

// Holding is one position inside a portfolio snapshot.
type Holding struct {
	Symbol          string  `json:"symbol"`
	Shares          int     `json:"shares"`
	AvgPrice        float64 `json:"avg_price"`
	CurrentPrice    float64 `json:"current_price"`
	CurrentValue    float64 `json:"current_value"`
	GainLoss        float64 `json:"gain_loss"`
	GainLossPercent float64 `json:"gain_loss_percent"`
}

// PortfolioAnalysis is the point-in-time snapshot from
// GET /api/portfolio/analysis. Each successful fetch fully replaces the
// prior snapshot.
type PortfolioAnalysis struct {
	TotalInvested        float64   `json:"total_invested"`
	TotalCurrentValue    float64   `json:"total_current_value"`
	CashBalance          float64   `json:"cash_balance"`
	HoldingsValue        float64   `json:"holdings_value"`
	TotalGainLoss        float64   `json:"total_gain_loss"`
	TotalGainLossPercent float64   `json:"total_gain_loss_percent"`
	Holdings             []Holding `json:"holdings"`
	AIInsights           []string  `json:"ai_insights"`
	OverallRisk          string    `json:"overall_risk"`
	DiversificationScore float64   `json:"diversification_score"`
	Timestamp            string    `json:"timestamp"`
}

// ScoreBreakdown holds the component scores behind a PulseScore.
type ScoreBreakdown struct {
	Momentum float64 `json:"momentum"`
	Trend    float64 `json:"trend"`
	Volume   float64 `json:"volume"`
	RSI      float64 `json:"rsi"`
}

// TechnicalIndicators holds the raw indicator values behind a PulseScore.
// Absent on fallback responses.
type TechnicalIndicators struct {
	RSI          float64 `json:"rsi"`
	MACD         float64 `json:"macd"`
	PriceVsSMA20 float64 `json:"price_vs_sma20"`
	VolumeRatio  float64 `json:"volume_ratio"`
}

// PulseScore is the response from GET /api/pulsescore/{symbol}.
type PulseScore struct {
	Symbol             string               `json:"symbol"`
	PulseScore         float64              `json:"pulsescore"`
	Trend              string               `json:"trend"`
	Recommendation     string               `json:"recommendation"`
	Color              string               `json:"color"`
	CurrentPrice       float64              `json:"current_price"`
	PriceChangePercent float64              `json:"price_change_percent"`
	Confidence         float64              `json:"confidence"`
	Breakdown          ScoreBreakdown       `json:"breakdown"`
	Technical          *TechnicalIndicators `json:"technical_indicators,omitempty"`
	IsRealData         bool                 `json:"is_real_data"`
	Timestamp          string               `json:"timestamp"`
}

// StressTest holds projected loss percentages under stress scenarios.
type StressTest struct {
	MarketCrash     float64 `json:"market_crash"`
	Recession       float64 `json:"recession"`
	VolatilitySpike float64 `json:"volatility_spike"`
}

// RiskRadar is the response from GET /api/risk/{symbol}.
type RiskRadar struct {
	Symbol      string     `json:"symbol"`
	RiskLevel   string     `json:"risk_level"`
	RiskScore   float64    `json:"risk_score"`
	Color       string     `json:"color"`
	Volatility  float64    `json:"volatility"`
	MaxDrawdown float64    `json:"max_drawdown"`
	SharpeRatio float64    `json:"sharpe_ratio"`
	Beta        float64    `json:"beta"`
	StressTest  StressTest `json:"stress_test"`
	IsRealData  bool       `json:"is_real_data"`
	Timestamp   string     `json:"timestamp"`
}

// HedgeSuggestion is one suggested hedge instrument or strategy.
type HedgeSuggestion struct {
	Type          string  `json:"type"`
	Symbol        string  `json:"symbol"`
	Description   string  `json:"description"`
	Effectiveness float64 `json:"effectiveness"`
	Cost          string  `json:"cost"`
}

// Hedge is the response from GET /api/hedge/{symbol}.
type Hedge struct {
	Symbol          string            `json:"symbol"`
	HedgeScore      float64           `json:"hedge_score"`
	Suggestions     []HedgeSuggestion `json:"suggestions"`
	PortfolioImpact string            `json:"portfolio_impact"`
	Timestamp       string            `json:"timestamp"`
}

// Opportunity is one entry from GET /api/opportunities. Display order is
// server order.
type Opportunity struct {
	Symbol           string   `json:"symbol"`
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	Confidence       float64  `json:"confidence"`
	PotentialReturn  float64  `json:"potential_return"`
	CurrentChange    float64  `json:"current_change"`
	CurrentPrice     float64  `json:"current_price"`
	Reasoning        []string `json:"reasoning"`
	OpportunityScore float64  `json:"opportunity_score"`
	Timestamp        string   `json:"timestamp"`
}

// OpportunityList is the envelope around GET /api/opportunities.
type OpportunityList struct {
	Timestamp     string        `json:"timestamp"`
	Opportunities []Opportunity `json:"opportunities"`
}

// StockData is the raw quote from GET /api/stock/{symbol}.
type StockData struct {
	Symbol             string  `json:"symbol"`
	CurrentPrice       float64 `json:"current_price"`
	PriceChange        float64 `json:"price_change"`
	PriceChangePercent float64 `json:"price_change_percent"`
	CompanyName        string  `json:"company_name"`
	Volume             float64 `json:"volume"`
	VolumeAvg          float64 `json:"volume_avg"`
	MarketCap          float64 `json:"market_cap"`
	RSI                float64 `json:"rsi"`
	MACD               float64 `json:"macd"`
	MACDSignal         float64 `json:"macd_signal"`
	SMA20              float64 `json:"sma_20"`
	SMA50              float64 `json:"sma_50"`
	IsRealData         bool    `json:"is_real_data"`
	Timestamp          string  `json:"timestamp"`
}

// TradeRequest is the body for POST /api/trade.
type TradeRequest struct {
	Symbol string `json:"symbol"`
	Shares int    `json:"shares"`
	Action string `json:"action"`
}

// TradeResult is the confirmation from POST /api/trade.
type TradeResult struct {
	Message     string  `json:"message"`
	CurrentCash float64 `json:"current_cash"`
	TradeValue  float64 `json:"trade_value"`
}
