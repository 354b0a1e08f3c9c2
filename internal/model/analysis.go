package model

import "time"

// Analysis is the full per-symbol result handed to HTTP, chat and alert callers.
type Analysis struct {
	Symbol      string       `json:"symbol"`
	Price       float64      `json:"current_price"`
	PrevClose   float64      `json:"previous_close"`
	Change      float64      `json:"change"`
	ChangePct   float64      `json:"change_percent"`
	Volume      float64      `json:"volume"`
	Indicators  IndicatorSet `json:"indicators"`
	Signal      SignalResult `json:"signal"`
	SignalColor string       `json:"signal_color"`
	Risk        RiskPlan     `json:"risk"`
	Summary     string       `json:"analysis_summary"`
	Source      string       `json:"data_source"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// StockSummary is one row of the watchlist snapshot.
type StockSummary struct {
	Symbol     string  `json:"symbol"`
	Price      float64 `json:"price"`
	Change     float64 `json:"change"`
	ChangePct  float64 `json:"change_percent"`
	Volume     float64 `json:"volume"`
	Signal     Signal  `json:"signal"`
	Score      int     `json:"score"`
	Confidence int     `json:"confidence"`
	StopLoss   float64 `json:"stop_loss"`
	ExitTarget float64 `json:"exit_target"`
}

// Snapshot is the analysed watchlist.
type Snapshot struct {
	Stocks              []StockSummary `json:"stocks"`
	Failed              []string       `json:"failed,omitempty"`
	IsFresh             bool           `json:"is_fresh"`
	LastUpdated         time.Time      `json:"last_updated"`
	NextUpdateInMinutes int            `json:"next_update_in_minutes"`
	DataSource          string         `json:"data_source"`
}

// Movers lists the best and worst performers of a snapshot by change percent.
type Movers struct {
	Gainers []StockSummary `json:"gainers"`
	Losers  []StockSummary `json:"losers"`
}

// SentimentLevel is the overall market mood derived from breadth.
type SentimentLevel string

const (
	SentimentBullish           SentimentLevel = "BULLISH"
	SentimentModeratelyBullish SentimentLevel = "MODERATELY_BULLISH"
	SentimentNeutral           SentimentLevel = "NEUTRAL"
	SentimentModeratelyBearish SentimentLevel = "MODERATELY_BEARISH"
	SentimentBearish           SentimentLevel = "BEARISH"
)

// Sentiment summarises market breadth over the watchlist.
type Sentiment struct {
	Level        SentimentLevel `json:"sentiment"`
	Description  string         `json:"description"`
	Gainers      int            `json:"gainers"`
	Losers       int            `json:"losers"`
	AdvancePct   float64        `json:"advance_percent"`
	AvgChangePct float64        `json:"average_change_percent"`
	StrongBuys   int            `json:"strong_buys"`
	StrongSells  int            `json:"strong_sells"`
	EvaluatedAt  time.Time      `json:"evaluated_at"`
}

// MarketStatus describes the NSE session at a point in time.
type MarketStatus struct {
	Open       bool      `json:"open"`
	TradingDay bool      `json:"trading_day"`
	Message    string    `json:"message"`
	NextOpen   time.Time `json:"next_open"`
	Now        time.Time `json:"now"`
}
