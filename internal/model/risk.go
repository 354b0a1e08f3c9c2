package model

import "strings"

// RiskAppetite selects how aggressive the stop-loss and exit target are.
type RiskAppetite string

const (
	RiskLow      RiskAppetite = "low"
	RiskMedium   RiskAppetite = "medium"
	RiskModerate RiskAppetite = "moderate"
	RiskHigh     RiskAppetite = "high"
	RiskCustom   RiskAppetite = "custom"
)

// ParseRiskAppetite maps user input to an appetite. Unknown or empty input
// yields RiskMedium with defaulted set.
func ParseRiskAppetite(s string) (appetite RiskAppetite, defaulted bool) {
	switch RiskAppetite(strings.ToLower(strings.TrimSpace(s))) {
	case RiskLow:
		return RiskLow, false
	case RiskMedium:
		return RiskMedium, false
	case RiskModerate:
		return RiskModerate, false
	case RiskHigh:
		return RiskHigh, false
	case RiskCustom:
		return RiskCustom, false
	default:
		return RiskMedium, true
	}
}

// CustomRisk carries caller-supplied percentages, e.g. 3 and 9 for 3% / 9%.
type CustomRisk struct {
	StopLossPct   float64 `json:"stop_loss_pct"`
	ExitTargetPct float64 `json:"exit_target_pct"`
}

// RiskMethod names the rule that produced a plan's stop-loss.
type RiskMethod string

const (
	MethodPercentage RiskMethod = "percentage"
	MethodATR        RiskMethod = "atr"
	MethodCustom     RiskMethod = "custom"
)

// RiskPlan holds entry, stop-loss and exit prices for a BUY-oriented trade.
type RiskPlan struct {
	EntryPrice        float64      `json:"entry_price"`
	StopLoss          float64      `json:"stop_loss"`
	ExitTarget        float64      `json:"exit_target"`
	TargetProfit      float64      `json:"target_profit"`
	RiskRewardRatio   float64      `json:"risk_reward_ratio"`
	Appetite          RiskAppetite `json:"risk_appetite"`
	StopLossPct       float64      `json:"stop_loss_pct"`
	Method            RiskMethod   `json:"method"`
	AppetiteDefaulted bool         `json:"risk_defaulted"`
	Note              string       `json:"note,omitempty"`
	TimeHorizon       string       `json:"time_horizon"`
}
