package model

// Signal is the categorical output of the scorer.
type Signal string

const (
	SignalStrongBuy  Signal = "STRONG_BUY"
	SignalBuy        Signal = "BUY"
	SignalHold       Signal = "HOLD"
	SignalSell       Signal = "SELL"
	SignalStrongSell Signal = "STRONG_SELL"
)

// IsBuy reports whether s is BUY or STRONG_BUY.
func (s Signal) IsBuy() bool { return s == SignalBuy || s == SignalStrongBuy }

// IsSell reports whether s is SELL or STRONG_SELL.
func (s Signal) IsSell() bool { return s == SignalSell || s == SignalStrongSell }

// IsStrong reports whether s is one of the two strong signals.
func (s Signal) IsStrong() bool { return s == SignalStrongBuy || s == SignalStrongSell }

// Color is the dashboard badge class for the signal.
func (s Signal) Color() string {
	switch {
	case s.IsBuy():
		return "success"
	case s.IsSell():
		return "danger"
	default:
		return "warning"
	}
}

// FactorScore represents a single factor's scoring result.
type FactorScore struct {
	Name       string `json:"name"`
	Points     int    `json:"points"`
	Commentary string `json:"commentary"`
}

// SignalResult is the final output of the strategy engine.
type SignalResult struct {
	Signal     Signal        `json:"signal"`
	Score      int           `json:"score"`
	Confidence int           `json:"confidence"`
	Factors    []string      `json:"factors"`
	Breakdown  []FactorScore `json:"breakdown"`
}
