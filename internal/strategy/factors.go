package strategy

import (
	"fmt"

	"NiftySignal/internal/model"
)

// scoreRSI scores momentum from RSI(14).
// <30 +40, >70 -40, [30,50) +10, [50,70] -10.
func scoreRSI(rsi model.Optional) (model.FactorScore, bool) {
	v, ok := rsi.Get()
	if !ok {
		return model.FactorScore{}, false
	}

	var points int
	var label string
	switch {
	case v < 30:
		points, label = 40, "oversold"
	case v > 70:
		points, label = -40, "overbought"
	case v < 50:
		points, label = 10, "neutral-bullish"
	default:
		points, label = -10, "neutral-bearish"
	}

	return model.FactorScore{
		Name:       "RSI",
		Points:     points,
		Commentary: fmt.Sprintf("RSI (%.1f) %s", v, label),
	}, true
}

// scoreTrend scores moving-average alignment.
// Bull alignment: price > SMA20 > SMA50
// Bear alignment: price < SMA20 < SMA50
func scoreTrend(price float64, sma20, sma50 model.Optional) (model.FactorScore, bool) {
	s20, ok20 := sma20.Get()
	s50, ok50 := sma50.Get()
	if !ok20 || !ok50 || price <= 0 {
		return model.FactorScore{}, false
	}

	switch {
	case price > s20 && s20 > s50:
		return model.FactorScore{Name: "Trend", Points: 25, Commentary: "Uptrend (price > MA20 > MA50)"}, true
	case price < s20 && s20 < s50:
		return model.FactorScore{Name: "Trend", Points: -25, Commentary: "Downtrend (price < MA20 < MA50)"}, true
	default:
		return model.FactorScore{}, false
	}
}

// scoreVolume scores volume confirmation from the volume ratio.
func scoreVolume(ratio float64) (model.FactorScore, bool) {
	switch {
	case ratio > 1.5:
		return model.FactorScore{Name: "Volume", Points: 10, Commentary: fmt.Sprintf("High volume (%.1fx average)", ratio)}, true
	case ratio < 0.5:
		return model.FactorScore{Name: "Volume", Points: -10, Commentary: fmt.Sprintf("Low volume (%.1fx average)", ratio)}, true
	default:
		return model.FactorScore{}, false
	}
}

// scoreVolatility scores ATR as a share of price.
// <2% +5, >5% -5. A zero ATR carries no information and is skipped.
func scoreVolatility(atr model.Optional, price float64) (model.FactorScore, bool) {
	v, ok := atr.Get()
	if !ok || v <= 0 || price <= 0 {
		return model.FactorScore{}, false
	}
	pct := v * 100 / price

	switch {
	case pct < 2:
		return model.FactorScore{Name: "Volatility", Points: 5, Commentary: fmt.Sprintf("Low volatility (ATR %.1f%% of price)", pct)}, true
	case pct > 5:
		return model.FactorScore{Name: "Volatility", Points: -5, Commentary: fmt.Sprintf("High volatility (ATR %.1f%% of price)", pct)}, true
	default:
		return model.FactorScore{}, false
	}
}

// scoreMACD scores the MACD line against its signal line.
func scoreMACD(line, signal, hist model.Optional) (model.FactorScore, bool) {
	l, okL := line.Get()
	s, okS := signal.Get()
	h, okH := hist.Get()
	if !okL || !okS || !okH {
		return model.FactorScore{}, false
	}

	switch {
	case l > s && h > 0:
		return model.FactorScore{Name: "MACD", Points: 20, Commentary: "MACD bullish (line above signal)"}, true
	case l < s && h < 0:
		return model.FactorScore{Name: "MACD", Points: -20, Commentary: "MACD bearish (line below signal)"}, true
	default:
		return model.FactorScore{}, false
	}
}
