package strategy

import "NiftySignal/internal/model"

// Thresholds maps a total score to a signal, checked top-down.
var Thresholds = []struct {
	MinScore int
	Signal   model.Signal
}{
	{60, model.SignalStrongBuy},
	{20, model.SignalBuy},
	{-19, model.SignalHold},
	{-59, model.SignalSell},
}

// DefaultSignal applies to scores of -60 and below.
const DefaultSignal = model.SignalStrongSell

const (
	strongThreshold  = 60
	regularThreshold = 20
	holdConfidence   = 70
)

// mapSignal maps a total score to a Signal.
func mapSignal(score int) model.Signal {
	for _, t := range Thresholds {
		if score >= t.MinScore {
			return t.Signal
		}
	}
	return DefaultSignal
}

// confidence grows with the distance of the score past its signal's threshold.
func confidence(signal model.Signal, score int) int {
	abs := score
	if abs < 0 {
		abs = -abs
	}
	switch {
	case signal.IsStrong():
		return min(95, 70+(abs-strongThreshold)/4)
	case signal == model.SignalHold:
		return holdConfidence
	default:
		return min(85, 60+(abs-regularThreshold)/2)
	}
}

// ScoreSignal computes the signal from indicators, current price and the two
// trend averages. Missing inputs contribute nothing.
func ScoreSignal(ind model.IndicatorSet, price float64, sma20, sma50 model.Optional) model.SignalResult {
	var breakdown []model.FactorScore
	add := func(f model.FactorScore, ok bool) {
		if ok {
			breakdown = append(breakdown, f)
		}
	}

	add(scoreRSI(ind.RSI))
	add(scoreTrend(price, sma20, sma50))
	add(scoreVolume(ind.VolumeRatio))
	add(scoreVolatility(ind.ATR, price))
	add(scoreMACD(ind.MACD, ind.MACDSignal, ind.MACDHistogram))

	score := 0
	factors := make([]string, 0, len(breakdown))
	for _, f := range breakdown {
		score += f.Points
		factors = append(factors, f.Commentary)
	}

	signal := mapSignal(score)
	return model.SignalResult{
		Signal:     signal,
		Score:      score,
		Confidence: confidence(signal, score),
		Factors:    factors,
		Breakdown:  breakdown,
	}
}

// Evaluate scores ind against price using the set's own SMA20 and SMA50.
func Evaluate(ind model.IndicatorSet, price float64) model.SignalResult {
	return ScoreSignal(ind, price, ind.SMA20, ind.SMA50)
}
