package calculator

import "NiftySignal/internal/model"

// MACD is the latest point of a MACD(fast, slow, signal) computation.
type MACD struct {
	Line      float64
	Signal    float64
	Histogram float64
}

// CalculateMACD computes EMA(fast) - EMA(slow) over closes, its EMA(signal)
// and the histogram. At least slow bars are required.
func CalculateMACD(bars []model.PriceBar, fast, slow, signal int) (MACD, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return MACD{}, ErrInvalidPeriod
	}
	if len(bars) < slow {
		return MACD{}, ErrInsufficientData
	}
	closes := extractCloses(bars)

	fastEMA, err := CalculateEMA(closes, fast)
	if err != nil {
		return MACD{}, err
	}
	slowEMA, err := CalculateEMA(closes, slow)
	if err != nil {
		return MACD{}, err
	}
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	sig, err := CalculateEMA(line, signal)
	if err != nil {
		return MACD{}, err
	}

	last := len(line) - 1
	return MACD{
		Line:      line[last],
		Signal:    sig[last],
		Histogram: line[last] - sig[last],
	}, nil
}
