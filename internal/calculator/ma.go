package calculator

import (
	"errors"

	"NiftySignal/internal/model"
)

var (
	// ErrInvalidPeriod is returned for a zero or negative lookback.
	ErrInvalidPeriod = errors.New("period must be positive")
	// ErrInsufficientData is returned when the series is shorter than the lookback.
	ErrInsufficientData = errors.New("not enough data")
)

// CalculateSMA computes the simple moving average of the trailing period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrInvalidPeriod
	}
	if len(prices) < period {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateEMA returns the exponential moving average series of values using
// alpha = 2/(period+1), seeded with the first value.
func CalculateEMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(values) == 0 {
		return nil, ErrInsufficientData
	}
	alpha := 2.0 / float64(period+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out, nil
}

// CalculateSMAFromBars is CalculateSMA over bar closes.
func CalculateSMAFromBars(bars []model.PriceBar, period int) (float64, error) {
	return CalculateSMA(extractCloses(bars), period)
}

func extractCloses(bars []model.PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
