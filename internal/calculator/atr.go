package calculator

import (
	"math"

	"NiftySignal/internal/model"
)

// TrueRange is max(high-low, |high-prevClose|, |low-prevClose|).
func TrueRange(bar model.PriceBar, prevClose float64) float64 {
	return math.Max(bar.High-bar.Low, math.Max(math.Abs(bar.High-prevClose), math.Abs(bar.Low-prevClose)))
}

// CalculateATR returns the mean True Range of the trailing period bars.
// Every bar in the window needs a previous close, so period+1 bars are required.
func CalculateATR(bars []model.PriceBar, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrInvalidPeriod
	}
	if len(bars) < period+1 {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for i := len(bars) - period; i < len(bars); i++ {
		sum += TrueRange(bars[i], bars[i-1].Close)
	}
	return sum / float64(period), nil
}
