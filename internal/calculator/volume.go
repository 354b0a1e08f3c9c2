package calculator

import "NiftySignal/internal/model"

// CalculateVolumeRatio divides the latest volume by the mean volume of the
// trailing lookback bars (latest included). It returns 1.0 when history is
// too short or the mean is zero.
func CalculateVolumeRatio(bars []model.PriceBar, lookback int) float64 {
	if lookback <= 0 || len(bars) < lookback {
		return 1.0
	}
	sum := 0.0
	for i := len(bars) - lookback; i < len(bars); i++ {
		sum += bars[i].Volume
	}
	avg := sum / float64(lookback)
	if avg <= 0 {
		return 1.0
	}
	return bars[len(bars)-1].Volume / avg
}
