package calculator

import (
	"math"

	"NiftySignal/internal/model"
)

// RecentRange scans the most recent lookback bars and returns the highest
// high and the lowest low. Shorter series are scanned in full.
func RecentRange(bars []model.PriceBar, lookback int) (high, low float64, err error) {
	if lookback <= 0 {
		return 0, 0, ErrInvalidPeriod
	}
	if len(bars) == 0 {
		return 0, 0, ErrInsufficientData
	}
	n := len(bars)
	start := n - lookback
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return high, low, nil
}

// ChangeFromPrevious returns the absolute and percent change of the last
// close versus the close before it.
func ChangeFromPrevious(bars []model.PriceBar) (prevClose, change, changePct float64) {
	n := len(bars)
	if n == 0 {
		return 0, 0, 0
	}
	if n == 1 {
		return bars[0].Close, 0, 0
	}
	prevClose = bars[n-2].Close
	change = bars[n-1].Close - prevClose
	if prevClose != 0 {
		changePct = change / prevClose * 100
	}
	return prevClose, change, changePct
}
