package calculator

import "NiftySignal/internal/model"

// Standard lookbacks used by ComputeIndicators.
const (
	RSIPeriod        = 14
	ATRPeriod        = 14
	MACDFast         = 12
	MACDSlow         = 26
	MACDSignalPeriod = 9
	VolumeLookback   = 20
	RangeLookback    = 20
)

// ComputeIndicators derives the full IndicatorSet from chronological bars.
// A field whose lookback is not covered is left unavailable; the others are
// still computed.
func ComputeIndicators(bars []model.PriceBar) model.IndicatorSet {
	ind := model.IndicatorSet{
		Bars:        len(bars),
		VolumeRatio: CalculateVolumeRatio(bars, VolumeLookback),
	}
	closes := extractCloses(bars)

	if rsi, err := CalculateRSI(bars, RSIPeriod); err == nil {
		ind.RSI = model.Some(rsi)
	}
	if v, err := CalculateSMA(closes, 20); err == nil {
		ind.SMA20 = model.Some(v)
	}
	if v, err := CalculateSMA(closes, 50); err == nil {
		ind.SMA50 = model.Some(v)
	}
	if v, err := CalculateSMA(closes, 200); err == nil {
		ind.SMA200 = model.Some(v)
	}
	if atr, err := CalculateATR(bars, ATRPeriod); err == nil {
		ind.ATR = model.Some(atr)
	}
	if m, err := CalculateMACD(bars, MACDFast, MACDSlow, MACDSignalPeriod); err == nil {
		ind.MACD = model.Some(m.Line)
		ind.MACDSignal = model.Some(m.Signal)
		ind.MACDHistogram = model.Some(m.Histogram)
	}
	if h, l, err := RecentRange(bars, RangeLookback); err == nil {
		ind.Resistance = model.Some(h)
		ind.Support = model.Some(l)
	}
	return ind
}
