package model

import (
	"encoding/json"
	"strconv"
)

// Optional is a float that may be unavailable, e.g. an SMA200 over 120 bars.
// It encodes to JSON null when unavailable.
type Optional struct {
	Value float64
	Valid bool
}

// Some wraps an available value.
func Some(v float64) Optional { return Optional{Value: v, Valid: true} }

// None is the unavailable value.
func None() Optional { return Optional{} }

// Get returns the value and whether it is available.
func (o Optional) Get() (float64, bool) { return o.Value, o.Valid }

// Or returns the value, or def when unavailable.
func (o Optional) Or(def float64) float64 {
	if !o.Valid {
		return def
	}
	return o.Value
}

func (o Optional) String() string {
	if !o.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(o.Value, 'f', 2, 64)
}

func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *Optional) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = None()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// IndicatorSet holds all technical indicators computed from a bar series.
type IndicatorSet struct {
	RSI           Optional `json:"rsi"`
	SMA20         Optional `json:"sma20"`
	SMA50         Optional `json:"sma50"`
	SMA200        Optional `json:"sma200"`
	ATR           Optional `json:"atr"`
	MACD          Optional `json:"macd"`
	MACDSignal    Optional `json:"macd_signal"`
	MACDHistogram Optional `json:"macd_histogram"`
	VolumeRatio   float64  `json:"volume_ratio"`
	Support       Optional `json:"support_level"`    // lowest low of the trailing 20 bars
	Resistance    Optional `json:"resistance_level"` // highest high of the trailing 20 bars
	Bars          int      `json:"bars"`
}
