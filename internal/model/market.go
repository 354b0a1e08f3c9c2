package model

import "time"

// PriceBar represents a single daily candlestick bar.
type PriceBar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds raw bars for one symbol together with the provider they came from.
type PriceSeries struct {
	Symbol    string
	Bars      []PriceBar
	Source    string
	FetchedAt time.Time
}

// Last returns the most recent bar. ok is false for an empty series.
func (s PriceSeries) Last() (PriceBar, bool) {
	if len(s.Bars) == 0 {
		return PriceBar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}
