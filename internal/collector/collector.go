package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"NiftySignal/internal/calculator"
	"NiftySignal/internal/metrics"
	"NiftySignal/internal/model"
	"NiftySignal/internal/risk"
	"NiftySignal/internal/strategy"
)

// HistoryBars is the number of daily bars requested per analysis, enough to
// cover SMA200 with room for holidays.
const HistoryBars = 300

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  []model.PriceBar
	Err   error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, days int) ([]model.PriceBar, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	return generateMockBars(m.Price, days), nil
}

func generateMockBars(basePrice float64, count int) []model.PriceBar {
	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.PriceBar{
			Time:   end.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector orchestrates data fetching, indicator computation, scoring and
// risk planning for one symbol.
type Collector struct {
	Fetcher Fetcher
	Metrics *metrics.Metrics
	Bars    int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, m *metrics.Metrics) *Collector {
	return &Collector{Fetcher: fetcher, Metrics: m, Bars: HistoryBars}
}

// Analyze runs the full pipeline for symbol. symbol must already be normalized.
func (c *Collector) Analyze(ctx context.Context, symbol, appetite string, custom *model.CustomRisk) (*model.Analysis, error) {
	start := time.Now()

	series, err := FetchSeries(ctx, c.Fetcher, symbol, c.Bars)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	last, ok := series.Last()
	if !ok {
		return nil, fmt.Errorf("fetch %s: %w", symbol, ErrNoData)
	}

	ind := calculator.ComputeIndicators(series.Bars)
	if missing := unavailable(ind); len(missing) > 0 {
		log.Warn().Str("symbol", symbol).Int("bars", ind.Bars).Strs("unavailable", missing).
			Msg("short history, some indicators skipped")
	}

	price := last.Close
	signal := strategy.Evaluate(ind, price)
	plan := risk.PlanFromInput(price, ind.ATR, ind.Support, appetite, custom)
	prevClose, change, changePct := calculator.ChangeFromPrevious(series.Bars)

	a := &model.Analysis{
		Symbol:      symbol,
		Price:       price,
		PrevClose:   prevClose,
		Change:      change,
		ChangePct:   changePct,
		Volume:      last.Volume,
		Indicators:  ind,
		Signal:      signal,
		SignalColor: signal.Signal.Color(),
		Risk:        plan,
		Source:      series.Source,
		GeneratedAt: time.Now(),
	}
	a.Summary = Summarize(a)

	if c.Metrics != nil {
		c.Metrics.AnalysesTotal.WithLabelValues(string(signal.Signal)).Inc()
		c.Metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	}
	log.Debug().Str("symbol", symbol).Str("signal", string(signal.Signal)).Int("score", signal.Score).
		Str("source", series.Source).Msg("analysis complete")
	return a, nil
}

// Summarize renders a one-paragraph plain-text explanation of an analysis.
func Summarize(a *model.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Technical analysis for %s: %s (score %d, confidence %d%%).",
		DisplaySymbol(a.Symbol), a.Signal.Signal, a.Signal.Score, a.Signal.Confidence)
	if len(a.Signal.Factors) > 0 {
		fmt.Fprintf(&b, " %s.", strings.Join(a.Signal.Factors, "; "))
	}
	fmt.Fprintf(&b, " Suggested stop-loss %.2f and exit target %.2f (risk/reward %.2f, %s).",
		a.Risk.StopLoss, a.Risk.ExitTarget, a.Risk.RiskRewardRatio, a.Risk.TimeHorizon)
	return b.String()
}

func unavailable(ind model.IndicatorSet) []string {
	var out []string
	for _, f := range []struct {
		name string
		v    model.Optional
	}{
		{"rsi", ind.RSI},
		{"sma20", ind.SMA20},
		{"sma50", ind.SMA50},
		{"sma200", ind.SMA200},
		{"atr", ind.ATR},
		{"macd", ind.MACD},
	} {
		if !f.v.Valid {
			out = append(out, f.name)
		}
	}
	return out
}
