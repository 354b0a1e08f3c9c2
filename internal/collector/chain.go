package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"NiftySignal/internal/metrics"
	"NiftySignal/internal/model"
)

// ErrAllSourcesFailed is returned when every provider in a chain failed.
var ErrAllSourcesFailed = errors.New("all market data sources failed")

type chainLink struct {
	fetcher Fetcher
	breaker *CircuitBreaker
}

// ChainFetcher tries each provider in order and returns the first usable
// answer. Every provider sits behind its own circuit breaker.
type ChainFetcher struct {
	links   []chainLink
	metrics *metrics.Metrics
}

// NewChainFetcher wraps fetchers, in priority order, into a fallback chain.
func NewChainFetcher(m *metrics.Metrics, maxFailures int, resetTimeout time.Duration, fetchers ...Fetcher) *ChainFetcher {
	c := &ChainFetcher{metrics: m}
	for _, f := range fetchers {
		cb := NewCircuitBreaker(maxFailures, resetTimeout)
		name := f.Name()
		cb.OnStateChange = func(from, to BreakerState) {
			log.Warn().Str("source", name).Stringer("from", from).Stringer("to", to).Msg("provider breaker state changed")
			if m != nil {
				m.BreakerState.WithLabelValues(name).Set(float64(to))
			}
		}
		if m != nil {
			m.BreakerState.WithLabelValues(name).Set(float64(StateClosed))
		}
		c.links = append(c.links, chainLink{fetcher: f, breaker: cb})
	}
	return c
}

func (c *ChainFetcher) Name() string {
	names := make([]string, len(c.links))
	for i, l := range c.links {
		names[i] = l.fetcher.Name()
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

func (c *ChainFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PriceBar, error) {
	series, err := c.FetchSeries(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	return series.Bars, nil
}

// FetchSeries returns the first non-empty series and names the provider
// that served it. When every provider reports the symbol unknown the error
// wraps ErrNoData only; any other mix wraps ErrAllSourcesFailed.
func (c *ChainFetcher) FetchSeries(ctx context.Context, symbol string, days int) (model.PriceSeries, error) {
	var (
		errs   []error
		noData int
	)
	for _, l := range c.links {
		if err := ctx.Err(); err != nil {
			return model.PriceSeries{}, err
		}
		name := l.fetcher.Name()
		start := time.Now()

		var bars []model.PriceBar
		err := l.breaker.Execute(func() error {
			var ferr error
			bars, ferr = l.fetcher.FetchDailyBars(ctx, symbol, days)
			if ferr == nil && len(bars) == 0 {
				ferr = ErrNoData
			}
			return ferr
		})
		c.observe(name, start, err)

		if err != nil {
			if errors.Is(err, context.Canceled) {
				return model.PriceSeries{}, err
			}
			if errors.Is(err, ErrNoData) {
				noData++
				log.Debug().Str("source", name).Str("symbol", symbol).Msg("provider has no data, trying next")
			} else if !errors.Is(err, ErrCircuitOpen) {
				log.Warn().Err(err).Str("source", name).Str("symbol", symbol).Msg("provider fetch failed, trying next")
			}
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}

		log.Debug().Str("source", name).Str("symbol", symbol).Int("bars", len(bars)).Msg("fetched daily bars")
		return model.PriceSeries{Symbol: symbol, Bars: bars, Source: name, FetchedAt: time.Now()}, nil
	}
	if noData > 0 && noData == len(errs) {
		return model.PriceSeries{}, fmt.Errorf("%s: %w", symbol, errors.Join(errs...))
	}
	return model.PriceSeries{}, fmt.Errorf("%w for %s: %w", ErrAllSourcesFailed, symbol, errors.Join(errs...))
}

func (c *ChainFetcher) observe(source string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	result := "ok"
	switch {
	case errors.Is(err, ErrCircuitOpen):
		result = "rejected"
	case err != nil:
		result = "error"
	default:
		c.metrics.FetchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	}
	c.metrics.FetchTotal.WithLabelValues(source, result).Inc()
}
