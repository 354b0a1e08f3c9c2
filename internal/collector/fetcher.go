package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"NiftySignal/internal/model"
)

// ErrNoData is returned when a provider answers without any usable bars.
var ErrNoData = errors.New("no data returned")

// StatusError is a non-200 HTTP response from a provider. A 404 unwraps to
// ErrNoData.
type StatusError struct {
	Source string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d, body: %s", e.Source, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return ErrNoData
	}
	return nil
}

// IsProviderFailure reports whether err means the provider itself is
// unhealthy: transport errors, timeouts, 429 and 5xx responses. Unknown
// symbols, other 4xx responses and caller cancellation are not failures.
func IsProviderFailure(err error) bool {
	if err == nil || errors.Is(err, ErrNoData) || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= http.StatusInternalServerError
	}
	return true
}

// Fetcher defines the interface for fetching daily market data.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PriceBar, error)
	Name() string
}

// SeriesFetcher is implemented by fetchers that can report which provider
// actually served the bars.
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, symbol string, days int) (model.PriceSeries, error)
}

// FetchSeries fetches days bars for symbol and tags them with their source.
func FetchSeries(ctx context.Context, f Fetcher, symbol string, days int) (model.PriceSeries, error) {
	if sf, ok := f.(SeriesFetcher); ok {
		return sf.FetchSeries(ctx, symbol, days)
	}
	bars, err := f.FetchDailyBars(ctx, symbol, days)
	if err != nil {
		return model.PriceSeries{}, err
	}
	return model.PriceSeries{Symbol: symbol, Bars: bars, Source: f.Name(), FetchedAt: time.Now()}, nil
}

// newHTTPClient builds a client with a 30s timeout and optional proxy support.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
