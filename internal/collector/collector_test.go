package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NiftySignal/internal/metrics"
	"NiftySignal/internal/model"
)

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{"tcs", "TCS.NS", false},
		{" reliance ", "RELIANCE.NS", false},
		{"INFY.NS", "INFY.NS", false},
		{"RELIANCE.BO", "RELIANCE.BO", false},
		{"^nsei", "^NSEI", false},
		{"M&M", "M&M.NS", false},
		{"BAJAJ-AUTO", "BAJAJ-AUTO.NS", false},
		{"", "", true},
		{"TC S", "", true},
		{"<script>", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeSymbol(tt.in)
		if tt.err {
			assert.ErrorIs(t, err, ErrInvalidSymbol, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	assert.Equal(t, "TCS", DisplaySymbol("TCS.NS"))
}

const yahooBody = `{"chart":{"result":[{"timestamp":[1767571200,1767657600,1767744000],
"indicators":{"quote":[{"open":[100,null,102],"high":[101,null,103],"low":[99,null,101],
"close":[100.5,null,102.5],"volume":[1000,null,1200]}]}}],"error":null}}`

func TestYahooFetcher_SkipsNullBars(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, yahooBody)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	bars, err := f.FetchDailyBars(context.Background(), "NIFTY.NS", 300)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 100.5, bars[0].Close)
	assert.Equal(t, 102.5, bars[1].Close)
	assert.Equal(t, 1200.0, bars[1].Volume)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
	assert.Equal(t, "/v8/finance/chart/%5ENSEI", gotPath)
	assert.Contains(t, gotQuery, "range=2y")
}

func TestYahooFetcher_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "BAD") {
			fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
			return
		}
		if strings.Contains(r.URL.Path, "GONE") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	_, err := f.FetchDailyBars(context.Background(), "BAD.NS", 30)
	assert.ErrorContains(t, err, "No data found")
	assert.ErrorIs(t, err, ErrNoData)

	_, err = f.FetchDailyBars(context.Background(), "GONE.NS", 30)
	assert.ErrorIs(t, err, ErrNoData)
	assert.False(t, IsProviderFailure(err))

	_, err = f.FetchDailyBars(context.Background(), "TCS.NS", 30)
	assert.ErrorContains(t, err, "status 429")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.True(t, IsProviderFailure(err))
}

func TestIsProviderFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"no data", fmt.Errorf("yahoo X.NS: %w", ErrNoData), false},
		{"not found", &StatusError{Source: "fmp", Code: http.StatusNotFound}, false},
		{"forbidden", &StatusError{Source: "fmp", Code: http.StatusForbidden}, false},
		{"rate limited", &StatusError{Source: "yahoo", Code: http.StatusTooManyRequests}, true},
		{"server error", &StatusError{Source: "yahoo", Code: http.StatusBadGateway}, true},
		{"caller cancelled", fmt.Errorf("yahoo fetch: %w", context.Canceled), false},
		{"timeout", fmt.Errorf("yahoo fetch: %w", context.DeadlineExceeded), true},
		{"transport", errors.New("connection refused"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsProviderFailure(tt.err))
		})
	}
}

func TestYahooRange(t *testing.T) {
	assert.Equal(t, "1mo", yahooRange(15))
	assert.Equal(t, "6mo", yahooRange(100))
	assert.Equal(t, "1y", yahooRange(200))
	assert.Equal(t, "2y", yahooRange(300))
}

func TestAlphaVantageFetcher(t *testing.T) {
	var gotSymbol string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSymbol = r.URL.Query().Get("symbol")
		fmt.Fprint(w, `{"Time Series (Daily)":{
"2026-01-06":{"1. open":"101","2. high":"103","3. low":"100","4. close":"102","5. volume":"5000"},
"2026-01-05":{"1. open":"99","2. high":"101","3. low":"98","4. close":"100","5. volume":"4000"},
"2026-01-02":{"1. open":"98","2. high":"100","3. low":"97","4. close":"99","5. volume":"3000"}}}`)
	}))
	defer srv.Close()

	f := NewAlphaVantageFetcher("key", "")
	f.BaseURL = srv.URL
	bars, err := f.FetchDailyBars(context.Background(), "TCS.NS", 2)
	require.NoError(t, err)
	assert.Equal(t, "TCS.BSE", gotSymbol)
	require.Len(t, bars, 2)
	assert.Equal(t, 100.0, bars[0].Close)
	assert.Equal(t, 102.0, bars[1].Close)
}

func TestAlphaVantageFetcher_RateLimitNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Note":"Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`)
	}))
	defer srv.Close()

	f := NewAlphaVantageFetcher("key", "")
	f.BaseURL = srv.URL
	_, err := f.FetchDailyBars(context.Background(), "TCS.NS", 30)
	assert.ErrorContains(t, err, "rate limited")

	_, err = NewAlphaVantageFetcher("", "").FetchDailyBars(context.Background(), "TCS.NS", 30)
	assert.ErrorContains(t, err, "api key")
}

func TestFMPFetcher_SortsChronologically(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/historical-price-full/INFY.NS", r.URL.Path)
		assert.Equal(t, "30", r.URL.Query().Get("timeseries"))
		fmt.Fprint(w, `{"symbol":"INFY.NS","historical":[
{"date":"2026-01-06","open":10,"high":11,"low":9,"close":10.5,"volume":100},
{"date":"2026-01-05","open":9,"high":10,"low":8,"close":9.5,"volume":90}]}`)
	}))
	defer srv.Close()

	f := NewFMPFetcher("key", "")
	f.BaseURL = srv.URL
	bars, err := f.FetchDailyBars(context.Background(), "INFY.NS", 30)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 9.5, bars[0].Close)
	assert.Equal(t, 10.5, bars[1].Close)
}

func TestFMPFetcher_EmptyHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	f := NewFMPFetcher("key", "")
	f.BaseURL = srv.URL
	_, err := f.FetchDailyBars(context.Background(), "INFY.NS", 30)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(2, time.Minute)
	cb.now = func() time.Time { return now }
	var transitions []string
	cb.OnStateChange = func(from, to BreakerState) {
		transitions = append(transitions, from.String()+">"+to.String())
	}

	boom := errors.New("boom")
	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, StateClosed, cb.CurrentState())
	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, StateOpen, cb.CurrentState())

	called := false
	assert.ErrorIs(t, cb.Execute(func() error { called = true; return nil }), ErrCircuitOpen)
	assert.False(t, called)

	now = now.Add(2 * time.Minute)
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.CurrentState())
	assert.Equal(t, []string{"closed>open", "open>half-open", "half-open>closed"}, transitions)
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(1, time.Minute)
	cb.now = func() time.Time { return now }

	_ = cb.Execute(func() error { return errors.New("down") })
	now = now.Add(time.Minute)
	_ = cb.Execute(func() error { return errors.New("still down") })
	assert.Equal(t, StateOpen, cb.CurrentState())
}

func TestCircuitBreaker_IgnoresSymbolErrors(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute)
	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return ErrNoData }), ErrNoData)
		_ = cb.Execute(func() error { return &StatusError{Source: "yahoo", Code: http.StatusNotFound} })
		_ = cb.Execute(func() error { return context.Canceled })
	}
	assert.Equal(t, StateClosed, cb.CurrentState())

	boom := &StatusError{Source: "yahoo", Code: http.StatusServiceUnavailable}
	_ = cb.Execute(func() error { return boom })
	_ = cb.Execute(func() error { return ErrNoData })
	_ = cb.Execute(func() error { return boom })
	assert.Equal(t, StateClosed, cb.CurrentState(), "a provider answer resets the failure count")
	_ = cb.Execute(func() error { return boom })
	assert.Equal(t, StateOpen, cb.CurrentState())
}

func TestCircuitBreaker_HalfOpenAdmitsOneTrialCall(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	cb := NewCircuitBreaker(1, time.Minute)
	cb.now = func() time.Time { mu.Lock(); defer mu.Unlock(); return now }

	_ = cb.Execute(func() error { return errors.New("down") })
	require.Equal(t, StateOpen, cb.CurrentState())
	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- cb.Execute(func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	called := false
	assert.ErrorIs(t, cb.Execute(func() error { called = true; return nil }), ErrCircuitOpen)
	assert.False(t, called)
	assert.Equal(t, StateHalfOpen, cb.CurrentState())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateClosed, cb.CurrentState())
}

type symbolFetcher struct {
	name    string
	unknown map[string]bool
	calls   atomic.Int32
}

func (f *symbolFetcher) Name() string { return f.name }

func (f *symbolFetcher) FetchDailyBars(_ context.Context, symbol string, days int) ([]model.PriceBar, error) {
	f.calls.Add(1)
	if f.unknown[symbol] {
		return nil, fmt.Errorf("%s %s: %w", f.name, symbol, ErrNoData)
	}
	return generateMockBars(100, days), nil
}

func TestChainFetcher_UnknownSymbolKeepsProviderUp(t *testing.T) {
	m := metrics.New()
	yahoo := &symbolFetcher{name: "yahoo", unknown: map[string]bool{"BOGUS.NS": true}}
	chain := NewChainFetcher(m, 3, time.Minute, yahoo)

	for i := 0; i < 5; i++ {
		_, err := chain.FetchDailyBars(context.Background(), "BOGUS.NS", 30)
		require.ErrorIs(t, err, ErrNoData)
		assert.NotErrorIs(t, err, ErrAllSourcesFailed)
	}

	bars, err := chain.FetchDailyBars(context.Background(), "TCS.NS", 30)
	require.NoError(t, err)
	assert.Len(t, bars, 30)
	assert.Equal(t, float64(StateClosed), testutil.ToFloat64(m.BreakerState.WithLabelValues("yahoo")))
	assert.Equal(t, int32(6), yahoo.calls.Load())
}

func TestChainFetcher_MixedFailuresAreUpstreamErrors(t *testing.T) {
	a := &symbolFetcher{name: "yahoo", unknown: map[string]bool{"X.NS": true}}
	b := &countingFetcher{name: "fmp", err: &StatusError{Source: "fmp", Code: http.StatusInternalServerError}}
	chain := NewChainFetcher(metrics.New(), 3, time.Minute, a, b)

	_, err := chain.FetchDailyBars(context.Background(), "X.NS", 30)
	assert.ErrorIs(t, err, ErrAllSourcesFailed)
}

func TestChainFetcher_CallerCancelStopsChain(t *testing.T) {
	first := &countingFetcher{name: "yahoo", err: fmt.Errorf("yahoo fetch: %w", context.Canceled)}
	second := &countingFetcher{name: "fmp", bars: generateMockBars(100, 5)}
	chain := NewChainFetcher(metrics.New(), 1, time.Minute, first, second)

	_, err := chain.FetchDailyBars(context.Background(), "TCS.NS", 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), second.calls.Load())
	assert.Equal(t, StateClosed, chain.links[0].breaker.CurrentState())
}

type countingFetcher struct {
	name  string
	bars  []model.PriceBar
	err   error
	calls atomic.Int32
}

func (f *countingFetcher) Name() string { return f.name }

func (f *countingFetcher) FetchDailyBars(context.Context, string, int) ([]model.PriceBar, error) {
	f.calls.Add(1)
	return f.bars, f.err
}

func TestChainFetcher_FallsBackInOrder(t *testing.T) {
	m := metrics.New()
	down := &countingFetcher{name: "yahoo", err: errors.New("timeout")}
	empty := &countingFetcher{name: "alpha_vantage"}
	ok := &countingFetcher{name: "fmp", bars: generateMockBars(100, 5)}

	chain := NewChainFetcher(m, 3, time.Minute, down, empty, ok)
	assert.Equal(t, "chain(yahoo,alpha_vantage,fmp)", chain.Name())

	series, err := FetchSeries(context.Background(), chain, "TCS.NS", 5)
	require.NoError(t, err)
	assert.Equal(t, "fmp", series.Source)
	assert.Len(t, series.Bars, 5)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("yahoo", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("alpha_vantage", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("fmp", "ok")))
}

func TestChainFetcher_AllFail(t *testing.T) {
	a := &countingFetcher{name: "yahoo", err: errors.New("timeout")}
	b := &countingFetcher{name: "fmp", err: errors.New("forbidden")}
	chain := NewChainFetcher(metrics.New(), 1, time.Hour, a, b)

	_, err := chain.FetchDailyBars(context.Background(), "TCS.NS", 5)
	require.ErrorIs(t, err, ErrAllSourcesFailed)
	assert.ErrorContains(t, err, "forbidden")

	// Both breakers are now open; the providers are not called again.
	_, err = chain.FetchDailyBars(context.Background(), "TCS.NS", 5)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(1), a.calls.Load())
	assert.Equal(t, int32(1), b.calls.Load())
}

func TestCollector_Analyze(t *testing.T) {
	m := metrics.New()
	c := NewCollector(&MockFetcher{Price: 1000}, m)

	a, err := c.Analyze(context.Background(), "TCS.NS", "low", nil)
	require.NoError(t, err)
	assert.Equal(t, "TCS.NS", a.Symbol)
	assert.Equal(t, "mock", a.Source)
	assert.Greater(t, a.Price, 0.0)
	assert.True(t, a.Indicators.SMA200.Valid)
	assert.Equal(t, HistoryBars, a.Indicators.Bars)
	assert.Equal(t, model.RiskLow, a.Risk.Appetite)
	assert.Less(t, a.Risk.StopLoss, a.Price)
	assert.Greater(t, a.Risk.ExitTarget, a.Price)
	assert.Equal(t, a.Signal.Signal.Color(), a.SignalColor)
	assert.Greater(t, a.ChangePct, 0.0)
	assert.True(t, strings.HasPrefix(a.Summary, "Technical analysis for TCS:"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues(string(a.Signal.Signal))))
}

func TestCollector_AnalyzeShortHistory(t *testing.T) {
	c := NewCollector(&MockFetcher{Bars: generateMockBars(500, 30)}, metrics.New())
	a, err := c.Analyze(context.Background(), "NEWCO.NS", "", nil)
	require.NoError(t, err)
	assert.False(t, a.Indicators.SMA200.Valid)
	assert.False(t, a.Indicators.SMA50.Valid)
	assert.True(t, a.Indicators.RSI.Valid)
	assert.True(t, a.Risk.AppetiteDefaulted)
	assert.Equal(t, []string{"sma50", "sma200"}, unavailable(a.Indicators))
}

func TestCollector_AnalyzeErrors(t *testing.T) {
	c := NewCollector(&MockFetcher{Err: errors.New("network down")}, nil)
	_, err := c.Analyze(context.Background(), "TCS.NS", "low", nil)
	assert.ErrorContains(t, err, "network down")

	c = NewCollector(&MockFetcher{Bars: []model.PriceBar{}}, nil)
	_, err = c.Analyze(context.Background(), "TCS.NS", "low", nil)
	assert.ErrorIs(t, err, ErrNoData)
}
