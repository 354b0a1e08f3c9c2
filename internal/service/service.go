package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"NiftySignal/internal/cache"
	"NiftySignal/internal/collector"
	"NiftySignal/internal/metrics"
	"NiftySignal/internal/model"
)

// ErrNoSnapshot is returned when no watchlist symbol could be analysed and
// there is no earlier snapshot to fall back to.
var ErrNoSnapshot = errors.New("no watchlist data available")

const snapshotKey = "snapshot"

// DefaultWatchlist is the set of large NIFTY constituents analysed for the
// snapshot, movers and sentiment.
var DefaultWatchlist = []string{
	"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "ICICIBANK.NS", "HINDUNILVR.NS",
	"INFY.NS", "KOTAKBANK.NS", "SBIN.NS", "BHARTIARTL.NS", "ITC.NS",
	"AXISBANK.NS", "DMART.NS", "MARUTI.NS", "ASIANPAINT.NS", "HCLTECH.NS",
	"ULTRACEMCO.NS", "BAJFINANCE.NS", "WIPRO.NS", "NESTLEIND.NS", "DRREDDY.NS",
}

// Analyzer runs the per-symbol pipeline. *collector.Collector implements it.
type Analyzer interface {
	Analyze(ctx context.Context, symbol, appetite string, custom *model.CustomRisk) (*model.Analysis, error)
}

// Options tunes caching and fan-out.
type Options struct {
	Watchlist   []string
	StockTTL    time.Duration
	SnapshotTTL time.Duration
	Concurrency int
}

func (o *Options) setDefaults() {
	if len(o.Watchlist) == 0 {
		o.Watchlist = DefaultWatchlist
	}
	if o.StockTTL <= 0 {
		o.StockTTL = time.Minute
	}
	if o.SnapshotTTL <= 0 {
		o.SnapshotTTL = 5 * time.Minute
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 5
	}
}

// Service fronts the analyzer with a cache and derives the market-wide views.
type Service struct {
	analyzer Analyzer
	store    cache.Store
	metrics  *metrics.Metrics
	opts     Options
	now      func() time.Time

	buildMu sync.Mutex // serializes snapshot rebuilds
	lastMu  sync.RWMutex
	last    *model.Snapshot
}

// New creates a Service.
func New(analyzer Analyzer, store cache.Store, m *metrics.Metrics, opts Options) *Service {
	opts.setDefaults()
	return &Service{
		analyzer: analyzer,
		store:    store,
		metrics:  m,
		opts:     opts,
		now:      time.Now,
	}
}

// Watchlist returns the configured symbols.
func (s *Service) Watchlist() []string { return s.opts.Watchlist }

func analysisKey(symbol, appetite string, custom *model.CustomRisk) string {
	key := fmt.Sprintf("analysis:%s:%s", symbol, strings.ToLower(strings.TrimSpace(appetite)))
	if custom != nil {
		key += fmt.Sprintf(":%g:%g", custom.StopLossPct, custom.ExitTargetPct)
	}
	return key
}

// Analyze normalizes ticker and returns its analysis, served from cache for
// StockTTL.
func (s *Service) Analyze(ctx context.Context, ticker, appetite string, custom *model.CustomRisk) (*model.Analysis, error) {
	symbol, err := collector.NormalizeSymbol(ticker)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", ticker, err)
	}
	key := analysisKey(symbol, appetite, custom)

	if a, ok, err := cache.GetJSON[model.Analysis](ctx, s.store, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if ok {
		s.cacheResult("hit")
		return &a, nil
	}
	s.cacheResult("miss")

	a, err := s.analyzer.Analyze(ctx, symbol, appetite, custom)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, s.store, key, a, s.opts.StockTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return a, nil
}

// Snapshot returns the analysed watchlist, rebuilding it when the cached
// copy has expired.
func (s *Service) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	if snap, ok := s.cachedSnapshot(ctx, true); ok {
		return snap, nil
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	// Another caller may have rebuilt while we waited. Not counted: this
	// request already recorded its miss.
	if snap, ok := s.cachedSnapshot(ctx, false); ok {
		return snap, nil
	}
	return s.build(ctx)
}

// Refresh drops every cached entry and rebuilds the snapshot.
func (s *Service) Refresh(ctx context.Context) (*model.Snapshot, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	if err := s.store.Clear(ctx); err != nil {
		log.Warn().Err(err).Str("backend", s.store.Name()).Msg("cache clear failed")
	}
	return s.build(ctx)
}

func (s *Service) cachedSnapshot(ctx context.Context, count bool) (*model.Snapshot, bool) {
	snap, ok, err := cache.GetJSON[model.Snapshot](ctx, s.store, snapshotKey)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot cache read failed")
		return nil, false
	}
	if !ok {
		if count {
			s.cacheResult("miss")
		}
		return nil, false
	}
	if count {
		s.cacheResult("hit")
	}
	s.stamp(&snap)
	return &snap, true
}

func (s *Service) build(ctx context.Context) (*model.Snapshot, error) {
	start := s.now()
	results := make([]*model.Analysis, len(s.opts.Watchlist))

	var (
		mu     sync.Mutex
		failed []string
	)
	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, symbol := range s.opts.Watchlist {
		g.Go(func() error {
			a, err := s.analyzer.Analyze(ctx, symbol, string(model.RiskMedium), nil)
			if err != nil {
				log.Warn().Err(err).Str("symbol", symbol).Msg("watchlist symbol skipped")
				mu.Lock()
				failed = append(failed, symbol)
				mu.Unlock()
				return nil
			}
			results[i] = a
			return nil
		})
	}
	_ = g.Wait()

	snap := &model.Snapshot{LastUpdated: start}
	sources := map[string]bool{}
	for _, a := range results {
		if a == nil {
			continue
		}
		snap.Stocks = append(snap.Stocks, summarize(a))
		sources[a.Source] = true
	}
	sort.Strings(failed)
	snap.Failed = failed

	if len(snap.Stocks) == 0 {
		s.lastMu.RLock()
		last := s.last
		s.lastMu.RUnlock()
		if last != nil {
			stale := *last
			s.stamp(&stale)
			log.Warn().Int("failed", len(failed)).Time("last_updated", stale.LastUpdated).
				Msg("snapshot rebuild failed, serving previous snapshot")
			return &stale, nil
		}
		return nil, fmt.Errorf("%w: %d symbols failed", ErrNoSnapshot, len(failed))
	}

	sort.SliceStable(snap.Stocks, func(i, j int) bool { return snap.Stocks[i].Score > snap.Stocks[j].Score })
	snap.DataSource = joinSources(sources)

	if err := cache.SetJSON(ctx, s.store, snapshotKey, snap, s.opts.SnapshotTTL); err != nil {
		log.Warn().Err(err).Msg("snapshot cache write failed")
	}
	s.lastMu.Lock()
	s.last = snap
	s.lastMu.Unlock()

	if s.metrics != nil {
		s.metrics.SnapshotSymbols.Set(float64(len(snap.Stocks)))
		s.metrics.SnapshotUpdated.Set(float64(start.Unix()))
	}
	log.Info().Int("stocks", len(snap.Stocks)).Int("failed", len(failed)).Str("source", snap.DataSource).
		Dur("took", s.now().Sub(start)).Msg("snapshot rebuilt")

	out := *snap
	s.stamp(&out)
	return &out, nil
}

// stamp fills the freshness fields relative to now.
func (s *Service) stamp(snap *model.Snapshot) {
	age := s.now().Sub(snap.LastUpdated)
	snap.IsFresh = age < s.opts.SnapshotTTL
	remaining := s.opts.SnapshotTTL - age
	if remaining < 0 {
		remaining = 0
	}
	snap.NextUpdateInMinutes = int(math.Ceil(remaining.Minutes()))
}

func (s *Service) cacheResult(result string) {
	if s.metrics != nil {
		s.metrics.CacheRequests.WithLabelValues(result).Inc()
	}
}

func joinSources(sources map[string]bool) string {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func summarize(a *model.Analysis) model.StockSummary {
	return model.StockSummary{
		Symbol:     a.Symbol,
		Price:      a.Price,
		Change:     a.Change,
		ChangePct:  a.ChangePct,
		Volume:     a.Volume,
		Signal:     a.Signal.Signal,
		Score:      a.Signal.Score,
		Confidence: a.Signal.Confidence,
		StopLoss:   a.Risk.StopLoss,
		ExitTarget: a.Risk.ExitTarget,
	}
}
