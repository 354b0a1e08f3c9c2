package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"NiftySignal/internal/cache"
	"NiftySignal/internal/chatbot"
	"NiftySignal/internal/collector"
	"NiftySignal/internal/config"
	"NiftySignal/internal/logger"
	"NiftySignal/internal/metrics"
	"NiftySignal/internal/notifier"
	"NiftySignal/internal/scheduler"
	"NiftySignal/internal/server"
	"NiftySignal/internal/service"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init("niftysignal", cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Str("version", version).Str("config", cfgPath).Msg("NiftySignal starting")

	m := metrics.New()

	// Init fetcher chain
	fetcher := buildFetcher(cfg, m)
	log.Info().Str("data_source", fetcher.Name()).Msg("market data providers configured")
	col := collector.NewCollector(fetcher, m)

	// Init cache
	store, err := cache.Open(cache.Options{
		Backend:    cfg.Cache.Backend,
		MaxEntries: cfg.Cache.MaxEntries,
		SQLitePath: cfg.Cache.SQLitePath,
		Redis: cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		},
	})
	if err != nil {
		log.Warn().Err(err).Str("backend", cfg.Cache.Backend).Msg("init cache failed, using memory")
		store = cache.NewMemory(cfg.Cache.MaxEntries)
	}
	defer store.Close()
	log.Info().Str("backend", store.Name()).Msg("cache ready")

	svc := service.New(col, store, m, service.Options{
		Watchlist:   cfg.Watchlist,
		StockTTL:    cfg.Cache.StockTTL,
		SnapshotTTL: cfg.Cache.SnapshotTTL,
		Concurrency: cfg.Concurrency,
	})
	bot := chatbot.New(svc)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Telegram notifier
	var sender scheduler.Sender
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	} else {
		log.Info().Msg("TELEGRAM_BOT_TOKEN not set, alerts disabled")
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, svc, sender, bot, m)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.CloseCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn != nil && cfg.Telegram.Polling {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	// Optional: run immediately on start
	if cfg.Schedule.RunOnStart {
		log.Info().Msg("RUN_ON_START enabled, refreshing snapshot now")
		go sched.RunRefreshNow()
	}

	srv := server.New(server.Options{Addr: cfg.Server.Addr, Version: version}, svc, bot, m)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received, stopping")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("HTTP server exited")
		}
	}

	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Error().Err(err).Msg("HTTP shutdown")
	}
	log.Info().Msg("NiftySignal stopped")
}

func buildFetcher(cfg *config.Config, m *metrics.Metrics) collector.Fetcher {
	var fetchers []collector.Fetcher
	for _, name := range cfg.DataSource.Providers {
		switch name {
		case "yahoo":
			fetchers = append(fetchers, collector.NewYahooFetcher(cfg.Proxy))
		case "alpha_vantage":
			if cfg.DataSource.AlphaVantageKey == "" {
				log.Warn().Msg("ALPHA_VANTAGE_API_KEY not set, skipping alpha_vantage")
				continue
			}
			fetchers = append(fetchers, collector.NewAlphaVantageFetcher(cfg.DataSource.AlphaVantageKey, cfg.Proxy))
		case "fmp":
			if cfg.DataSource.FMPKey == "" {
				log.Warn().Msg("FMP_API_KEY not set, skipping fmp")
				continue
			}
			fetchers = append(fetchers, collector.NewFMPFetcher(cfg.DataSource.FMPKey, cfg.Proxy))
		case "mock":
			fetchers = append(fetchers, &collector.MockFetcher{Price: 1000})
		}
	}
	if len(fetchers) == 0 {
		log.Warn().Msg("no usable providers configured, falling back to yahoo")
		fetchers = append(fetchers, collector.NewYahooFetcher(cfg.Proxy))
	}
	return collector.NewChainFetcher(m, cfg.DataSource.BreakerFailures, cfg.DataSource.BreakerReset, fetchers...)
}
