package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"NiftySignal/internal/chatbot"
	"NiftySignal/internal/markethours"
	"NiftySignal/internal/metrics"
	"NiftySignal/internal/model"
	"NiftySignal/internal/notifier"
)

// MarketService is what the scheduled jobs need from the analysis service.
type MarketService interface {
	Snapshot(ctx context.Context) (*model.Snapshot, error)
	Refresh(ctx context.Context) (*model.Snapshot, error)
	Movers(ctx context.Context, n int) (*model.Movers, error)
	Sentiment(ctx context.Context) (*model.Sentiment, error)
}

// Sender delivers formatted messages. *notifier.TelegramNotifier implements it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Replier answers chat messages. *chatbot.Bot implements it.
type Replier interface {
	Reply(ctx context.Context, message string) chatbot.Reply
}

const sendRetries = 3

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Service  MarketService
	Notifier Sender // nil disables delivery
	Bot      Replier
	Metrics  *metrics.Metrics
	Ctx      context.Context

	now func() time.Time

	mu       sync.Mutex
	alertDay string
	alerted  map[string]bool // symbol|signal already alerted on alertDay
}

// NewScheduler creates a new Scheduler running its cron jobs in IST.
func NewScheduler(ctx context.Context, svc MarketService, sender Sender, bot Replier, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLocation(markethours.IST)),
		Service:  svc,
		Notifier: sender,
		Bot:      bot,
		Metrics:  m,
		Ctx:      ctx,
		now:      time.Now,
		alerted:  make(map[string]bool),
	}
}

// RegisterAll registers the intraday refresh and the market-close summary.
func (s *Scheduler) RegisterAll(refreshCron, closeCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.Cron.AddFunc(closeCron, s.closeTask); err != nil {
		return fmt.Errorf("register close summary task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunRefreshNow rebuilds the snapshot immediately, even outside market
// hours (for RUN_ON_START).
func (s *Scheduler) RunRefreshNow() {
	s.refresh(s.now())
}

func (s *Scheduler) refreshTask() {
	now := s.now()
	open := markethours.IsMarketOpen(now)
	if s.Metrics != nil {
		s.Metrics.MarketOpen.Set(boolGauge(open))
	}
	if !open {
		log.Debug().Str("status", markethours.StatusString(now)).Msg("refresh skipped, market closed")
		return
	}
	s.refresh(now)
}

func (s *Scheduler) refresh(now time.Time) {
	log.Info().Msg("running snapshot refresh")
	snap, err := s.Service.Refresh(s.Ctx)
	if err != nil {
		log.Error().Err(err).Msg("snapshot refresh failed")
		return
	}
	s.alertStrong(snap.Stocks, now)
}

// alertStrong sends one message listing strong signals not yet alerted
// today. A symbol flipping between STRONG_BUY and STRONG_SELL alerts again.
func (s *Scheduler) alertStrong(stocks []model.StockSummary, now time.Time) {
	day := now.In(markethours.IST).Format("2006-01-02")

	s.mu.Lock()
	if day != s.alertDay {
		s.alertDay = day
		s.alerted = make(map[string]bool)
	}
	var fresh []model.StockSummary
	for _, st := range stocks {
		if !st.Signal.IsStrong() {
			continue
		}
		key := st.Symbol + "|" + string(st.Signal)
		if s.alerted[key] {
			continue
		}
		s.alerted[key] = true
		fresh = append(fresh, st)
	}
	s.mu.Unlock()

	if len(fresh) == 0 {
		return
	}
	log.Info().Int("count", len(fresh)).Msg("sending strong signal alert")
	if s.trySend(notifier.FormatStrongSignalAlert(fresh, now)) && s.Metrics != nil {
		s.Metrics.AlertsSent.Add(float64(len(fresh)))
	}
}

func (s *Scheduler) closeTask() {
	now := s.now()
	if !markethours.IsTradingDay(now) {
		log.Debug().Msg("close summary skipped, not a trading day")
		return
	}
	msg, err := s.closeSummary(now)
	if err != nil {
		log.Error().Err(err).Msg("close summary failed")
		s.trySend(fmt.Sprintf("❌ Market close summary unavailable: %v", err))
		return
	}
	s.trySend(msg)
}

func (s *Scheduler) closeSummary(now time.Time) (string, error) {
	snap, err := s.Service.Snapshot(s.Ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}
	sent, err := s.Service.Sentiment(s.Ctx)
	if err != nil {
		return "", fmt.Errorf("sentiment: %w", err)
	}
	movers, err := s.Service.Movers(s.Ctx, 3)
	if err != nil {
		return "", fmt.Errorf("movers: %w", err)
	}
	return notifier.FormatCloseSummary(snap, sent, movers, now), nil
}

// HandleCommand answers a Telegram message. Slash commands are handled
// here; anything else goes to the chatbot.
func (s *Scheduler) HandleCommand(ctx context.Context, text string) string {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "/status":
		return markethours.StatusString(s.now())
	case "/summary":
		msg, err := s.closeSummary(s.now())
		if err != nil {
			log.Warn().Err(err).Msg("summary command failed")
			return "Summary unavailable right now, please try again shortly."
		}
		return msg
	}

	reply := s.Bot.Reply(ctx, text)
	switch reply.Intent {
	case chatbot.IntentAnalysis, chatbot.IntentSignal:
		if reply.Analysis != nil {
			return notifier.FormatAnalysis(reply.Analysis)
		}
	}
	return notifier.FormatChatReply(reply.Text)
}

// trySend reports whether the message was delivered.
func (s *Scheduler) trySend(text string) bool {
	if s.Notifier == nil {
		log.Debug().Msg("notifier disabled, message dropped")
		return false
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, sendRetries); err != nil {
		log.Error().Err(err).Msg("send notification failed")
		return false
	}
	return true
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
