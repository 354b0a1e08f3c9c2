package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NiftySignal/internal/model"
)

type sentMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

func TestSend(t *testing.T) {
	var got sentMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.BaseURL = srv.URL
	require.NoError(t, n.Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, sentMessage{ChatID: "42", Text: "<b>hi</b>", ParseMode: "HTML"}, got)
}

func TestSendWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.BaseURL = srv.URL
	n.backoff = time.Millisecond

	require.NoError(t, n.SendWithRetry(context.Background(), "hello", 3))
	assert.Equal(t, int32(3), calls.Load())

	calls.Store(-10)
	err := n.SendWithRetry(context.Background(), "hello", 1)
	assert.ErrorContains(t, err, "all 2 retries exhausted")
	assert.ErrorContains(t, err, "status 502")
}

func TestStartPolling_RepliesInSenderChat(t *testing.T) {
	var (
		mu      sync.Mutex
		replies []sentMessage
		polls   atomic.Int32
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			if polls.Add(1) == 1 {
				assert.Equal(t, "0", r.URL.Query().Get("offset"))
				fmt.Fprint(w, `{"ok":true,"result":[
{"update_id":7,"message":{"text":" analyze tcs ","chat":{"id":1001}}},
{"update_id":8,"message":{"text":"","chat":{"id":1001}}},
{"update_id":9,"message":{"text":"quiet","chat":{"id":1002}}}]}`)
				return
			}
			assert.Equal(t, "10", r.URL.Query().Get("offset"))
			cancel()
			fmt.Fprint(w, `{"ok":true,"result":[]}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var m sentMessage
			_ = json.NewDecoder(r.Body).Decode(&m)
			mu.Lock()
			replies = append(replies, m)
			mu.Unlock()
			fmt.Fprint(w, `{"ok":true}`)
		}
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.BaseURL = srv.URL

	done := make(chan struct{})
	go func() {
		n.StartPolling(ctx, func(_ context.Context, text string) string {
			if text == "quiet" {
				return ""
			}
			return "re: " + text
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, replies, 1)
	assert.Equal(t, "1001", replies[0].ChatID)
	assert.Equal(t, "re: analyze tcs", replies[0].Text)
}

func sampleAnalysis() *model.Analysis {
	return &model.Analysis{
		Symbol:    "M&M.NS",
		Price:     2500,
		ChangePct: -1.5,
		Indicators: model.IndicatorSet{
			RSI: model.Some(25), ATR: model.Some(40), SMA20: model.Some(2550),
			SMA50: model.Some(2600), SMA200: model.None(),
		},
		Signal: model.SignalResult{
			Signal: model.SignalBuy, Score: 45, Confidence: 72,
			Breakdown: []model.FactorScore{{Name: "RSI", Points: 40, Commentary: "RSI (25.0) oversold"}},
		},
		Risk: model.RiskPlan{
			EntryPrice: 2500, StopLoss: 2375, ExitTarget: 2875, RiskRewardRatio: 3,
			Appetite: model.RiskMedium, Method: model.MethodPercentage, TimeHorizon: "1-2 weeks",
			Note: "unknown risk appetite <x>, using medium",
		},
		GeneratedAt: time.Date(2026, 3, 2, 5, 0, 0, 0, time.UTC),
	}
}

func TestFormatAnalysis(t *testing.T) {
	msg := FormatAnalysis(sampleAnalysis())
	assert.Contains(t, msg, "<b>M&amp;M</b> | 2026-03-02 10:30")
	assert.Contains(t, msg, "Price: ₹2500.00 (-1.50%)")
	assert.Contains(t, msg, "SMA200: n/a")
	assert.Contains(t, msg, "🟢 <b>BUY</b> (score +45, confidence 72%)")
	assert.Contains(t, msg, "RSI: +40, RSI (25.0) oversold")
	assert.Contains(t, msg, "Entry ₹2500.00 | Stop ₹2375.00 | Target ₹2875.00")
	assert.Contains(t, msg, "&lt;x&gt;")
}

func TestFormatStrongSignalAlert(t *testing.T) {
	msg := FormatStrongSignalAlert([]model.StockSummary{
		{Symbol: "TCS.NS", Signal: model.SignalStrongSell, Price: 4000, ChangePct: -3, Score: -70, Confidence: 72},
	}, time.Date(2026, 3, 2, 5, 0, 0, 0, time.UTC))
	assert.Contains(t, msg, "10:30 IST")
	assert.Contains(t, msg, "🔴 <b>TCS</b> STRONG_SELL ₹4000.00 (-3.00%)")
	assert.Contains(t, msg, "score -70, confidence 72%")
}

func TestFormatCloseSummary(t *testing.T) {
	snap := &model.Snapshot{
		Stocks: []model.StockSummary{{Symbol: "INFY.NS", Signal: model.SignalStrongBuy, Score: 65}},
		Failed: []string{"DMART.NS"},
	}
	sent := &model.Sentiment{Level: model.SentimentModeratelyBearish, Gainers: 5, Losers: 15, AdvancePct: 25, AvgChangePct: -0.8}
	movers := &model.Movers{Losers: []model.StockSummary{{Symbol: "SBIN.NS", Price: 700, ChangePct: -2.1}}}

	msg := FormatCloseSummary(snap, sent, movers, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	assert.Contains(t, msg, "Market close</b> | 2026-03-02")
	assert.Contains(t, msg, "Sentiment: <b>MODERATELY BEARISH</b>")
	assert.Contains(t, msg, "5 up / 15 down (25.0% advancing), avg -0.80%")
	assert.NotContains(t, msg, "Top gainers")
	assert.Contains(t, msg, "SBIN ₹700.00 (-2.10%)")
	assert.Contains(t, msg, "Highest score: INFY STRONG_BUY (+65)")
	assert.Contains(t, msg, "No data for: DMART.NS")
}

func TestFormatChatReply(t *testing.T) {
	assert.Equal(t, "L&amp;T &lt;b&gt;", FormatChatReply("L&T <b>"))
}
