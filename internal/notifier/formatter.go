package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"NiftySignal/internal/collector"
	"NiftySignal/internal/markethours"
	"NiftySignal/internal/model"
)

// FormatAnalysis formats a single-stock analysis into a Telegram message.
func FormatAnalysis(a *model.Analysis) string {
	var b strings.Builder
	ind := a.Indicators

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", html.EscapeString(collector.DisplaySymbol(a.Symbol)),
		a.GeneratedAt.In(markethours.IST).Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Price: ₹%.2f (%+.2f%%)\n", a.Price, a.ChangePct))
	b.WriteString(fmt.Sprintf("RSI: %s | ATR: %s\n", ind.RSI, ind.ATR))
	b.WriteString(fmt.Sprintf("SMA20: %s | SMA50: %s | SMA200: %s\n", ind.SMA20, ind.SMA50, ind.SMA200))
	b.WriteString(fmt.Sprintf("Support: %s | Resistance: %s\n\n", ind.Support, ind.Resistance))

	b.WriteString(fmt.Sprintf("%s <b>%s</b> (score %+d, confidence %d%%)\n",
		signalIcon(a.Signal.Signal), a.Signal.Signal, a.Signal.Score, a.Signal.Confidence))
	for _, f := range a.Signal.Breakdown {
		b.WriteString(fmt.Sprintf("  %s: %+d, %s\n", f.Name, f.Points, html.EscapeString(f.Commentary)))
	}

	r := a.Risk
	b.WriteString(fmt.Sprintf("\n💰 <b>Plan (%s risk, %s):</b>\n", r.Appetite, r.Method))
	b.WriteString(fmt.Sprintf("  Entry ₹%.2f | Stop ₹%.2f | Target ₹%.2f\n", r.EntryPrice, r.StopLoss, r.ExitTarget))
	b.WriteString(fmt.Sprintf("  Risk/reward %.2f | Horizon %s\n", r.RiskRewardRatio, r.TimeHorizon))
	if r.Note != "" {
		b.WriteString(fmt.Sprintf("\n⚠️ %s\n", html.EscapeString(r.Note)))
	}
	return b.String()
}

// FormatStrongSignalAlert formats newly seen strong signals.
func FormatStrongSignalAlert(stocks []model.StockSummary, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🚨 <b>Strong signals</b> | %s IST\n\n", at.In(markethours.IST).Format("15:04")))
	for _, st := range stocks {
		b.WriteString(fmt.Sprintf("%s <b>%s</b> %s ₹%.2f (%+.2f%%)\n", signalIcon(st.Signal),
			html.EscapeString(collector.DisplaySymbol(st.Symbol)), st.Signal, st.Price, st.ChangePct))
		b.WriteString(fmt.Sprintf("   score %+d, confidence %d%% | stop ₹%.2f, target ₹%.2f\n",
			st.Score, st.Confidence, st.StopLoss, st.ExitTarget))
	}
	return b.String()
}

// FormatCloseSummary formats the end-of-day market summary.
func FormatCloseSummary(snap *model.Snapshot, sent *model.Sentiment, movers *model.Movers, day time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 <b>Market close</b> | %s\n\n", day.In(markethours.IST).Format("2006-01-02")))

	b.WriteString(fmt.Sprintf("Sentiment: <b>%s</b>\n", strings.ReplaceAll(string(sent.Level), "_", " ")))
	b.WriteString(fmt.Sprintf("Breadth: %d up / %d down (%.1f%% advancing), avg %+.2f%%\n",
		sent.Gainers, sent.Losers, sent.AdvancePct, sent.AvgChangePct))
	b.WriteString(fmt.Sprintf("Strong buys: %d | Strong sells: %d\n", sent.StrongBuys, sent.StrongSells))

	writeMovers(&b, "📈 <b>Top gainers</b>", movers.Gainers)
	writeMovers(&b, "📉 <b>Top losers</b>", movers.Losers)

	if len(snap.Stocks) > 0 {
		top := snap.Stocks[0]
		b.WriteString(fmt.Sprintf("\nHighest score: %s %s (%+d)\n",
			html.EscapeString(collector.DisplaySymbol(top.Symbol)), top.Signal, top.Score))
	}
	if len(snap.Failed) > 0 {
		b.WriteString(fmt.Sprintf("No data for: %s\n", html.EscapeString(strings.Join(snap.Failed, ", "))))
	}
	return b.String()
}

// FormatChatReply escapes plain chatbot text for HTML parse mode.
func FormatChatReply(text string) string {
	return html.EscapeString(text)
}

func writeMovers(b *strings.Builder, title string, stocks []model.StockSummary) {
	if len(stocks) == 0 {
		return
	}
	b.WriteString("\n" + title + "\n")
	for _, st := range stocks {
		b.WriteString(fmt.Sprintf("  %s ₹%.2f (%+.2f%%)\n",
			html.EscapeString(collector.DisplaySymbol(st.Symbol)), st.Price, st.ChangePct))
	}
}

func signalIcon(s model.Signal) string {
	switch {
	case s.IsBuy():
		return "🟢"
	case s.IsSell():
		return "🔴"
	default:
		return "🟡"
	}
}
