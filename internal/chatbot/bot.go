package chatbot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"NiftySignal/internal/collector"
	"NiftySignal/internal/model"
)

// Intent classifies what a chat message asked for.
type Intent string

const (
	IntentGreeting  Intent = "greeting"
	IntentGlossary  Intent = "glossary"
	IntentSentiment Intent = "sentiment"
	IntentMovers    Intent = "movers"
	IntentPrice     Intent = "price"
	IntentStopLoss  Intent = "stop_loss"
	IntentSignal    Intent = "signal"
	IntentAnalysis  Intent = "analysis"
	IntentFallback  Intent = "fallback"
	IntentError     Intent = "error"
)

// Reply is the bot's answer. Analysis and Stocks carry structured data for
// rich clients.
type Reply struct {
	Intent   Intent               `json:"intent"`
	Text     string               `json:"response"`
	Symbol   string               `json:"symbol,omitempty"`
	Analysis *model.Analysis      `json:"analysis,omitempty"`
	Stocks   []model.StockSummary `json:"stocks,omitempty"`
}

// Backend is the subset of the service the bot talks to.
type Backend interface {
	Analyze(ctx context.Context, ticker, appetite string, custom *model.CustomRisk) (*model.Analysis, error)
	Movers(ctx context.Context, n int) (*model.Movers, error)
	Sentiment(ctx context.Context) (*model.Sentiment, error)
}

const (
	greetingText = "Hello! I'm your NSE trading assistant. Ask me for a stock's price, " +
		"a buy/sell signal or a stop-loss, check market sentiment or top movers, " +
		"or learn a trading term. For example: 'Analyze Reliance' or 'What is RSI?'"
	fallbackText = "I'm not sure I understand. Try asking about a specific stock " +
		"(e.g. 'Analyze TCS'), the market ('market sentiment', 'top gainers') " +
		"or a trading term (e.g. 'What is MACD?')."
)

var greetings = map[string]bool{
	"hi": true, "hello": true, "hey": true, "start": true, "/start": true, "help": true, "/help": true,
}

// termsByLength is glossary keys longest first.
var termsByLength = func() []string {
	terms := make([]string, 0, len(glossary))
	for t := range glossary {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})
	return terms
}()

// Bot answers free-text trading questions by keyword matching.
type Bot struct {
	backend  Backend
	appetite model.RiskAppetite
	movers   int
}

// New creates a Bot that plans trades with the medium risk appetite.
func New(backend Backend) *Bot {
	return &Bot{backend: backend, appetite: model.RiskMedium, movers: 5}
}

// Reply answers message. Backend failures are reported in the reply text
// with IntentError rather than returned.
func (b *Bot) Reply(ctx context.Context, message string) Reply {
	trimmed := strings.TrimSpace(message)
	norm := normalize(trimmed)

	if greetings[strings.ToLower(trimmed)] {
		return Reply{Intent: IntentGreeting, Text: greetingText}
	}

	symbol, hasSymbol := ExtractSymbol(trimmed)

	if term, ok := matchTerm(norm); ok && (!hasSymbol || asksDefinition(norm)) {
		return Reply{Intent: IntentGlossary, Text: strings.ToUpper(term) + ": " + glossary[term]}
	}

	switch {
	case hasAny(norm, "sentiment", "market mood", "how is the market", "market today", "market outlook"):
		return b.sentiment(ctx)
	case hasAny(norm, "gainers", "losers", "movers", "top stocks", "best performing", "worst performing"):
		return b.topMovers(ctx)
	}

	if !hasSymbol {
		return Reply{Intent: IntentFallback, Text: fallbackText}
	}

	intent := IntentAnalysis
	switch {
	case hasAny(norm, "price", "trading at", "quote"):
		intent = IntentPrice
	case hasAny(norm, "stop loss", "stoploss", "sl"):
		intent = IntentStopLoss
	case hasAny(norm, "buy", "sell", "signal", "should i"):
		intent = IntentSignal
	}
	return b.stock(ctx, symbol, intent)
}

func matchTerm(norm string) (string, bool) {
	for _, t := range termsByLength {
		if containsPhrase(norm, t) {
			return t, true
		}
	}
	return "", false
}

func asksDefinition(norm string) bool {
	return hasAny(norm, "what is", "what s", "whats", "define", "explain", "meaning", "mean")
}

func hasAny(norm string, phrases ...string) bool {
	for _, p := range phrases {
		if containsPhrase(norm, p) {
			return true
		}
	}
	return false
}

func (b *Bot) stock(ctx context.Context, symbol string, intent Intent) Reply {
	a, err := b.backend.Analyze(ctx, symbol, string(b.appetite), nil)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("chat analysis failed")
		return Reply{
			Intent: IntentError,
			Symbol: symbol,
			Text: fmt.Sprintf("I couldn't fetch data for %s. Please check the symbol and try again.",
				collector.DisplaySymbol(symbol)),
		}
	}

	name := collector.DisplaySymbol(a.Symbol)
	r := Reply{Intent: intent, Symbol: a.Symbol, Analysis: a}
	switch intent {
	case IntentPrice:
		r.Text = fmt.Sprintf("%s is trading at ₹%.2f (%+.2f%% today).", name, a.Price, a.ChangePct)
	case IntentStopLoss:
		r.Text = fmt.Sprintf("For %s at ₹%.2f, the suggested stop-loss is ₹%.2f (%s risk, %s method).",
			name, a.Price, a.Risk.StopLoss, a.Risk.Appetite, a.Risk.Method)
	default:
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s %s: %s (score %d, confidence %d%%)\n", signalMark(a.Signal.Signal),
			name, a.Signal.Signal, a.Signal.Score, a.Signal.Confidence)
		fmt.Fprintf(&sb, "Price: ₹%.2f (%+.2f%%)\n", a.Price, a.ChangePct)
		fmt.Fprintf(&sb, "Entry: ₹%.2f\nTarget: ₹%.2f\nStop-loss: ₹%.2f\nRisk/reward: %.2f\n",
			a.Risk.EntryPrice, a.Risk.ExitTarget, a.Risk.StopLoss, a.Risk.RiskRewardRatio)
		if len(a.Signal.Factors) > 0 {
			fmt.Fprintf(&sb, "\n%s", strings.Join(a.Signal.Factors, "\n"))
		}
		r.Text = strings.TrimRight(sb.String(), "\n")
	}
	return r
}

func signalMark(s model.Signal) string {
	switch {
	case s.IsBuy():
		return "🟢"
	case s.IsSell():
		return "🔴"
	default:
		return "🟡"
	}
}

func (b *Bot) sentiment(ctx context.Context) Reply {
	s, err := b.backend.Sentiment(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("chat sentiment failed")
		return Reply{Intent: IntentError, Text: "I'm having trouble fetching market data right now. Please try again shortly."}
	}
	total := s.Gainers + s.Losers
	text := fmt.Sprintf("Market sentiment: %s\n%s\nBreadth: %d of %d advancing (%.1f%%), average change %+.2f%%",
		strings.ReplaceAll(string(s.Level), "_", " "), s.Description, s.Gainers, total, s.AdvancePct, s.AvgChangePct)
	switch s.Level {
	case model.SentimentBullish, model.SentimentModeratelyBullish:
		text += "\nStrategy: consider buying on dips, focus on momentum stocks."
	case model.SentimentBearish, model.SentimentModeratelyBearish:
		text += "\nStrategy: be cautious, preserve capital, wait for clear signals."
	default:
		text += "\nStrategy: wait for a clear breakout, stock selection is key."
	}
	return Reply{Intent: IntentSentiment, Text: text}
}

func (b *Bot) topMovers(ctx context.Context) Reply {
	m, err := b.backend.Movers(ctx, b.movers)
	if err != nil {
		log.Warn().Err(err).Msg("chat movers failed")
		return Reply{Intent: IntentError, Text: "I'm having trouble fetching market data right now. Please try again shortly."}
	}
	var sb strings.Builder
	sb.WriteString("Top gainers:")
	writeMovers(&sb, m.Gainers)
	sb.WriteString("\nTop losers:")
	writeMovers(&sb, m.Losers)

	stocks := append(append([]model.StockSummary{}, m.Gainers...), m.Losers...)
	return Reply{Intent: IntentMovers, Text: sb.String(), Stocks: stocks}
}

func writeMovers(sb *strings.Builder, stocks []model.StockSummary) {
	if len(stocks) == 0 {
		sb.WriteString("\n  none")
		return
	}
	for _, st := range stocks {
		fmt.Fprintf(sb, "\n  %s ₹%.2f (%+.2f%%) %s", collector.DisplaySymbol(st.Symbol), st.Price, st.ChangePct, st.Signal)
	}
}
