package service

import (
	"context"
	"sort"

	"NiftySignal/internal/model"
)

// DefaultMovers is the list length used when callers pass n <= 0.
const DefaultMovers = 5

// Movers returns the top n gainers and losers of the snapshot by change
// percent. Unchanged symbols appear in neither list.
func (s *Service) Movers(ctx context.Context, n int) (*model.Movers, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = DefaultMovers
	}

	stocks := append([]model.StockSummary(nil), snap.Stocks...)
	sort.SliceStable(stocks, func(i, j int) bool { return stocks[i].ChangePct > stocks[j].ChangePct })

	m := &model.Movers{Gainers: []model.StockSummary{}, Losers: []model.StockSummary{}}
	for _, st := range stocks {
		if st.ChangePct > 0 && len(m.Gainers) < n {
			m.Gainers = append(m.Gainers, st)
		}
	}
	for i := len(stocks) - 1; i >= 0; i-- {
		if stocks[i].ChangePct < 0 && len(m.Losers) < n {
			m.Losers = append(m.Losers, stocks[i])
		}
	}
	return m, nil
}

var sentimentText = map[model.SentimentLevel]string{
	model.SentimentBullish:           "Market is in a strong uptrend with broad participation",
	model.SentimentModeratelyBullish: "Market showing positive momentum",
	model.SentimentNeutral:           "Market is range-bound or consolidating",
	model.SentimentModeratelyBearish: "Market showing weakness",
	model.SentimentBearish:           "Market in decline with widespread selling",
}

// ClassifySentiment maps the average change percent and the share of
// advancing symbols to a sentiment level.
func ClassifySentiment(avgChangePct, advancePct float64) model.SentimentLevel {
	switch {
	case avgChangePct > 1 && advancePct > 60:
		return model.SentimentBullish
	case avgChangePct > 0.5 && advancePct > 55:
		return model.SentimentModeratelyBullish
	case avgChangePct < -1 && advancePct < 40:
		return model.SentimentBearish
	case avgChangePct < -0.5 && advancePct < 45:
		return model.SentimentModeratelyBearish
	default:
		return model.SentimentNeutral
	}
}

// Sentiment summarises breadth over the snapshot.
func (s *Service) Sentiment(ctx context.Context) (*model.Sentiment, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := &model.Sentiment{AdvancePct: 50, EvaluatedAt: s.now()}
	var sum float64
	for _, st := range snap.Stocks {
		if st.ChangePct > 0 {
			out.Gainers++
		} else {
			out.Losers++
		}
		switch st.Signal {
		case model.SignalStrongBuy:
			out.StrongBuys++
		case model.SignalStrongSell:
			out.StrongSells++
		}
		sum += st.ChangePct
	}
	if total := len(snap.Stocks); total > 0 {
		out.AdvancePct = float64(out.Gainers) / float64(total) * 100
		out.AvgChangePct = sum / float64(total)
	}
	out.Level = ClassifySentiment(out.AvgChangePct, out.AdvancePct)
	out.Description = sentimentText[out.Level]
	return out, nil
}

// StrongSignals returns the snapshot entries rated STRONG_BUY or STRONG_SELL.
func (s *Service) StrongSignals(ctx context.Context) ([]model.StockSummary, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.StockSummary
	for _, st := range snap.Stocks {
		if st.Signal.IsStrong() {
			out = append(out, st)
		}
	}
	return out, nil
}
