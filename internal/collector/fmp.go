package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"NiftySignal/internal/model"
)

// FMPFetcher implements Fetcher using Financial Modeling Prep's
// historical-price-full endpoint.
type FMPFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewFMPFetcher creates a new Financial Modeling Prep fetcher.
func NewFMPFetcher(apiKey, proxyURL string) *FMPFetcher {
	return &FMPFetcher{
		BaseURL: "https://financialmodelingprep.com",
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *FMPFetcher) Name() string { return "fmp" }

type fmpResponse struct {
	Symbol     string `json:"symbol"`
	Historical []struct {
		Date   string  `json:"date"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume float64 `json:"volume"`
	} `json:"historical"`
}

func (f *FMPFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PriceBar, error) {
	if f.APIKey == "" {
		return nil, fmt.Errorf("fmp: api key not configured")
	}
	u := fmt.Sprintf("%s/api/v3/historical-price-full/%s?timeseries=%d&apikey=%s",
		f.BaseURL, url.PathEscape(symbol), days, url.QueryEscape(f.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fmp fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fmp read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Source: "fmp", Code: resp.StatusCode, Body: truncate(body, 200)}
	}

	var r fmpResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("fmp decode: %w", err)
	}

	bars := make([]model.PriceBar, 0, len(r.Historical))
	for _, h := range r.Historical {
		t, err := time.Parse("2006-01-02", h.Date)
		if err != nil || h.Close == 0 {
			continue
		}
		bars = append(bars, model.PriceBar{
			Time:   t,
			Open:   h.Open,
			High:   h.High,
			Low:    h.Low,
			Close:  h.Close,
			Volume: h.Volume,
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("fmp %s: %w", symbol, ErrNoData)
	}

	// FMP returns newest first.
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}
