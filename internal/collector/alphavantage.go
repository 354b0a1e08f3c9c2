package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"NiftySignal/internal/model"
)

// AlphaVantageFetcher implements Fetcher using the Alpha Vantage
// TIME_SERIES_DAILY endpoint. NSE tickers are queried on their BSE listing.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewAlphaVantageFetcher creates a new Alpha Vantage fetcher.
func NewAlphaVantageFetcher(apiKey, proxyURL string) *AlphaVantageFetcher {
	return &AlphaVantageFetcher{
		BaseURL: "https://www.alphavantage.co",
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alpha_vantage" }

type avDaily struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type avResponse struct {
	Series       map[string]avDaily `json:"Time Series (Daily)"`
	ErrorMessage string             `json:"Error Message"`
	Note         string             `json:"Note"`
	Information  string             `json:"Information"`
}

func avSymbol(symbol string) string {
	if base, ok := strings.CutSuffix(symbol, ".NS"); ok {
		return base + ".BSE"
	}
	return symbol
}

func (f *AlphaVantageFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PriceBar, error) {
	if f.APIKey == "" {
		return nil, fmt.Errorf("alpha_vantage: api key not configured")
	}
	outputSize := "compact"
	if days > 100 {
		outputSize = "full"
	}
	u := fmt.Sprintf("%s/query?function=TIME_SERIES_DAILY&symbol=%s&outputsize=%s&apikey=%s",
		f.BaseURL, url.QueryEscape(avSymbol(symbol)), outputSize, url.QueryEscape(f.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alpha_vantage fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alpha_vantage read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Source: "alpha_vantage", Code: resp.StatusCode, Body: truncate(body, 200)}
	}

	var r avResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("alpha_vantage decode: %w", err)
	}
	switch {
	case r.ErrorMessage != "":
		return nil, fmt.Errorf("alpha_vantage api error: %s: %w", r.ErrorMessage, ErrNoData)
	case r.Note != "":
		return nil, fmt.Errorf("alpha_vantage rate limited: %s", r.Note)
	case len(r.Series) == 0 && r.Information != "":
		return nil, fmt.Errorf("alpha_vantage: %s", r.Information)
	case len(r.Series) == 0:
		return nil, fmt.Errorf("alpha_vantage %s: %w", symbol, ErrNoData)
	}

	bars := make([]model.PriceBar, 0, len(r.Series))
	for date, d := range r.Series {
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		bar := model.PriceBar{Time: t}
		if bar.Open, err = strconv.ParseFloat(d.Open, 64); err != nil {
			continue
		}
		if bar.High, err = strconv.ParseFloat(d.High, 64); err != nil {
			continue
		}
		if bar.Low, err = strconv.ParseFloat(d.Low, 64); err != nil {
			continue
		}
		if bar.Close, err = strconv.ParseFloat(d.Close, 64); err != nil || bar.Close == 0 {
			continue
		}
		bar.Volume, _ = strconv.ParseFloat(d.Volume, 64)
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("alpha_vantage %s: %w", symbol, ErrNoData)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}
