package collector

import (
	"errors"
	"strings"
)

// ErrInvalidSymbol is returned for empty or malformed tickers.
var ErrInvalidSymbol = errors.New("invalid symbol")

// NormalizeSymbol upper-cases a ticker and appends the NSE suffix when no
// exchange suffix or index prefix is present, e.g. "tcs" -> "TCS.NS".
func NormalizeSymbol(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" || len(s) > 20 {
		return "", ErrInvalidSymbol
	}
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '-', r == '&', r == '^':
		default:
			return "", ErrInvalidSymbol
		}
	}
	if strings.HasPrefix(s, "^") || strings.Contains(s, ".") {
		return s, nil
	}
	return s + ".NS", nil
}

// DisplaySymbol strips the NSE suffix for user-facing text.
func DisplaySymbol(symbol string) string {
	return strings.TrimSuffix(symbol, ".NS")
}
