package chatbot

import (
	"sort"
	"strings"
	"unicode"
)

// namesByLength lists stockNames keys longest first so "hdfc bank" wins
// over "hdfc" and "tech mahindra" over "mahindra".
var namesByLength = func() []string {
	names := make([]string, 0, len(stockNames))
	for name := range stockNames {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}()

// normalize lower-cases text and turns everything except letters, digits
// and '&' into single spaces, padded on both ends for whole-word matching.
func normalize(text string) string {
	var b strings.Builder
	b.WriteByte(' ')
	space := true
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '&' {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	if !space {
		b.WriteByte(' ')
	}
	return b.String()
}

func containsPhrase(normalized, phrase string) bool {
	return strings.Contains(normalized, " "+phrase+" ")
}

// ExtractSymbol finds a ticker in a free-text message: known company names
// first, then an upper-case word of 3 to 10 letters taken as an NSE ticker.
func ExtractSymbol(message string) (string, bool) {
	norm := normalize(message)
	for _, name := range namesByLength {
		if containsPhrase(norm, name) {
			return stockNames[name], true
		}
	}

	for _, word := range strings.Fields(message) {
		clean := strings.Map(func(r rune) rune {
			if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' {
				return r
			}
			return -1
		}, strings.TrimSuffix(word, ".NS"))
		if len(clean) < 3 || len(clean) > 10 || clean != strings.ToUpper(clean) || notTickers[clean] {
			continue
		}
		return clean + ".NS", true
	}
	return "", false
}
