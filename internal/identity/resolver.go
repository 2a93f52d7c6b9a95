// Package identity derives canonical full tickers from heterogeneous
// security references.
package identity

import (
	"strings"

	"github.com/bobmcallan/quotevault/internal/models"
)

// DefaultExchangeSuffix is applied when no exchange can be derived.
const DefaultExchangeSuffix = "US"

// isinExchangeSuffix maps an ISIN's 2-letter country prefix to the provider
// exchange suffix. Anything not listed falls back to the US suffix.
var isinExchangeSuffix = map[string]string{
	"FR": "PA",
	"DE": "DE",
	"GB": "L",
	"NL": "AS",
	"IT": "MI",
	"ES": "MC",
	"CH": "SW",
	"CA": "TO",
}

// Strategy attempts to derive a full ticker from one shape of reference.
// It returns the canonical ticker and true on success.
type Strategy func(ref models.SecurityRef) (string, bool)

// strategies is the ordered resolution chain. First match wins.
var strategies = []Strategy{
	fromQualifiedTicker,
	fromSymbolExchange,
	fromTickerISIN,
	fromBareTicker,
}

// Resolve derives the canonical SYMBOL.EXCHANGE key for a security
// reference, or returns false when the reference is unresolvable.
// Resolution is deterministic and side-effect free.
func Resolve(ref models.SecurityRef) (string, bool) {
	for _, strategy := range strategies {
		if ticker, ok := strategy(ref); ok {
			return ticker, true
		}
	}
	return "", false
}

// fromQualifiedTicker matches references already carrying an exchange suffix.
func fromQualifiedTicker(ref models.SecurityRef) (string, bool) {
	full := clean(ref.FullTicker)
	if full == "" {
		full = clean(ref.Ticker)
	}
	if strings.Contains(full, ".") {
		return full, true
	}
	return "", false
}

// fromSymbolExchange matches validated symbol+exchange pairs.
func fromSymbolExchange(ref models.SecurityRef) (string, bool) {
	symbol := clean(ref.Symbol)
	exchange := clean(ref.Exchange)
	if symbol != "" && exchange != "" {
		return symbol + "." + exchange, true
	}
	return "", false
}

// fromTickerISIN matches bare tickers whose exchange can be derived from the
// ISIN country prefix.
func fromTickerISIN(ref models.SecurityRef) (string, bool) {
	ticker := bareTicker(ref)
	isin := clean(ref.ISIN)
	if ticker == "" || len(isin) < 2 {
		return "", false
	}
	suffix, ok := isinExchangeSuffix[isin[:2]]
	if !ok {
		suffix = DefaultExchangeSuffix
	}
	return ticker + "." + suffix, true
}

// fromBareTicker matches bare tickers with no ISIN, defaulting to US.
func fromBareTicker(ref models.SecurityRef) (string, bool) {
	ticker := bareTicker(ref)
	if ticker == "" {
		return "", false
	}
	return ticker + "." + DefaultExchangeSuffix, true
}

func bareTicker(ref models.SecurityRef) string {
	if t := clean(ref.Ticker); t != "" {
		return t
	}
	return clean(ref.Symbol)
}

func clean(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Split separates a full ticker into its symbol and exchange parts.
// A ticker with no exchange suffix returns the default US exchange.
func Split(fullTicker string) (symbol, exchange string) {
	full := clean(fullTicker)
	if idx := strings.LastIndex(full, "."); idx > 0 {
		return full[:idx], full[idx+1:]
	}
	return full, DefaultExchangeSuffix
}
