package timeseries

import (
	"time"

	"github.com/bobmcallan/quotevault/internal/models"
)

// fiftyTwoWeekDays is the trailing calendar window for the 52-week range
const fiftyTwoWeekDays = 365

// computeSnapshot derives the quick-access cache from a sorted history.
// History must be sorted ascending; the latest bar supplies the latest
// price and date.
func computeSnapshot(history []models.Bar, now time.Time) models.DerivedCache {
	if len(history) == 0 {
		return models.DerivedCache{}
	}

	latest := history[len(history)-1]

	cache := models.DerivedCache{
		LatestPrice: latest.Close,
		LatestDate:  latest.Date,
		SMA20:       trailingMean(history, 20),
		SMA50:       trailingMean(history, 50),
		SMA200:      trailingMean(history, 200),
	}

	cache.High52Week, cache.Low52Week = trailingRange(history, now)

	return cache
}

// trailingMean averages the closes of the last n bars. With fewer than n
// bars available it averages what exists, so a short history reads as a
// short-window average rather than zero.
func trailingMean(history []models.Bar, n int) float64 {
	if len(history) == 0 {
		return 0
	}
	if n > len(history) {
		n = len(history)
	}

	var sum float64
	for _, bar := range history[len(history)-n:] {
		sum += bar.Close
	}
	return sum / float64(n)
}

// trailingRange returns the highest high and lowest low over the trailing
// 365 calendar days from now. Both are nil when no bar falls in the window.
func trailingRange(history []models.Bar, now time.Time) (high, low *float64) {
	cutoff := now.AddDate(0, 0, -fiftyTwoWeekDays)

	for _, bar := range history {
		if bar.Date.Before(cutoff) {
			continue
		}
		if high == nil || bar.High > *high {
			h := bar.High
			high = &h
		}
		if low == nil || bar.Low < *low {
			l := bar.Low
			low = &l
		}
	}
	return high, low
}
