package models

import "fmt"

// ProviderFetchError indicates an upstream market-data call failed
type ProviderFetchError struct {
	Ticker   string
	Endpoint string
	Err      error
}

func (e *ProviderFetchError) Error() string {
	return fmt.Sprintf("provider fetch failed for %s (%s): %v", e.Ticker, e.Endpoint, e.Err)
}

func (e *ProviderFetchError) Unwrap() error {
	return e.Err
}

// ValidationError indicates an unresolvable identity or malformed input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NotFoundError indicates no cached record exists and no live value is available
type NotFoundError struct {
	Ticker string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no price data available for %s", e.Ticker)
}
