package xena

import (
	"time"
)

// Config describes the cohort data service endpoint.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerMinute int
	APIKey        string // optional bearer token
}

// DefaultConfig returns a config with conservative defaults.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:       baseURL,
		Timeout:       60 * time.Second,
		RatePerMinute: 60,
	}
}
