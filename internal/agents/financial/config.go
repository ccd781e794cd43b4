package financial

import "time"

type Config struct {
	MarketAPIBaseURL string
	MarketAPIKey     string
	Timeout          time.Duration
	MaxRetries       int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:    5 * time.Second,
		MaxRetries: 1,
	}
}
