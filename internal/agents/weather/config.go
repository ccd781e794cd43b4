package weather

import "time"

type Config struct {
	BaseURL         string
	APIKey          string
	Timeout         time.Duration
	MaxRetries      int
	Units           string
	DefaultLocation string
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:         "https://api.openweathermap.org/data/2.5",
		Timeout:         5 * time.Second,
		MaxRetries:      1,
		Units:           "metric",
		DefaultLocation: "Delhi,IN",
	}
}
