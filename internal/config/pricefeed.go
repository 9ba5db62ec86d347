package config

import "time"

type PriceFeed struct {
	BaseURL      string        `env:"PRICE_FEED_BASE_URL" envDefault:"https://api.coingecko.com/api/v3"`
	PollInterval time.Duration `env:"PRICE_FEED_POLL_INTERVAL" envDefault:"60s"`
}
