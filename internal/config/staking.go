package config

type Staking struct {
	BaseURL string `env:"STAKING_API_BASE_URL" envDefault:"http://localhost:9090"`
}
