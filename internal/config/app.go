package config

type App struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DB         DB
	Nats       Nats
	API        API
	Prometheus Prometheus
	Health     Health
	Governance Governance
	PriceFeed  PriceFeed
	Staking    Staking
	AI         AI
}
