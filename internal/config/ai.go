package config

type AI struct {
	Enabled          bool   `env:"AI_SUMMARY_ENABLED" envDefault:"false"`
	MonthlyRateLimit int64  `env:"AI_MONTHLY_RATE_LIMIT" envDefault:"10"`
	APIKey           string `env:"AI_API_KEY"`
}
