package coingecko

import (
	"github.com/shopspring/decimal"
)

// SimplePrices maps a coin id to its quote values, e.g.
// {"ethereum": {"usd": 2500.12, "usd_24h_change": -1.3}}.
type SimplePrices map[string]map[string]decimal.Decimal

type Quote struct {
	ID        string
	PriceUSD  decimal.Decimal
	Change24h decimal.Decimal
}
