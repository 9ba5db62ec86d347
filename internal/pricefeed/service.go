package pricefeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/novalend/governance-storage/pkg/sdk/coingecko"
)

type asset struct {
	id     string
	symbol string
}

// trackedAssets defines both the polled markets and their display order.
var trackedAssets = []asset{
	{id: "ethereum", symbol: "ETH"},
	{id: "bitcoin", symbol: "BTC"},
	{id: "usd-coin", symbol: "USDC"},
}

type Price struct {
	Symbol    string          `json:"symbol"`
	PriceUSD  decimal.Decimal `json:"price_usd"`
	Change24h decimal.Decimal `json:"change_24h"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type QuoteProvider interface {
	GetSimplePrices(ctx context.Context, ids []string) ([]coingecko.Quote, error)
}

// Service keeps the last good market quotes. A failed poll leaves the
// previous snapshot in place.
type Service struct {
	api QuoteProvider

	mu     sync.RWMutex
	prices map[string]Price
}

func NewService(api QuoteProvider) *Service {
	return &Service{
		api:    api,
		prices: make(map[string]Price),
	}
}

func (s *Service) Refresh(ctx context.Context) error {
	ids := make([]string, 0, len(trackedAssets))
	symbols := make(map[string]string, len(trackedAssets))
	for _, a := range trackedAssets {
		ids = append(ids, a.id)
		symbols[a.id] = a.symbol
	}

	quotes, err := s.api.GetSimplePrices(ctx, ids)
	if err != nil {
		return fmt.Errorf("get prices: %w", err)
	}

	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, quote := range quotes {
		symbol, ok := symbols[quote.ID]
		if !ok {
			continue
		}

		s.prices[symbol] = Price{
			Symbol:    symbol,
			PriceUSD:  quote.PriceUSD,
			Change24h: quote.Change24h,
			UpdatedAt: now,
		}
	}

	return nil
}

func (s *Service) Prices() []Price {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]Price, 0, len(s.prices))
	for _, a := range trackedAssets {
		if price, ok := s.prices[a.symbol]; ok {
			res = append(res, price)
		}
	}

	return res
}
