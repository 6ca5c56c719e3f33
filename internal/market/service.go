package market

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/stake-dashboard/internal/cache"
)

// Provider is the upstream surface the memoizing service wraps.
type Provider interface {
	SimplePrice(ctx context.Context, ids, vs string) (json.RawMessage, error)
	MarketChart(ctx context.Context, id, vs string, days int) (json.RawMessage, error)
	SwapQuote(ctx context.Context, from, to, amount string) (json.RawMessage, error)
}

// Service memoizes price and chart payloads so a dashboard poll loop does
// not hammer the providers. Swap quotes are never cached: an estimate is
// only good at the moment it is taken.
type Service struct {
	provider Provider
	cache    *cache.Memoizer[json.RawMessage]
}

// NewService creates a memoizing market service.
func NewService(provider Provider, memo *cache.Memoizer[json.RawMessage]) *Service {
	return &Service{provider: provider, cache: memo}
}

func (s *Service) SimplePrice(ctx context.Context, ids, vs string) (json.RawMessage, error) {
	key := cache.Key("price", ids, vs)
	return s.cache.Do(ctx, key, func(ctx context.Context) (json.RawMessage, error) {
		return s.provider.SimplePrice(ctx, ids, vs)
	})
}

func (s *Service) MarketChart(ctx context.Context, id, vs string, days int) (json.RawMessage, error) {
	key := cache.Key("chart", id, vs, strconv.Itoa(days))
	return s.cache.Do(ctx, key, func(ctx context.Context) (json.RawMessage, error) {
		return s.provider.MarketChart(ctx, id, vs, days)
	})
}

func (s *Service) SwapQuote(ctx context.Context, from, to, amount string) (json.RawMessage, error) {
	return s.provider.SwapQuote(ctx, from, to, amount)
}
