package market

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-dashboard/internal/cache"
)

type countingProvider struct {
	priceCalls int
	chartCalls int
	quoteCalls int
}

func (p *countingProvider) SimplePrice(ctx context.Context, ids, vs string) (json.RawMessage, error) {
	p.priceCalls++
	return json.RawMessage(`{"ok":true}`), nil
}

func (p *countingProvider) MarketChart(ctx context.Context, id, vs string, days int) (json.RawMessage, error) {
	p.chartCalls++
	return json.RawMessage(`{"prices":[]}`), nil
}

func (p *countingProvider) SwapQuote(ctx context.Context, from, to, amount string) (json.RawMessage, error) {
	p.quoteCalls++
	return json.RawMessage(`{"estimate":"1"}`), nil
}

func newTestService(provider Provider) *Service {
	return NewService(provider, cache.NewMemoizer[json.RawMessage](100, time.Minute))
}

func TestSimplePriceIsMemoized(t *testing.T) {
	provider := &countingProvider{}
	svc := newTestService(provider)

	_, err := svc.SimplePrice(context.Background(), "theta-fuel", "usd")
	require.NoError(t, err)
	_, err = svc.SimplePrice(context.Background(), "theta-fuel", "usd")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.priceCalls)

	// Different parameters are a different key.
	_, err = svc.SimplePrice(context.Background(), "theta-token", "usd")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.priceCalls)
}

func TestMarketChartKeyIncludesDays(t *testing.T) {
	provider := &countingProvider{}
	svc := newTestService(provider)

	_, err := svc.MarketChart(context.Background(), "theta-fuel", "usd", 30)
	require.NoError(t, err)
	_, err = svc.MarketChart(context.Background(), "theta-fuel", "usd", 7)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.chartCalls)
}

func TestSwapQuoteIsNeverCached(t *testing.T) {
	provider := &countingProvider{}
	svc := newTestService(provider)

	for i := 0; i < 3; i++ {
		_, err := svc.SwapQuote(context.Background(), "tfuel", "theta", "100")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, provider.quoteCalls)
}
