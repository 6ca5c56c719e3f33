// Package market provides pass-through clients for the price/market-chart
// provider and the swap-estimation provider. Payloads are relayed as raw
// JSON; the dashboard does not reinterpret them.
package market

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/stake-dashboard/internal/logging"
	"github.com/stake-dashboard/internal/types"
)

// Config holds the upstream provider endpoints.
type Config struct {
	PriceBaseURL string
	QuoteBaseURL string
	Timeout      time.Duration
}

// Client calls the market data providers.
type Client struct {
	priceBaseURL string
	quoteBaseURL string
	httpClient   *http.Client
	logger       *logging.Logger
}

// NewClient creates a market data client.
func NewClient(cfg Config, logger *logging.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		priceBaseURL: cfg.PriceBaseURL,
		quoteBaseURL: cfg.QuoteBaseURL,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

// SimplePrice fetches spot prices for the given coin ids in the given
// currencies, both comma-separated.
func (c *Client) SimplePrice(ctx context.Context, ids, vs string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("ids", ids)
	query.Set("vs_currencies", vs)
	return c.get(ctx, c.priceBaseURL+"/simple/price", "price", query)
}

// MarketChart fetches the historical price chart for one coin.
func (c *Client) MarketChart(ctx context.Context, id, vs string, days int) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("vs_currency", vs)
	query.Set("days", strconv.Itoa(days))
	return c.get(ctx, c.priceBaseURL+"/coins/"+url.PathEscape(id)+"/market_chart", "chart", query)
}

// SwapQuote fetches a swap estimate for converting amount of one asset into
// another.
func (c *Client) SwapQuote(ctx context.Context, from, to, amount string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("from", from)
	query.Set("to", to)
	query.Set("amount", amount)
	return c.get(ctx, c.quoteBaseURL+"/estimate", "quote", query)
}

func (c *Client) get(ctx context.Context, base, endpoint string, query url.Values) (json.RawMessage, error) {
	u := base
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &types.UpstreamError{Endpoint: endpoint, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &types.UpstreamError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.UpstreamError{Endpoint: endpoint, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &types.UpstreamError{Endpoint: endpoint, Status: resp.StatusCode, Snippet: types.Snippet(body)}
	}

	if !json.Valid(body) {
		return nil, &types.UpstreamError{Endpoint: endpoint, Status: resp.StatusCode, Snippet: types.Snippet(body)}
	}

	return json.RawMessage(body), nil
}
