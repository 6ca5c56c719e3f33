// Package explorer talks to the block-explorer HTTP API: account balances,
// stake records and the paginated account-transaction feed.
package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/stake-dashboard/internal/logging"
	"github.com/stake-dashboard/internal/types"
)

// coinbaseTxType selects reward-issuing transactions in the feed filter.
const coinbaseTxType = 0

// flexString tolerates fields the explorer serves either as JSON strings or
// as bare numbers, depending on its version.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

// AccountBalance holds an account's native balances in base units.
type AccountBalance struct {
	TFuelWei string `json:"tfuelwei"`
	ThetaWei string `json:"thetawei"`
}

// StakeRecord is one stake source record. Amount is theta base units.
type StakeRecord struct {
	Amount    string `json:"amount"`
	Withdrawn bool   `json:"withdrawn"`
}

// CoinAmounts carries per-denomination base-unit amounts on an output.
type CoinAmounts struct {
	TFuelWei string `json:"tfuelwei"`
	ThetaWei string `json:"thetawei"`
}

// TxOutput is one output entry of a transaction record.
type TxOutput struct {
	Address string      `json:"address"`
	Coins   CoinAmounts `json:"coins"`
}

// TxRecord is one entry of the account-transaction feed.
type TxRecord struct {
	Timestamp flexString `json:"timestamp"`
	Type      flexString `json:"type"`
	Data      struct {
		Outputs []TxOutput `json:"outputs"`
	} `json:"data"`
}

// UnixSeconds parses the record timestamp as a positive finite number.
// Records without one are skipped by callers.
func (r TxRecord) UnixSeconds() (int64, bool) {
	f, err := strconv.ParseFloat(string(r.Timestamp), 64)
	if err != nil || f <= 0 || f != f || f > 1e15 {
		return 0, false
	}
	return int64(f), true
}

// OutputFor returns the base-unit tfuel amount of the output addressed to
// addr. Addresses are compared after normalization, so the match is
// case-insensitive.
func (r TxRecord) OutputFor(addr types.Address) (string, bool) {
	for _, out := range r.Data.Outputs {
		if types.NormalizeAddress(out.Address) == addr {
			return out.Coins.TFuelWei, true
		}
	}
	return "", false
}

// TxPage is one page of the newest-first transaction feed.
type TxPage struct {
	Records     []TxRecord
	CurrentPage int
	TotalPages  int
}

// Config holds explorer client settings.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client is the explorer HTTP client. Calls are throttled through a shared
// token bucket so a batch fan-out cannot hammer the upstream.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logging.Logger
}

// NewClient creates an explorer client.
func NewClient(cfg Config, logger *logging.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		logger:     logger,
	}
}

// Account fetches an address's native balances. A 2xx response without the
// expected balance shape yields (nil, nil): the metric is "no data", not an
// error.
func (c *Client) Account(ctx context.Context, addr types.Address) (*AccountBalance, error) {
	body, err := c.get(ctx, "/account/"+addr.String(), nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Body struct {
			Balance *AccountBalance `json:"balance"`
		} `json:"body"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &types.UpstreamError{Endpoint: "account", Snippet: types.Snippet(body), Err: fmt.Errorf("decode: %w", err)}
	}
	return resp.Body.Balance, nil
}

// Stakes fetches an address's stake source records. Missing shape yields an
// empty slice.
func (c *Client) Stakes(ctx context.Context, addr types.Address) ([]StakeRecord, error) {
	body, err := c.get(ctx, "/stake/"+addr.String(), nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Body struct {
			SourceRecords []StakeRecord `json:"sourceRecords"`
		} `json:"body"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &types.UpstreamError{Endpoint: "stake", Snippet: types.Snippet(body), Err: fmt.Errorf("decode: %w", err)}
	}
	return resp.Body.SourceRecords, nil
}

// AccountTxPage fetches one page of the address's coinbase transaction
// feed. The feed is newest-first within and across pages; the walker's
// stopping logic depends on that ordering.
func (c *Client) AccountTxPage(ctx context.Context, addr types.Address, page, limit int) (*TxPage, error) {
	query := url.Values{}
	query.Set("type", strconv.Itoa(coinbaseTxType))
	query.Set("pageNumber", strconv.Itoa(page))
	query.Set("limitNumber", strconv.Itoa(limit))
	query.Set("isEqualType", "true")

	body, err := c.get(ctx, "/accounttx/"+addr.String(), query)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Body       []TxRecord `json:"body"`
		TotalPages flexString `json:"totalPageNumber"`
		CurrPage   flexString `json:"currentPageNumber"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &types.UpstreamError{Endpoint: "accounttx", Snippet: types.Snippet(body), Err: fmt.Errorf("decode: %w", err)}
	}

	current, _ := strconv.Atoi(string(resp.CurrPage))
	total, _ := strconv.Atoi(string(resp.TotalPages))
	return &TxPage{Records: resp.Body, CurrentPage: current, TotalPages: total}, nil
}

// get performs a throttled GET against the explorer. Failures are wrapped
// as UpstreamError; there is no automatic retry, callers surface 502.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &types.UpstreamError{Endpoint: path, Err: err}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &types.UpstreamError{Endpoint: path, Err: err}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &types.UpstreamError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.UpstreamError{Endpoint: path, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &types.UpstreamError{Endpoint: path, Status: resp.StatusCode, Snippet: types.Snippet(body)}
	}

	c.logger.WithFields(map[string]interface{}{
		"path":     path,
		"duration": time.Since(start).String(),
	}).Debug("explorer request")

	return body, nil
}
