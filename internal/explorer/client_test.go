package explorer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-dashboard/internal/logging"
	"github.com/stake-dashboard/internal/types"
)

const testAddr = types.Address("0x1234567890abcdef1234567890abcdef12345678")

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		BaseURL:           srv.URL,
		RequestsPerSecond: 1000,
		Burst:             1000,
	}, logging.NewLogger(logging.LevelError, logging.FormatText))
	return client, srv
}

func TestAccountParsesBalanceEnvelope(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/account/"+testAddr.String(), r.URL.Path)
		w.Write([]byte(`{"body":{"balance":{"tfuelwei":"1500000000000000000","thetawei":"0"}}}`))
	})

	balance, err := client.Account(context.Background(), testAddr)
	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.Equal(t, "1500000000000000000", balance.TFuelWei)
}

func TestAccountMissingShapeIsNotAnError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"body":{}}`))
	})

	balance, err := client.Account(context.Background(), testAddr)
	require.NoError(t, err)
	assert.Nil(t, balance)
}

func TestNon2xxBecomesUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(strings.Repeat("x", 500)))
	})

	_, err := client.Account(context.Background(), testAddr)
	require.Error(t, err)

	var upstreamErr *types.UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusServiceUnavailable, upstreamErr.Status)
	assert.Len(t, upstreamErr.Snippet, 200)
}

func TestStakesParsesSourceRecords(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stake/"+testAddr.String(), r.URL.Path)
		w.Write([]byte(`{"body":{"sourceRecords":[
			{"amount":"1000000000000000000000","withdrawn":false},
			{"amount":"2000000000000000000000","withdrawn":true}
		]}}`))
	})

	records, err := client.Stakes(context.Background(), testAddr)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.False(t, records[0].Withdrawn)
	assert.True(t, records[1].Withdrawn)
}

func TestAccountTxPageQueryAndDecoding(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "0", q.Get("type"))
		assert.Equal(t, "2", q.Get("pageNumber"))
		assert.Equal(t, "50", q.Get("limitNumber"))
		assert.Equal(t, "true", q.Get("isEqualType"))

		// Page counts arrive as bare numbers here, strings elsewhere.
		w.Write([]byte(`{
			"body":[{"timestamp":"1700000000","type":0,"data":{"outputs":[
				{"address":"0x1234567890ABCDEF1234567890abcdef12345678","coins":{"tfuelwei":"5000000000000000000"}}
			]}}],
			"currentPageNumber":2,
			"totalPageNumber":"7"
		}`))
	})

	page, err := client.AccountTxPage(context.Background(), testAddr, 2, 50)
	require.NoError(t, err)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 7, page.TotalPages)
	require.Len(t, page.Records, 1)

	ts, ok := page.Records[0].UnixSeconds()
	require.True(t, ok)
	assert.Equal(t, int64(1700000000), ts)

	// Output lookup is case-insensitive.
	amount, ok := page.Records[0].OutputFor(testAddr)
	require.True(t, ok)
	assert.Equal(t, "5000000000000000000", amount)
}

func TestUnixSecondsRejectsBadTimestamps(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"garbage", "not-a-number"},
		{"zero", "0"},
		{"negative", "-5"},
		{"absurd", "1e20"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := TxRecord{Timestamp: flexString(tc.raw)}
			_, ok := rec.UnixSeconds()
			assert.False(t, ok)
		})
	}
}
