package rewards

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-dashboard/internal/cache"
	"github.com/stake-dashboard/internal/explorer"
	"github.com/stake-dashboard/internal/types"
)

var (
	addrA = types.Address("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	addrB = types.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

// fakeExplorer serves canned per-address data and counts upstream calls.
type fakeExplorer struct {
	mu       sync.Mutex
	balances map[types.Address]*explorer.AccountBalance
	stakes   map[types.Address][]explorer.StakeRecord
	pages    map[types.Address][]*explorer.TxPage
	fail     map[types.Address]error
	calls    int
}

func newFakeExplorer() *fakeExplorer {
	return &fakeExplorer{
		balances: make(map[types.Address]*explorer.AccountBalance),
		stakes:   make(map[types.Address][]explorer.StakeRecord),
		pages:    make(map[types.Address][]*explorer.TxPage),
		fail:     make(map[types.Address]error),
	}
}

func (f *fakeExplorer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeExplorer) Account(ctx context.Context, addr types.Address) (*explorer.AccountBalance, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err := f.fail[addr]; err != nil {
		return nil, err
	}
	return f.balances[addr], nil
}

func (f *fakeExplorer) Stakes(ctx context.Context, addr types.Address) ([]explorer.StakeRecord, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err := f.fail[addr]; err != nil {
		return nil, err
	}
	return f.stakes[addr], nil
}

func (f *fakeExplorer) AccountTxPage(ctx context.Context, addr types.Address, page, limit int) (*explorer.TxPage, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err := f.fail[addr]; err != nil {
		return nil, err
	}
	pages := f.pages[addr]
	if page > len(pages) {
		return &explorer.TxPage{CurrentPage: page, TotalPages: len(pages)}, nil
	}
	return pages[page-1], nil
}

func newTestService(f *fakeExplorer) *Service {
	svc := NewService(f,
		cache.NewMemoizer[[]AddressRewards](100, time.Minute),
		cache.NewMemoizer[[]AddressEarned](100, time.Minute),
		DefaultConfig(),
	)
	svc.now = func() time.Time { return time.Unix(2_000_000_000, 0) }
	return svc
}

func TestWindowedRewardsKeepsInputOrderAndNormalizesNulls(t *testing.T) {
	now := int64(2_000_000_000)
	f := newFakeExplorer()
	f.balances[addrA] = &explorer.AccountBalance{TFuelWei: "3000000000000000000"}
	f.stakes[addrA] = []explorer.StakeRecord{{Amount: "1000000000000000000000"}}
	f.pages[addrA] = []*explorer.TxPage{{
		Records:     []explorer.TxRecord{mustRecord(addrA, now-3600, "2000000000000000000")},
		CurrentPage: 1, TotalPages: 1,
	}}
	// addrB has no balance shape, no stakes, no rewards.

	svc := newTestService(f)
	results, err := svc.WindowedRewards(context.Background(), []types.Address{addrB, addrA})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, addrB, results[0].Address)
	assert.Nil(t, results[0].TFuelBalance)
	assert.Nil(t, results[0].StakedTheta)
	assert.Nil(t, results[0].Rewards7d)
	assert.Nil(t, results[0].Rewards30d)
	assert.Nil(t, results[0].LastRewardAt)

	assert.Equal(t, addrA, results[1].Address)
	require.NotNil(t, results[1].TFuelBalance)
	assert.InDelta(t, 3.0, *results[1].TFuelBalance, 1e-9)
	require.NotNil(t, results[1].StakedTheta)
	assert.InDelta(t, 1000.0, *results[1].StakedTheta, 1e-9)
	require.NotNil(t, results[1].Rewards7d)
	assert.InDelta(t, 2.0, *results[1].Rewards7d, 1e-9)
	require.NotNil(t, results[1].Rewards30d)
	assert.InDelta(t, 2.0, *results[1].Rewards30d, 1e-9)
	require.NotNil(t, results[1].LastRewardAt)
	assert.Equal(t, now-3600, *results[1].LastRewardAt)
}

func TestWindowedRewardsRejectsWholeBatchOnUpstreamFailure(t *testing.T) {
	f := newFakeExplorer()
	f.balances[addrA] = &explorer.AccountBalance{TFuelWei: "1000000000000000000"}
	f.fail[addrB] = &types.UpstreamError{Endpoint: "account", Status: 500}

	svc := newTestService(f)
	results, err := svc.WindowedRewards(context.Background(), []types.Address{addrA, addrB})
	assert.Error(t, err)
	assert.Nil(t, results)
}

func TestWindowedRewardsMemoizesIdenticalBatches(t *testing.T) {
	f := newFakeExplorer()
	svc := newTestService(f)

	_, err := svc.WindowedRewards(context.Background(), []types.Address{addrA})
	require.NoError(t, err)
	first := f.count()
	require.Positive(t, first)

	_, err = svc.WindowedRewards(context.Background(), []types.Address{addrA})
	require.NoError(t, err)
	assert.Equal(t, first, f.count())
}

func TestEarnedSinceCountsPagesAndKeysOnSince(t *testing.T) {
	now := int64(2_000_000_000)
	f := newFakeExplorer()
	f.pages[addrA] = []*explorer.TxPage{
		{
			Records:     []explorer.TxRecord{mustRecord(addrA, now-100, "1000000000000000000")},
			CurrentPage: 1, TotalPages: 2,
		},
		{
			Records:     []explorer.TxRecord{mustRecord(addrA, now-500_000, "1000000000000000000")},
			CurrentPage: 2, TotalPages: 2,
		},
	}

	svc := newTestService(f)
	results, err := svc.EarnedSince(context.Background(), []types.Address{addrA}, now-1000)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Page two crosses the boundary, so the walk stops there.
	assert.Equal(t, 2, results[0].PagesFetched)
	require.NotNil(t, results[0].Earned)
	assert.InDelta(t, 1.0, *results[0].Earned, 1e-9)

	// A different since is a different cache key.
	before := f.count()
	wider, err := svc.EarnedSince(context.Background(), []types.Address{addrA}, now-1_000_000)
	require.NoError(t, err)
	assert.Greater(t, f.count(), before)
	require.NotNil(t, wider[0].Earned)
	assert.InDelta(t, 2.0, *wider[0].Earned, 1e-9)
}

func TestTFuelBalancesMapsMissingShapeToNil(t *testing.T) {
	f := newFakeExplorer()
	f.balances[addrA] = &explorer.AccountBalance{TFuelWei: "7000000000000000000"}

	svc := newTestService(f)
	balances, err := svc.TFuelBalances(context.Background(), []types.Address{addrA, addrB})
	require.NoError(t, err)

	require.NotNil(t, balances[addrA])
	assert.InDelta(t, 7.0, *balances[addrA], 1e-9)
	assert.Nil(t, balances[addrB])
}

// mustRecord builds a coinbase record paying amountWei to addr at ts.
func mustRecord(addr types.Address, ts int64, amountWei string) explorer.TxRecord {
	rec := rewardRecord(ts, amountWei)
	rec.Data.Outputs[0].Address = addr.String()
	return rec
}
