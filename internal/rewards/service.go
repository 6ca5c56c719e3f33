package rewards

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stake-dashboard/internal/cache"
	"github.com/stake-dashboard/internal/explorer"
	"github.com/stake-dashboard/internal/types"
	"github.com/stake-dashboard/internal/wei"
)

// Trailing window durations served by the windowed endpoint.
const (
	window7d  = 7 * 24 * time.Hour
	window30d = 30 * 24 * time.Hour
)

// ExplorerAPI is the slice of the explorer client the reward service needs.
type ExplorerAPI interface {
	explorer.PageSource
	Account(ctx context.Context, addr types.Address) (*explorer.AccountBalance, error)
	Stakes(ctx context.Context, addr types.Address) ([]explorer.StakeRecord, error)
}

// Config holds pagination limits for the two endpoint variants.
type Config struct {
	PageLimit      int // records per feed page
	WindowMaxPages int // hard cap for the 7d/30d walk
	SinceMaxPages  int // hard cap for the since-mode walk
}

// DefaultConfig mirrors the caps the endpoints ship with.
func DefaultConfig() Config {
	return Config{PageLimit: 50, WindowMaxPages: 25, SinceMaxPages: 40}
}

// AddressRewards is the windowed-endpoint result for one address. Zero
// sums are surfaced as null: "no signal" is distinct from "zero signal".
type AddressRewards struct {
	Address      types.Address `json:"address"`
	TFuelBalance *float64      `json:"tfuelBalance"`
	StakedTheta  *float64      `json:"stakedTheta"`
	Rewards7d    *float64      `json:"rewards7d"`
	Rewards30d   *float64      `json:"rewards30d"`
	LastRewardAt *int64        `json:"lastRewardAt"`
}

// AddressEarned is the since-endpoint result for one address.
type AddressEarned struct {
	Address      types.Address `json:"address"`
	Earned       *float64      `json:"earned"`
	LastRewardAt *int64        `json:"lastRewardAt"`
	PagesFetched int           `json:"pagesFetched"`
}

// Service computes batch reward summaries. Results for identical parameter
// sets are memoized per endpoint; caches are injected so each instance (and
// each test) owns its own.
type Service struct {
	explorer     ExplorerAPI
	rewardsCache *cache.Memoizer[[]AddressRewards]
	earnedCache  *cache.Memoizer[[]AddressEarned]
	cfg          Config

	now func() time.Time
}

// NewService creates a reward service.
func NewService(api ExplorerAPI, rewardsCache *cache.Memoizer[[]AddressRewards], earnedCache *cache.Memoizer[[]AddressEarned], cfg Config) *Service {
	if cfg.PageLimit <= 0 {
		cfg = DefaultConfig()
	}
	return &Service{
		explorer:     api,
		rewardsCache: rewardsCache,
		earnedCache:  earnedCache,
		cfg:          cfg,
		now:          time.Now,
	}
}

// WindowedRewards computes balance, active stake and trailing 7d/30d reward
// totals for each address. Addresses are processed concurrently; results
// keep input order. Any address's upstream failure rejects the whole batch.
func (s *Service) WindowedRewards(ctx context.Context, addrs []types.Address) ([]AddressRewards, error) {
	key := addressKey(addrs)
	return s.rewardsCache.Do(ctx, key, func(ctx context.Context) ([]AddressRewards, error) {
		results := make([]AddressRewards, len(addrs))
		g, gctx := errgroup.WithContext(ctx)
		for i, addr := range addrs {
			i, addr := i, addr
			g.Go(func() error {
				r, err := s.windowedForAddress(gctx, addr)
				if err != nil {
					return err
				}
				results[i] = *r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return results, nil
	})
}

// windowedForAddress fans out the three independent upstream lookups for
// one address: balance, stakes, and the paginated reward walk.
func (s *Service) windowedForAddress(ctx context.Context, addr types.Address) (*AddressRewards, error) {
	now := s.now()
	bound7 := now.Add(-window7d).Unix()
	bound30 := now.Add(-window30d).Unix()
	acc := NewAccumulator(addr, bound7, bound30)

	var balance *float64
	var staked float64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		account, err := s.explorer.Account(gctx, addr)
		if err != nil {
			return err
		}
		if account != nil {
			if v, ok := wei.ToDisplay(account.TFuelWei, tfuelDecimals); ok {
				balance = &v
			}
		}
		return nil
	})
	g.Go(func() error {
		records, err := s.explorer.Stakes(gctx, addr)
		if err != nil {
			return err
		}
		staked = StakedTotal(records)
		return nil
	})
	g.Go(func() error {
		// The 30d bound is the outer window; pages older than it carry
		// nothing either window wants.
		walker := explorer.NewWalker(s.explorer, s.cfg.PageLimit, s.cfg.WindowMaxPages)
		_, err := walker.Walk(gctx, addr, bound30, acc.Ingest)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &AddressRewards{
		Address:      addr,
		TFuelBalance: balance,
		StakedTheta:  nullIfZero(staked),
		Rewards7d:    nullIfZero(acc.Sum(0)),
		Rewards30d:   nullIfZero(acc.Sum(1)),
	}
	if ts, ok := acc.LastRewardAt(); ok {
		result.LastRewardAt = &ts
	}
	return result, nil
}

// EarnedSince computes each address's reward total from an absolute start
// timestamp to now, walking the feed until a record older than since is
// seen.
func (s *Service) EarnedSince(ctx context.Context, addrs []types.Address, since int64) ([]AddressEarned, error) {
	key := cache.Key(addressKey(addrs), strconv.FormatInt(since, 10))
	return s.earnedCache.Do(ctx, key, func(ctx context.Context) ([]AddressEarned, error) {
		results := make([]AddressEarned, len(addrs))
		g, gctx := errgroup.WithContext(ctx)
		for i, addr := range addrs {
			i, addr := i, addr
			g.Go(func() error {
				acc := NewAccumulator(addr, since)
				walker := explorer.NewWalker(s.explorer, s.cfg.PageLimit, s.cfg.SinceMaxPages)
				pages, err := walker.Walk(gctx, addr, since, acc.Ingest)
				if err != nil {
					return err
				}
				r := AddressEarned{
					Address:      addr,
					Earned:       nullIfZero(acc.Sum(0)),
					PagesFetched: pages,
				}
				if ts, ok := acc.LastRewardAt(); ok {
					r.LastRewardAt = &ts
				}
				results[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return results, nil
	})
}

// TFuelBalances fetches current display balances for a set of addresses.
// Used by the earnings tracker to take baseline and refresh snapshots. A
// missing balance shape yields a nil entry for that address.
func (s *Service) TFuelBalances(ctx context.Context, addrs []types.Address) (map[types.Address]*float64, error) {
	balances := make([]*float64, len(addrs))
	g, gctx := errgroup.WithContext(ctx)
	for i, addr := range addrs {
		i, addr := i, addr
		g.Go(func() error {
			account, err := s.explorer.Account(gctx, addr)
			if err != nil {
				return err
			}
			if account != nil {
				if v, ok := wei.ToDisplay(account.TFuelWei, tfuelDecimals); ok {
					balances[i] = &v
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[types.Address]*float64, len(addrs))
	for i, addr := range addrs {
		out[addr] = balances[i]
	}
	return out, nil
}

// nullIfZero maps a zero sum to null so callers can tell "no rewards seen"
// from an actual zero reading.
func nullIfZero(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

func addressKey(addrs []types.Address) string {
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = a.String()
	}
	return cache.Key(parts...)
}
