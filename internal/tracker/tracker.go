// Package tracker implements incremental earnings tracking: a user-chosen
// start point, per-address balance baselines, and day-keyed cumulative
// earnings snapshots persisted through a pluggable store.
package tracker

import (
	"context"
	"sort"
	"time"

	"github.com/stake-dashboard/internal/types"
)

const dayKeyLayout = "2006-01-02"

// BalanceSource supplies current display balances for tracked addresses.
type BalanceSource interface {
	TFuelBalances(ctx context.Context, addrs []types.Address) (map[types.Address]*float64, error)
}

// DayDelta is one day's derived earnings, used for charting. Deltas are
// floored at zero: the tracker measures monotonic accrual, and a balance
// decrease (withdrawal, transfer out) reads as noise, not negative earnings.
type DayDelta struct {
	Day    string  `json:"day"`
	Earned float64 `json:"earned"`
}

// Status is the tracker's externally visible state.
type Status struct {
	Tracking  bool                                 `json:"tracking"`
	StartedAt *int64                               `json:"startedAt,omitempty"`
	Baselines map[types.Address]*float64           `json:"baselines,omitempty"`
	Series    map[types.Address]map[string]float64 `json:"series,omitempty"`
	Daily     map[types.Address][]DayDelta         `json:"daily,omitempty"`
}

// Service is the tracking state machine: Idle (no persisted state) and
// Running (state present). Start captures baselines, Refresh overwrites
// today's cumulative earned figure, Stop discards everything.
type Service struct {
	store    Store
	balances BalanceSource
	loc      *time.Location

	now func() time.Time
}

// NewService creates a tracker service. Day keys are bucketed in loc;
// nil falls back to the local zone.
func NewService(store Store, balances BalanceSource, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{store: store, balances: balances, loc: loc, now: time.Now}
}

func (s *Service) dayKey(t time.Time) string {
	return t.In(s.loc).Format(dayKeyLayout)
}

// Start transitions Idle → Running. It takes a fresh balance snapshot for
// the given addresses, records it as the baseline, and seeds today's series
// entry with zero. Starting while already running is rejected.
func (s *Service) Start(ctx context.Context, addrs []types.Address) (*Status, error) {
	existing, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &types.ServiceError{Code: types.ErrTrackingActive, Message: "Tracking already active"}
	}

	balances, err := s.balances.TFuelBalances(ctx, addrs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := s.dayKey(now)
	state := &State{
		StartedAt: now.Unix(),
		Baselines: make(map[types.Address]*float64, len(addrs)),
		Series:    make(map[types.Address]map[string]float64, len(addrs)),
	}
	for _, addr := range addrs {
		state.Baselines[addr] = balances[addr]
		state.Series[addr] = map[string]float64{today: 0}
	}

	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}
	return s.statusFor(state), nil
}

// Refresh is the Running self-loop: for every tracked address with both a
// baseline and a current balance it overwrites today's entry with the
// cumulative earned-so-far figure, floored at zero.
func (s *Service) Refresh(ctx context.Context) (*Status, error) {
	state, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, &types.ServiceError{Code: types.ErrTrackingInactive, Message: "Tracking not active"}
	}

	addrs := trackedAddresses(state)
	balances, err := s.balances.TFuelBalances(ctx, addrs)
	if err != nil {
		return nil, err
	}

	today := s.dayKey(s.now())
	for _, addr := range addrs {
		baseline := state.Baselines[addr]
		current := balances[addr]
		if baseline == nil || current == nil {
			continue
		}
		earned := *current - *baseline
		if earned < 0 {
			earned = 0
		}
		if state.Series[addr] == nil {
			state.Series[addr] = make(map[string]float64)
		}
		state.Series[addr][today] = earned
	}

	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}
	return s.statusFor(state), nil
}

// Stop transitions Running → Idle, discarding baselines and the full day
// series. There is no archival. The lifetime marker is untouched.
func (s *Service) Stop(ctx context.Context) error {
	state, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if state == nil {
		return &types.ServiceError{Code: types.ErrTrackingInactive, Message: "Tracking not active"}
	}
	return s.store.Clear(ctx)
}

// Status reports the current tracking state including derived daily deltas.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	state, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return &Status{Tracking: false}, nil
	}
	return s.statusFor(state), nil
}

func (s *Service) statusFor(state *State) *Status {
	daily := make(map[types.Address][]DayDelta, len(state.Series))
	for addr, series := range state.Series {
		daily[addr] = DailyDeltas(series)
	}
	startedAt := state.StartedAt
	return &Status{
		Tracking:  true,
		StartedAt: &startedAt,
		Baselines: state.Baselines,
		Series:    state.Series,
		Daily:     daily,
	}
}

// StartLifetime records the lifetime tracking start point. The marker is
// one-directional: once set it is never overwritten, only returned.
func (s *Service) StartLifetime(ctx context.Context) (int64, error) {
	existing, err := s.store.LoadLifetime(ctx)
	if err != nil {
		return 0, err
	}
	if existing != 0 {
		return existing, nil
	}
	startedAt := s.now().Unix()
	if err := s.store.SaveLifetime(ctx, startedAt); err != nil {
		return 0, err
	}
	return startedAt, nil
}

// LifetimeStartedAt returns the lifetime marker, or zero when unset.
func (s *Service) LifetimeStartedAt(ctx context.Context) (int64, error) {
	return s.store.LoadLifetime(ctx)
}

// DailyDeltas derives per-day earnings from a cumulative day-keyed series:
// the delta for the first key is its own value, every later delta is the
// difference from the previous key, floored at zero.
func DailyDeltas(series map[string]float64) []DayDelta {
	if len(series) == 0 {
		return nil
	}
	keys := make([]string, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	deltas := make([]DayDelta, len(keys))
	for i, k := range keys {
		earned := series[k]
		if i > 0 {
			earned -= series[keys[i-1]]
		}
		if earned < 0 {
			earned = 0
		}
		deltas[i] = DayDelta{Day: k, Earned: earned}
	}
	return deltas
}

func trackedAddresses(state *State) []types.Address {
	addrs := make([]types.Address, 0, len(state.Baselines))
	for addr := range state.Baselines {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}
