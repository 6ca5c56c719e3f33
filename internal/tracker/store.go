package tracker

import (
	"context"
	"sync"

	"github.com/stake-dashboard/internal/types"
)

// State is the persisted tracking snapshot: the start point, the balance
// baseline captured at start per address, and the day-keyed cumulative
// earnings series.
type State struct {
	StartedAt int64                                `json:"startedAt"`
	Baselines map[types.Address]*float64           `json:"baselines"`
	Series    map[types.Address]map[string]float64 `json:"series"`
}

// Store persists tracker state behind a generic key-value interface so the
// tracking logic stays independent of the storage backend. Load returns
// (nil, nil) when no tracking state exists. The lifetime marker lives under
// its own key and survives Clear.
type Store interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, state *State) error
	Clear(ctx context.Context) error

	LoadLifetime(ctx context.Context) (int64, error)
	SaveLifetime(ctx context.Context, startedAt int64) error
}

// MemoryStore is an in-process Store for development and tests.
type MemoryStore struct {
	mu       sync.Mutex
	state    *State
	lifetime int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored state so callers cannot mutate the
// store's view without going through Save.
func (m *MemoryStore) Load(ctx context.Context) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneState(m.state), nil
}

func (m *MemoryStore) Save(ctx context.Context, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = cloneState(state)
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = nil
	return nil
}

func (m *MemoryStore) LoadLifetime(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lifetime, nil
}

func (m *MemoryStore) SaveLifetime(ctx context.Context, startedAt int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lifetime = startedAt
	return nil
}

func cloneState(state *State) *State {
	if state == nil {
		return nil
	}
	clone := &State{
		StartedAt: state.StartedAt,
		Baselines: make(map[types.Address]*float64, len(state.Baselines)),
		Series:    make(map[types.Address]map[string]float64, len(state.Series)),
	}
	for addr, baseline := range state.Baselines {
		if baseline != nil {
			v := *baseline
			clone.Baselines[addr] = &v
		} else {
			clone.Baselines[addr] = nil
		}
	}
	for addr, series := range state.Series {
		s := make(map[string]float64, len(series))
		for day, earned := range series {
			s[day] = earned
		}
		clone.Series[addr] = s
	}
	return clone
}
