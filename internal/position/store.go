package position

import (
	"sync"

	"github.com/flowquant-lab/flowquant/internal/types"
)

// Store is the keyed open-position lookup: at most one Position per
// strategy id. Implementations must support concurrent access with
// replace-by-key semantics only, never in-place edits.
type Store interface {
	// Get returns the open position for a strategy, if any.
	Get(strategyID string) (types.Position, bool, error)
	// Set stores or replaces the open position for its strategy.
	Set(position types.Position) error
	// Remove clears the open position for a strategy. Removing a missing
	// key is not an error.
	Remove(strategyID string) error
	// List returns a snapshot of all open positions.
	List() ([]types.Position, error)
}

// MemoryStore is the in-process Store used by backtests and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	positions map[string]types.Position
}

// NewMemoryStore creates an empty in-memory position store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		positions: make(map[string]types.Position),
	}
}

// Get implements Store.
func (s *MemoryStore) Get(strategyID string) (types.Position, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.positions[strategyID]

	return pos, ok, nil
}

// Set implements Store.
func (s *MemoryStore) Set(position types.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.positions[position.StrategyID] = position

	return nil
}

// Remove implements Store.
func (s *MemoryStore) Remove(strategyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.positions, strategyID)

	return nil
}

// List implements Store.
func (s *MemoryStore) List() ([]types.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Position, 0, len(s.positions))
	for _, pos := range s.positions {
		out = append(out, pos)
	}

	return out, nil
}
