package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/chazu/biomimic/pkg/design"
)

// MemoryStore keeps designs in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	designs map[uuid.UUID]*design.Design
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{designs: make(map[uuid.UUID]*design.Design)}
}

func (m *MemoryStore) Save(d *design.Design) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	m.mu.Lock()
	m.designs[d.ID] = clone(d)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) List() ([]*design.Design, error) {
	m.mu.RLock()
	out := lo.Map(lo.Values(m.designs), func(d *design.Design, _ int) *design.Design {
		return clone(d)
	})
	m.mu.RUnlock()
	sortRecent(out)
	return out, nil
}

func (m *MemoryStore) Get(id uuid.UUID) (*design.Design, error) {
	m.mu.RLock()
	d, ok := m.designs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return clone(d), nil
}

func (m *MemoryStore) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.designs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.designs, id)
	return nil
}

func (m *MemoryStore) DeleteAll() error {
	m.mu.Lock()
	m.designs = make(map[uuid.UUID]*design.Design)
	m.mu.Unlock()
	return nil
}
