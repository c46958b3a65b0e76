package store

import (
	"context"
	"sync"

	"github.com/matzehuels/lineage/pkg/family"
)

// Backend persists person records, one record per person keyed by ID.
//
// Implementations are scoped to one user's tree when they are constructed
// and must be safe for concurrent use.
type Backend interface {
	// Name identifies the backend in logs ("file", "redis", ...).
	Name() string

	// LoadAll returns every stored person. An empty result with a nil error
	// means the tree is empty; any failure to read must return an error.
	LoadAll(ctx context.Context) ([]family.Person, error)

	// Put creates or replaces one person record.
	Put(ctx context.Context, p family.Person) error

	// Clear removes every person record.
	Clear(ctx context.Context) error

	// Close releases connections held by the backend.
	Close() error
}

// Memory is an in-process Backend. It is used for tests and for
// "storage.backend = memory".
type Memory struct {
	mu     sync.RWMutex
	people map[string]family.Person

	// PutFunc, when set, is called before every Put and can inject failures.
	PutFunc func(p family.Person) error
}

// NewMemory creates an empty in-memory backend.
func NewMemory(people ...family.Person) *Memory {
	m := &Memory{people: make(map[string]family.Person, len(people))}
	for _, p := range people {
		m.people[p.ID] = p.Clone()
	}
	return m
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) LoadAll(ctx context.Context) ([]family.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]family.Person, 0, len(m.people))
	for _, p := range m.people {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (m *Memory) Put(ctx context.Context, p family.Person) error {
	if m.PutFunc != nil {
		if err := m.PutFunc(p); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.people[p.ID] = p.Clone()
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.people)
	return nil
}

func (m *Memory) Close() error { return nil }

// Stored returns the persisted record for id.
func (m *Memory) Stored(id string) (family.Person, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.people[id]
	return p.Clone(), ok
}

var _ Backend = (*Memory)(nil)
