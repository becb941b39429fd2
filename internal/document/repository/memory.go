package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/gogotex/nodedoc/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
)

// MemoryRepo keeps BSON-encoded records in a map. Used when no database is
// configured and in unit tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string][]byte
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string][]byte)}
}

func (m *MemoryRepo) Save(ctx context.Context, rec bson.M) error {
	id, err := recordID(rec)
	if err != nil {
		return err
	}
	b, err := encode(rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[id] = b
	metrics.DocumentOps.WithLabelValues("memory", "save").Inc()
	return nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (bson.M, error) {
	m.mu.RLock()
	b, ok := m.store[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	metrics.DocumentOps.WithLabelValues("memory", "load").Inc()
	return decode(b)
}

func (m *MemoryRepo) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.store))
	for id := range m.store {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	metrics.DocumentOps.WithLabelValues("memory", "delete").Inc()
	return nil
}
