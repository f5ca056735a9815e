package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dusk-indust/codesense/internal/report"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]Record
	order   []string // ids in save order
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string]Record)}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// Save stores a copy of rec keyed by its id.
func (m *MemStore) Save(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
	}
	m.records[rec.ID] = cloneRecord(rec)
	m.order = append(m.order, rec.ID)
	return nil
}

// Get returns the record with the given id.
func (m *MemStore) Get(_ context.Context, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	out := cloneRecord(rec)
	return &out, nil
}

// List returns records newest first. Records saved with the same timestamp
// come back in reverse save order.
func (m *MemStore) List(_ context.Context, limit int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Record, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, cloneRecord(m.records[m.order[i]]))
	}
	slices.SortStableFunc(out, func(a, b Record) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Stats counts records and issue kinds.
func (m *MemStore) Stats(_ context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := &Stats{Total: len(m.records), IssuesByKind: []KindCount{}}
	if st.Total == 0 {
		return st, nil
	}
	sum := 0
	byKind := make(map[string]int)
	for _, rec := range m.records {
		sum += rec.Score
		for _, is := range rec.Issues {
			byKind[is.Kind]++
		}
	}
	st.MeanScore = float64(sum) / float64(st.Total)
	for kind, n := range byKind {
		st.IssuesByKind = append(st.IssuesByKind, KindCount{Kind: kind, Count: n})
	}
	sortKindCounts(st.IssuesByKind)
	return st, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}

func cloneRecord(rec Record) Record {
	rec.Issues = report.CopyIssues(rec.Issues)
	rec.Functions = slices.Clone(rec.Functions)
	if rec.Functions == nil {
		rec.Functions = []report.FunctionComplexity{}
	}
	return rec
}
