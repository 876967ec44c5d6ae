// Package memory keeps the whole ledger in process, optionally persisted
// to a snapshot file on every mutation. It is the default backend and the
// one the tests run against.
package memory

import (
	"context"
	"fmt"
	"os"
	"sync"

	"infinance/internal/core"
	"infinance/internal/store"
)

type Store struct {
	mu   sync.Mutex
	snap core.Snapshot
	path string // empty means no file persistence
}

// New starts from a fresh default ledger.
func New() *Store {
	return &Store{snap: core.DefaultSnapshot()}
}

// NewFromSnapshot seeds the store with an existing ledger.
func NewFromSnapshot(snap core.Snapshot) *Store {
	return &Store{snap: normalize(snap)}
}

// NewFromFile loads the snapshot at path, falling back to the default
// ledger when the file is missing or unreadable. Mutations are written
// back to the same file.
func NewFromFile(path string) *Store {
	s := &Store{path: path, snap: core.DefaultSnapshot()}
	if data, err := os.ReadFile(path); err == nil {
		s.snap = core.DecodeSnapshot(data)
	}
	return s
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.snap.Transactions...), nil
}

func (s *Store) PutTransaction(_ context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Transactions = upsert(s.snap.Transactions, tx, func(t core.Transaction) string { return t.ID })
	return s.flush()
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed bool
	s.snap.Transactions, removed = remove(s.snap.Transactions, id, func(t core.Transaction) string { return t.ID })
	if !removed {
		return store.ErrNotFound
	}
	return s.flush()
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.snap.Categories...), nil
}

func (s *Store) PutCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Categories = upsert(s.snap.Categories, c, func(c core.Category) string { return c.ID })
	return s.flush()
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed bool
	s.snap.Categories, removed = remove(s.snap.Categories, id, func(c core.Category) string { return c.ID })
	if !removed {
		return store.ErrNotFound
	}
	return s.flush()
}

func (s *Store) ListInvestments(_ context.Context) ([]core.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Investment(nil), s.snap.Investments...), nil
}

func (s *Store) PutInvestment(_ context.Context, inv core.Investment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Investments = upsert(s.snap.Investments, inv, func(i core.Investment) string { return i.ID })
	return s.flush()
}

func (s *Store) DeleteInvestment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed bool
	s.snap.Investments, removed = remove(s.snap.Investments, id, func(i core.Investment) string { return i.ID })
	if !removed {
		return store.ErrNotFound
	}
	return s.flush()
}

func (s *Store) LoadAll(_ context.Context) (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Snapshot{
		Transactions: append([]core.Transaction(nil), s.snap.Transactions...),
		Categories:   append([]core.Category(nil), s.snap.Categories...),
		Investments:  append([]core.Investment(nil), s.snap.Investments...),
		Theme:        s.snap.Theme,
	}, nil
}

func (s *Store) SaveAll(_ context.Context, snap core.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = normalize(snap)
	return s.flush()
}

// flush writes the snapshot file. Caller holds the lock.
func (s *Store) flush() error {
	if s.path == "" {
		return nil
	}
	data, err := s.snap.Encode()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func normalize(snap core.Snapshot) core.Snapshot {
	if snap.Transactions == nil {
		snap.Transactions = []core.Transaction{}
	}
	if len(snap.Categories) == 0 {
		snap.Categories = core.DefaultCategories()
	}
	if snap.Investments == nil {
		snap.Investments = []core.Investment{}
	}
	if snap.Theme != core.ThemeDark {
		snap.Theme = core.ThemeLight
	}
	return snap
}

func upsert[T any](items []T, item T, id func(T) string) []T {
	key := id(item)
	for i := range items {
		if id(items[i]) == key {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

func remove[T any](items []T, key string, id func(T) string) ([]T, bool) {
	for i := range items {
		if id(items[i]) == key {
			return append(items[:i], items[i+1:]...), true
		}
	}
	return items, false
}
