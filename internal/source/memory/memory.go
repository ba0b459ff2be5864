// Package memory is an in-process store, optionally seeded from a YAML file.
package memory

import (
	"context"
	"sync"

	"dernek/internal/core"
	"dernek/internal/source"
)

// Store keeps every collection in memory. Saves upsert by ID and keep the
// first-insert position.
type Store struct {
	mu       sync.RWMutex
	events   []core.Event
	projects []core.Project
	cases    []core.Case
	payments []core.CashPayment
	inKind   []core.InKindTransaction
	people   []core.Person
	products []core.Product
	records  []core.FinancialRecord
	messages []core.Message
}

var _ source.ReadWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// NewFromDataset builds a store holding d.
func NewFromDataset(d source.Dataset) *Store {
	s := New()
	// Writes to a fresh store cannot fail.
	_ = d.Write(context.Background(), s)
	return s
}

// NewFromFile seeds the store from a YAML dataset. An empty path yields an
// empty store.
func NewFromFile(path string) (*Store, error) {
	if path == "" {
		return New(), nil
	}
	d, err := source.LoadDataset(path)
	if err != nil {
		return nil, err
	}
	return NewFromDataset(d), nil
}

func (s *Store) FetchEvents(ctx context.Context) ([]core.Event, error) {
	return read(ctx, s, func() []core.Event { return s.events })
}

func (s *Store) FetchProjects(ctx context.Context) ([]core.Project, error) {
	return read(ctx, s, func() []core.Project { return s.projects })
}

func (s *Store) FetchCases(ctx context.Context) ([]core.Case, error) {
	return read(ctx, s, func() []core.Case { return s.cases })
}

func (s *Store) FetchCashPayments(ctx context.Context) ([]core.CashPayment, error) {
	return read(ctx, s, func() []core.CashPayment { return s.payments })
}

func (s *Store) FetchInKindTransactions(ctx context.Context) ([]core.InKindTransaction, error) {
	return read(ctx, s, func() []core.InKindTransaction { return s.inKind })
}

func (s *Store) FetchPeople(ctx context.Context) ([]core.Person, error) {
	return read(ctx, s, func() []core.Person { return s.people })
}

func (s *Store) FetchProducts(ctx context.Context) ([]core.Product, error) {
	return read(ctx, s, func() []core.Product { return s.products })
}

func (s *Store) FetchFinancialRecords(ctx context.Context) ([]core.FinancialRecord, error) {
	return read(ctx, s, func() []core.FinancialRecord { return s.records })
}

func (s *Store) FetchMessages(ctx context.Context) ([]core.Message, error) {
	return read(ctx, s, func() []core.Message { return s.messages })
}

func (s *Store) SaveEvents(ctx context.Context, v []core.Event) error {
	return write(ctx, s, &s.events, v, func(e core.Event) string { return e.ID })
}

func (s *Store) SaveProjects(ctx context.Context, v []core.Project) error {
	return write(ctx, s, &s.projects, v, func(p core.Project) string { return p.ID })
}

func (s *Store) SaveCases(ctx context.Context, v []core.Case) error {
	return write(ctx, s, &s.cases, v, func(c core.Case) string { return c.ID })
}

func (s *Store) SaveCashPayments(ctx context.Context, v []core.CashPayment) error {
	return write(ctx, s, &s.payments, v, func(p core.CashPayment) string { return p.ID })
}

func (s *Store) SaveInKindTransactions(ctx context.Context, v []core.InKindTransaction) error {
	return write(ctx, s, &s.inKind, v, func(t core.InKindTransaction) string { return t.ID })
}

func (s *Store) SavePeople(ctx context.Context, v []core.Person) error {
	return write(ctx, s, &s.people, v, func(p core.Person) string { return p.ID })
}

func (s *Store) SaveProducts(ctx context.Context, v []core.Product) error {
	return write(ctx, s, &s.products, v, func(p core.Product) string { return p.ID })
}

func (s *Store) SaveFinancialRecords(ctx context.Context, v []core.FinancialRecord) error {
	return write(ctx, s, &s.records, v, func(r core.FinancialRecord) string { return r.ID })
}

func (s *Store) SaveMessages(ctx context.Context, v []core.Message) error {
	return write(ctx, s, &s.messages, v, func(m core.Message) string { return m.ID })
}

// read returns a copy so callers never share the backing array.
func read[T any](ctx context.Context, s *Store, items func() []T) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := items()
	return append(make([]T, 0, len(src)), src...), nil
}

func write[T any](ctx context.Context, s *Store, dst *[]T, items []T, id func(T) string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := make(map[string]int, len(*dst))
	for i, existing := range *dst {
		pos[id(existing)] = i
	}
	for _, item := range items {
		if i, ok := pos[id(item)]; ok {
			(*dst)[i] = item
			continue
		}
		pos[id(item)] = len(*dst)
		*dst = append(*dst, item)
	}
	return nil
}
