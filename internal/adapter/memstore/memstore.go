// Package memstore keeps the store data in process memory.
//
// Transactions are serialized: RunInTx holds the store mutex for the whole
// callback and restores the previous state when the callback fails.
// Constraint checks mirror the SQL schema.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/port"
)

// ErrConstraint is returned for writes the SQL schema would reject.
var ErrConstraint = errors.New("constraint violation")

var _ port.Store = (*Store)(nil)

type state struct {
	seq        int64
	products   map[int64]domain.Product
	stock      map[int64]domain.StockBalance
	carts      map[int64]domain.Cart
	cartItems  map[int64]domain.CartItem
	orders     map[int64]domain.Order
	orderItems map[int64]domain.OrderItem
	alerts     []domain.StockAlert
}

func newState() *state {
	return &state{
		products:   make(map[int64]domain.Product),
		stock:      make(map[int64]domain.StockBalance),
		carts:      make(map[int64]domain.Cart),
		cartItems:  make(map[int64]domain.CartItem),
		orders:     make(map[int64]domain.Order),
		orderItems: make(map[int64]domain.OrderItem),
	}
}

func (s *state) clone() *state {
	return &state{
		seq:        s.seq,
		products:   maps.Clone(s.products),
		stock:      maps.Clone(s.stock),
		carts:      maps.Clone(s.carts),
		cartItems:  maps.Clone(s.cartItems),
		orders:     maps.Clone(s.orders),
		orderItems: maps.Clone(s.orderItems),
		alerts:     slices.Clone(s.alerts),
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

type Store struct {
	mu sync.Mutex
	st *state
}

func New() *Store {
	return &Store{st: newState()}
}

func (s *Store) RunInTx(
	ctx context.Context, fn func(port.Repositories) error,
) error {
	const op = "memstore.RunInTx"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	defer func() {
		if r := recover(); r != nil {
			s.st = snapshot
			panic(r)
		}
	}()

	tx := s.st
	repos := port.Repositories{
		Products:    productsRepo{tx},
		Stock:       stockRepo{tx},
		Carts:       cartsRepo{tx},
		Orders:      ordersRepo{tx},
		StockAlerts: alertsRepo{tx},
	}

	if err := fn(repos); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func constraintErr(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConstraint)
}

// sortedValues returns map values ordered by cmp.
func sortedValues[K comparable, V any](m map[K]V, cmp func(a, b V) int) []V {
	vs := slices.Collect(maps.Values(m))
	slices.SortFunc(vs, cmp)
	return vs
}
