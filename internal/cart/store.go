package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
)

// Persister is the cart persistence contract. Implementations are called after every mutation.
type Persister interface {
	LoadCart(ctx context.Context) ([]domain.CartLine, error)
	SaveCart(ctx context.Context, lines []domain.CartLine) error
}

// PersistError reports that a mutation was applied in memory but could not be made durable.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("cart %s: not persisted: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// IsNotDurable reports whether err only means the in-memory cart is ahead of storage.
func IsNotDurable(err error) bool {
	var perr *PersistError
	return errors.As(err, &perr)
}

// LineInput describes a product+selection being added to the cart.
type LineInput struct {
	ProductID        string
	Name             string
	Image            string
	Price            int64
	OriginalPrice    *int64
	InStock          bool
	SelectedLength   string
	SelectedDensity  string
	SelectedLaceSize string
}

// MutateFunc rewrites a copy of the cart lines. stamp yields a fresh LastUpdated value. It reports whether
// anything changed; unchanged results are neither stored nor persisted.
type MutateFunc func(lines []domain.CartLine, stamp func() int64) ([]domain.CartLine, bool)

// StoreDeps configures a Store.
type StoreDeps struct {
	Persister Persister
	Logger    *zap.Logger
	Now       func() time.Time
}

// Store is a single-writer cart. Shopper mutations and reconciliation both go through it and are serialised.
type Store struct {
	mu        sync.Mutex
	lines     []domain.CartLine
	persister Persister
	logger    *zap.Logger
	now       func() time.Time
	lastStamp int64
	unsaved   bool
	subs      map[int]chan []domain.CartLine
	nextSub   int
}

// NewStore builds an empty store.
func NewStore(deps StoreDeps) *Store {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		persister: deps.Persister,
		logger:    logger,
		now:       now,
		subs:      make(map[int]chan []domain.CartLine),
	}
}

// Open builds a store and loads the persisted cart. A load failure leaves an empty cart and is returned as a
// PersistError.
func Open(ctx context.Context, deps StoreDeps) (*Store, error) {
	s := NewStore(deps)
	return s, s.Load(ctx)
}

// Load replaces the in-memory lines with the persisted ones.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	lines, err := s.persister.LoadCart(ctx)
	if err != nil {
		s.logger.Warn("cart load failed", zap.Error(err))
		return &PersistError{Op: "load", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = normalizeLoaded(lines)
	for _, l := range s.lines {
		if l.LastUpdated > s.lastStamp {
			s.lastStamp = l.LastUpdated
		}
	}
	s.publishLocked()
	return nil
}

// Lines returns a copy of the current cart.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneLines(s.lines)
}

// Find looks a product up by exact line id, then by the product part of each line id, so callers can ask
// whether a product is in the cart in any variant.
func (s *Store) Find(productID string) (domain.CartLine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := findLine(s.lines, productID); i >= 0 {
		return cloneLine(s.lines[i]), true
	}
	return domain.CartLine{}, false
}

// AddOrIncrement bumps the quantity of an existing line with the same id or inserts a new line with quantity 1.
func (s *Store) AddOrIncrement(ctx context.Context, in LineInput) (domain.CartLine, error) {
	id := LineID(in.ProductID, in.SelectedLength)
	var out domain.CartLine
	_, err := s.mutate(ctx, "add", func(lines []domain.CartLine, stamp func() int64) ([]domain.CartLine, bool) {
		for i := range lines {
			if lines[i].ID == id {
				lines[i].Quantity++
				lines[i].LastUpdated = stamp()
				out = cloneLine(lines[i])
				return lines, true
			}
		}
		line := domain.CartLine{
			ID:               id,
			Name:             in.Name,
			Image:            in.Image,
			Quantity:         1,
			Price:            in.Price,
			OriginalPrice:    copyPrice(in.OriginalPrice),
			InStock:          in.InStock,
			SelectedLength:   in.SelectedLength,
			SelectedDensity:  in.SelectedDensity,
			SelectedLaceSize: in.SelectedLaceSize,
			LastUpdated:      stamp(),
		}
		out = cloneLine(line)
		return append(lines, line), true
	})
	return out, err
}

// SetQuantity sets the quantity of line id. Quantities below 1 remove the line. A line that is out of stock
// ignores quantity requests entirely; use Remove to drop it.
func (s *Store) SetQuantity(ctx context.Context, id string, quantity int) error {
	found := false
	_, err := s.mutate(ctx, "set quantity", func(lines []domain.CartLine, stamp func() int64) ([]domain.CartLine, bool) {
		for i := range lines {
			if lines[i].ID != id {
				continue
			}
			found = true
			if !lines[i].InStock {
				return lines, false
			}
			if quantity < 1 {
				return append(lines[:i], lines[i+1:]...), true
			}
			if lines[i].Quantity == quantity {
				return lines, false
			}
			lines[i].Quantity = quantity
			lines[i].LastUpdated = stamp()
			return lines, true
		}
		return lines, false
	})
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

// Remove deletes line id.
func (s *Store) Remove(ctx context.Context, id string) error {
	found := false
	_, err := s.mutate(ctx, "remove", func(lines []domain.CartLine, _ func() int64) ([]domain.CartLine, bool) {
		for i := range lines {
			if lines[i].ID == id {
				found = true
				return append(lines[:i], lines[i+1:]...), true
			}
		}
		return lines, false
	})
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

// Mutate applies fn atomically. It is the entry point for reconciliation.
func (s *Store) Mutate(ctx context.Context, fn MutateFunc) (bool, error) {
	return s.mutate(ctx, "reconcile", fn)
}

// Persisted reports whether the current lines match the last successful save.
func (s *Store) Persisted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.unsaved
}

// Flush retries saving the current lines.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, "flush")
}

// Subscribe returns a channel that receives the cart after every change. Slow readers only see the latest cart.
func (s *Store) Subscribe() (<-chan []domain.CartLine, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan []domain.CartLine, 1)
	s.subs[id] = ch
	ch <- cloneLines(s.lines)
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Store) mutate(ctx context.Context, op string, fn MutateFunc) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := fn(cloneLines(s.lines), s.stampLocked)
	if !changed {
		return false, nil
	}
	s.lines = next
	s.publishLocked()
	return true, s.saveLocked(ctx, op)
}

func (s *Store) saveLocked(ctx context.Context, op string) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.SaveCart(ctx, cloneLines(s.lines)); err != nil {
		s.logger.Warn("cart save failed", zap.String("op", op), zap.Int("lines", len(s.lines)), zap.Error(err))
		s.unsaved = true
		return &PersistError{Op: op, Err: err}
	}
	s.unsaved = false
	return nil
}

func (s *Store) stampLocked() int64 {
	ts := s.now().UnixMilli()
	if ts <= s.lastStamp {
		ts = s.lastStamp + 1
	}
	s.lastStamp = ts
	return ts
}

func (s *Store) publishLocked() {
	for _, ch := range s.subs {
		snapshot := cloneLines(s.lines)
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

func findLine(lines []domain.CartLine, productID string) int {
	for i := range lines {
		if lines[i].ID == productID {
			return i
		}
	}
	for i := range lines {
		if BaseID(lines[i].ID) == productID {
			return i
		}
	}
	return -1
}

// normalizeLoaded drops lines without an id or with a stored quantity below 1.
func normalizeLoaded(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.ID == "" || l.Quantity < 1 {
			continue
		}
		out = append(out, cloneLine(l))
	}
	return out
}

func cloneLines(lines []domain.CartLine) []domain.CartLine {
	if lines == nil {
		return []domain.CartLine{}
	}
	out := make([]domain.CartLine, len(lines))
	for i, l := range lines {
		out[i] = cloneLine(l)
	}
	return out
}

func cloneLine(l domain.CartLine) domain.CartLine {
	l.OriginalPrice = copyPrice(l.OriginalPrice)
	return l
}

func copyPrice(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
