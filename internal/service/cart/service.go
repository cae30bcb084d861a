package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/currency"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/pricing"
	"storefront/internal/reconcile"
	cartrepo "storefront/internal/repository/cart"
	productsvc "storefront/internal/service/product"
)

// ErrInvalidSession is returned for session ids that are not UUIDs.
var ErrInvalidSession = errors.New("invalid cart session")

type productReader interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
}

// Deps wires a Service.
type Deps struct {
	Products productReader
	Carts    cartrepo.Repository
	Currency currency.Unit
	Logger   *zap.Logger
	Now      func() time.Time
}

// Service hosts every shopper cart. Each session is a cart.Store opened on first use and kept for the life of
// the process, so reconciliation reaches all carts that have been touched.
type Service struct {
	products productReader
	carts    cartrepo.Repository
	unit     currency.Unit
	logger   *zap.Logger
	now      func() time.Time

	// mu is never held while a store lock is taken; store mutations may read the catalog under it.
	mu         sync.Mutex
	sessions   map[string]*cart.Store
	catalog    reconcile.Catalog
	catalogSeq uint64
}

func New(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	unit := deps.Currency
	if unit == (currency.Unit{}) {
		unit = currency.USD
	}
	return &Service{
		products: deps.Products,
		carts:    deps.Carts,
		unit:     unit,
		logger:   logger,
		now:      deps.Now,
		sessions: make(map[string]*cart.Store),
	}
}

// NewSession issues a fresh session id. The cart itself is created lazily.
func (s *Service) NewSession() string {
	return uuid.NewString()
}

// AddInput is a shopper's add-to-cart request. Empty option fields select the product's base variant.
type AddInput struct {
	ProductID string `json:"productId"`
	Length    string `json:"length,omitempty"`
	Density   string `json:"density,omitempty"`
	LaceSize  string `json:"laceSize,omitempty"`
}

// Add prices the selection against the current product and adds it to the session cart. A catalog snapshot
// reconciled while the product was being read is applied to the cart before Add returns.
func (s *Service) Add(ctx context.Context, sessionID string, in AddInput) (domain.CartLine, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return domain.CartLine{}, err
	}
	if strings.TrimSpace(in.ProductID) == "" {
		verr := &domain.ValidationError{}
		verr.Add("productId", -1, "required")
		return domain.CartLine{}, verr
	}
	seq := s.currentSeq()
	p, err := s.products.GetByID(ctx, strings.TrimSpace(in.ProductID))
	if err != nil {
		return domain.CartLine{}, err
	}
	sel, err := productsvc.ResolveSelection(*p, pricing.Selection{Length: in.Length, Density: in.Density, LaceSize: in.LaceSize})
	if err != nil {
		return domain.CartLine{}, err
	}
	q := pricing.Compute(*p, sel)

	var image string
	if len(p.Images) > 0 {
		image = p.Images[0]
	}
	line, err := store.AddOrIncrement(ctx, cart.LineInput{
		ProductID:        p.ID,
		Name:             p.Name,
		Image:            image,
		Price:            q.Price,
		OriginalPrice:    q.OriginalPrice,
		InStock:          p.InStock,
		SelectedLength:   sel.Length,
		SelectedDensity:  sel.Density,
		SelectedLaceSize: sel.LaceSize,
	})
	if err != nil && !cart.IsNotDurable(err) {
		return line, err
	}
	if changed, cerr := s.catchUp(ctx, store, seq); changed {
		if fresh, ok := store.Find(line.ID); ok {
			line = fresh
		}
		// the catch-up saved the whole cart, so its outcome replaces the add's
		err = cerr
	}
	return line, err
}

// Find returns the cart line for a product in any variant: the exact line id first, then the product part of
// each line id.
func (s *Service) Find(ctx context.Context, sessionID, productID string) (domain.CartLine, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return domain.CartLine{}, err
	}
	line, ok := store.Find(strings.TrimSpace(productID))
	if !ok {
		return domain.CartLine{}, domain.ErrNotFound
	}
	return line, nil
}

func (s *Service) SetQuantity(ctx context.Context, sessionID, lineID string, quantity int) error {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return err
	}
	return store.SetQuantity(ctx, lineID, quantity)
}

func (s *Service) Remove(ctx context.Context, sessionID, lineID string) error {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return err
	}
	return store.Remove(ctx, lineID)
}

func (s *Service) Lines(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return store.Lines(), nil
}

// Persisted reports whether the session cart has been saved since its last change.
func (s *Service) Persisted(ctx context.Context, sessionID string) (bool, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return store.Persisted(), nil
}

// Subscribe streams the session cart after every change until cancel is called.
func (s *Service) Subscribe(ctx context.Context, sessionID string) (<-chan []domain.CartLine, func(), error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := store.Subscribe()
	return ch, cancel, nil
}

// Checkout builds the read-only checkout view of the session cart.
func (s *Service) Checkout(ctx context.Context, sessionID string) (checkout.Snapshot, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return checkout.Snapshot{}, err
	}
	catalog := s.lastCatalog()
	if catalog == nil {
		products, err := s.products.ListAll(ctx)
		if err != nil {
			return checkout.Snapshot{}, fmt.Errorf("load products: %w", err)
		}
		catalog = reconcile.NewCatalog(products)
	}
	return checkout.Build(store.Lines(), catalog, s.unit), nil
}

// Reconcile applies a catalog snapshot to every open session. A cart that fails to persist is logged and counted
// but does not stop the others; the first such error is returned.
func (s *Service) Reconcile(ctx context.Context, catalog reconcile.Catalog) (reconcile.Summary, error) {
	s.mu.Lock()
	s.catalog = catalog
	s.catalogSeq++
	stores := make(map[string]*cart.Store, len(s.sessions))
	for id, st := range s.sessions {
		stores[id] = st
	}
	s.mu.Unlock()

	var total reconcile.Summary
	var firstErr error
	for id, st := range stores {
		sum, err := reconcile.ApplyToCart(ctx, st, catalog)
		total.Add(sum)
		if err != nil {
			s.logger.Warn("cart reconcile failed", zap.String("session_id", id), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return total, firstErr
}

// Flush retries persisting every open session.
func (s *Service) Flush(ctx context.Context) error {
	s.mu.Lock()
	stores := make([]*cart.Store, 0, len(s.sessions))
	for _, st := range s.sessions {
		stores = append(stores, st)
	}
	s.mu.Unlock()

	var errs []error
	for _, st := range stores {
		if err := st.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) lastCatalog() reconcile.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}

func (s *Service) currentSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalogSeq
}

// catchUp reconciles st with the latest catalog when one newer than seq exists. The catalog is read under the
// store lock, so a concurrent Reconcile either ran before and is seen here, or runs after and overwrites.
func (s *Service) catchUp(ctx context.Context, st *cart.Store, seq uint64) (bool, error) {
	return st.Mutate(ctx, func(lines []domain.CartLine, stamp func() int64) ([]domain.CartLine, bool) {
		s.mu.Lock()
		catalog, cur := s.catalog, s.catalogSeq
		s.mu.Unlock()
		if catalog == nil || cur == seq {
			return lines, false
		}
		return lines, reconcile.Apply(lines, catalog, stamp).Changed()
	})
}

// store returns the session cart, opening it from storage on first use. Loading happens outside s.mu so one
// slow session never blocks the others. A freshly opened cart is brought in line with the last catalog
// snapshot so it is never staler than the carts already live.
func (s *Service) store(ctx context.Context, sessionID string) (*cart.Store, error) {
	id, err := uuid.Parse(strings.TrimSpace(sessionID))
	if err != nil {
		return nil, ErrInvalidSession
	}
	key := id.String()

	s.mu.Lock()
	st, ok := s.sessions[key]
	s.mu.Unlock()
	if ok {
		return st, nil
	}

	deps := cart.StoreDeps{Logger: s.logger.With(zap.String("session_id", key)), Now: s.now}
	if s.carts != nil {
		deps.Persister = cartrepo.SessionPersister{Repo: s.carts, SessionID: key}
	}
	opened, err := cart.Open(ctx, deps)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if st, ok := s.sessions[key]; ok {
		s.mu.Unlock()
		return st, nil
	}
	s.sessions[key] = opened
	s.mu.Unlock()

	if _, err := s.catchUp(ctx, opened, 0); err != nil {
		s.logger.Warn("cart reconcile on open failed", zap.String("session_id", key), zap.Error(err))
	}
	return opened, nil
}
