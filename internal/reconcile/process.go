package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/domain"
)

// CatalogReader is the catalog read contract.
type CatalogReader interface {
	LoadAllProducts(ctx context.Context) ([]domain.Product, error)
}

// ChangeFeed delivers catalog change notifications until ctx is done, then closes the channel.
type ChangeFeed interface {
	Subscribe(ctx context.Context) (<-chan domain.CatalogEvent, error)
}

// Target receives each refreshed catalog snapshot.
type Target interface {
	Reconcile(ctx context.Context, catalog Catalog) (Summary, error)
}

// CartTarget adapts a single cart to Target.
type CartTarget struct {
	Cart Cart
}

// Reconcile implements Target.
func (t CartTarget) Reconcile(ctx context.Context, catalog Catalog) (Summary, error) {
	return ApplyToCart(ctx, t.Cart, catalog)
}

// ProcessDeps wires a Process.
type ProcessDeps struct {
	Catalog CatalogReader
	Feed    ChangeFeed
	Target  Target
	Logger  *zap.Logger
}

// Process re-reads the whole catalog on every change notification and reconciles the target with it. Events are
// handled one at a time in arrival order.
type Process struct {
	catalog CatalogReader
	feed    ChangeFeed
	target  Target
	logger  *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

var errAlreadyStarted = errors.New("reconcile: process already started")

// NewProcess validates deps and builds a stopped process.
func NewProcess(deps ProcessDeps) (*Process, error) {
	if deps.Catalog == nil {
		return nil, errors.New("reconcile: catalog reader is required")
	}
	if deps.Target == nil {
		return nil, errors.New("reconcile: target is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Process{
		catalog: deps.Catalog,
		feed:    deps.Feed,
		target:  deps.Target,
		logger:  logger,
	}, nil
}

// Start subscribes to the feed, runs one reconciliation pass and then follows the feed in the background.
// A failed initial pass is logged; the next event retries it.
func (p *Process) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return errAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	var events <-chan domain.CatalogEvent
	if p.feed != nil {
		ch, err := p.feed.Subscribe(runCtx)
		if err != nil {
			cancel()
			return fmt.Errorf("subscribe catalog feed: %w", err)
		}
		events = ch
	}

	if _, err := p.Refresh(runCtx); err != nil {
		p.logger.Warn("initial reconciliation failed", zap.Error(err))
	}

	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(runCtx, events, p.done)
	return nil
}

// Stop unsubscribes and waits for the event loop to exit. An in-flight pass is allowed to finish.
func (p *Process) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Refresh loads the full catalog and reconciles the target with it.
func (p *Process) Refresh(ctx context.Context) (Summary, error) {
	products, err := p.catalog.LoadAllProducts(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load products: %w", err)
	}
	sum, err := p.target.Reconcile(ctx, NewCatalog(products))
	if sum.Changed() {
		p.logger.Info("cart reconciled",
			zap.Int("lines", sum.Lines),
			zap.Int("stock_changed", sum.StockChanged),
			zap.Int("price_changed", sum.PriceChanged),
			zap.Int("orphaned", sum.Orphaned),
		)
	}
	if err != nil {
		return sum, fmt.Errorf("reconcile: %w", err)
	}
	return sum, nil
}

func (p *Process) run(ctx context.Context, events <-chan domain.CatalogEvent, done chan struct{}) {
	defer close(done)
	if events == nil {
		<-ctx.Done()
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() == nil {
					p.logger.Warn("catalog feed closed")
				}
				return
			}
			p.logger.Debug("catalog changed", zap.String("op", ev.Op), zap.String("product_id", eventProductID(ev)))
			if _, err := p.Refresh(context.WithoutCancel(ctx)); err != nil {
				p.logger.Warn("reconciliation failed", zap.Error(err))
			}
		}
	}
}

func eventProductID(ev domain.CatalogEvent) string {
	if ev.ProductID != "" {
		return ev.ProductID
	}
	if ev.Product != nil {
		return ev.Product.ID
	}
	return ""
}
