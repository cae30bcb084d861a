package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/pricing"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/variant"
)

// Notifier is told about every catalog write. The in-memory feed implements it; with the Postgres feed the
// table trigger does the notifying and no Notifier is configured.
type Notifier interface {
	PublishCatalogEvent(ctx context.Context, ev domain.CatalogEvent) error
}

// Service is the admin product editor backend and the storefront product reader.
type Service struct {
	repo     productrepo.Repository
	notifier Notifier
	logger   *zap.Logger
	newID    func() string
}

func New(repo productrepo.Repository, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		newID:    func() string { return ulid.Make().String() },
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListAll(ctx)
}

// LoadAllProducts is the catalog read used by reconciliation.
func (s *Service) LoadAllProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Save runs the option save rules and writes the product. A product without an id gets a fresh ULID.
// Validation failures return a *domain.ValidationError and nothing is written.
func (s *Service) Save(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if strings.TrimSpace(p.ID) == "" {
		id, err := s.idForKey(ctx, p.Key)
		if err != nil {
			return nil, err
		}
		p.ID = id
	}
	if err := variant.PrepareForSave(&p); err != nil {
		return nil, err
	}
	saved, err := s.repo.Upsert(ctx, p)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, domain.CatalogEvent{Op: "UPSERT", ProductID: saved.ID, Product: saved})
	return saved, nil
}

// idForKey reuses the id of the product already stored under key, so saves without an id stay idempotent.
func (s *Service) idForKey(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return s.newID(), nil
	}
	existing, err := s.repo.GetByKey(ctx, key)
	switch {
	case err == nil:
		return existing.ID, nil
	case errors.Is(err, domain.ErrNotFound):
		return s.newID(), nil
	default:
		return "", fmt.Errorf("lookup key %s: %w", key, err)
	}
}

// SetStock flips the stock flag of a product without touching its options.
func (s *Service) SetStock(ctx context.Context, id string, inStock bool) (*domain.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.InStock = inStock
	saved, err := s.repo.Upsert(ctx, *p)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, domain.CatalogEvent{Op: "UPSERT", ProductID: saved.ID, Product: saved})
	return saved, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.notify(ctx, domain.CatalogEvent{Op: "DELETE", ProductID: id})
	return nil
}

// Duplicates is the advisory duplicate check the editor runs while options are being typed.
func (s *Service) Duplicates(p domain.Product) variant.DuplicateReport {
	return variant.CheckDuplicates(p)
}

// QuoteResult is a priced selection with its display discount.
type QuoteResult struct {
	Selection       pricing.Selection `json:"selection"`
	Price           int64             `json:"price"`
	OriginalPrice   *int64            `json:"originalPrice,omitempty"`
	DiscountPercent int64             `json:"discountPercent"`
}

// Quote prices a selection of product id. Empty selections default to the base variants.
func (s *Service) Quote(ctx context.Context, id string, sel pricing.Selection) (*QuoteResult, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sel, err = ResolveSelection(*p, sel)
	if err != nil {
		return nil, err
	}
	q := pricing.Compute(*p, sel)
	return &QuoteResult{
		Selection:       sel,
		Price:           q.Price,
		OriginalPrice:   q.OriginalPrice,
		DiscountPercent: q.DiscountPercent(),
	}, nil
}

// ResolveSelection validates shopper input against the product's options and fills unset dimensions with
// their base variant. This is the only place selections are checked; pricing trusts its input.
func ResolveSelection(p domain.Product, sel pricing.Selection) (pricing.Selection, error) {
	verr := &domain.ValidationError{}
	def := pricing.DefaultSelection(p)

	out := pricing.Selection{}
	switch {
	case !p.HasLengths():
		if strings.TrimSpace(sel.Length) != "" {
			verr.Add("length", -1, "product has no length options")
		}
	case strings.TrimSpace(sel.Length) == "":
		out = pricing.SelectLength(p, out, def.Length)
	case variant.FindLength(p.Lengths, sel.Length) < 0:
		verr.Add("length", -1, "unknown length "+sel.Length)
	default:
		out = pricing.SelectLength(p, out, sel.Length)
	}

	switch {
	case len(p.LaceSizes) == 0:
		if strings.TrimSpace(sel.LaceSize) != "" {
			verr.Add("laceSize", -1, "product has no lace size options")
		}
	case strings.TrimSpace(sel.LaceSize) != "":
		if variant.FindLaceSize(p.LaceSizes, sel.LaceSize) < 0 {
			verr.Add("laceSize", -1, "unknown lace size "+sel.LaceSize)
		} else {
			out.LaceSize = strings.TrimSpace(sel.LaceSize)
		}
	case out.LaceSize == "":
		out.LaceSize = def.LaceSize
	}

	switch {
	case len(p.Densities) == 0:
		if strings.TrimSpace(sel.Density) != "" {
			verr.Add("density", -1, "product has no density options")
		}
	case strings.TrimSpace(sel.Density) == "":
		out.Density = def.Density
	case variant.FindDensity(p.Densities, sel.Density) < 0:
		verr.Add("density", -1, "unknown density "+sel.Density)
	default:
		out.Density = strings.TrimSpace(sel.Density)
	}

	if err := verr.OrNil(); err != nil {
		return pricing.Selection{}, err
	}
	return out, nil
}

func (s *Service) notify(ctx context.Context, ev domain.CatalogEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishCatalogEvent(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("catalog notify failed", zap.String("product_id", ev.ProductID), zap.Error(err))
	}
}
