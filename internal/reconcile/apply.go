// Package reconcile keeps cart lines consistent with the live catalog.
package reconcile

import (
	"context"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/pricing"
	"storefront/internal/variant"
)

// Summary counts what one reconciliation pass did. A line whose stock and price both changed is counted in
// both StockChanged and PriceChanged.
type Summary struct {
	Lines        int `json:"lines"`
	Unchanged    int `json:"unchanged"`
	StockChanged int `json:"stockChanged"`
	PriceChanged int `json:"priceChanged"`
	Orphaned     int `json:"orphaned"`
}

// Changed reports whether any line was rewritten.
func (s Summary) Changed() bool {
	return s.Lines != s.Unchanged
}

// Add folds another summary into s.
func (s *Summary) Add(o Summary) {
	s.Lines += o.Lines
	s.Unchanged += o.Unchanged
	s.StockChanged += o.StockChanged
	s.PriceChanged += o.PriceChanged
	s.Orphaned += o.Orphaned
}

// Catalog indexes a product snapshot by id.
type Catalog map[string]domain.Product

// NewCatalog builds an index from a full product listing.
func NewCatalog(products []domain.Product) Catalog {
	c := make(Catalog, len(products))
	for _, p := range products {
		c[p.ID] = p
	}
	return c
}

// Match finds the product for a cart line: exact id first, then the product part of the line id. It mirrors
// cart.Store.Find so both never disagree.
func (c Catalog) Match(lineID string) (domain.Product, bool) {
	if p, ok := c[lineID]; ok {
		return p, true
	}
	p, ok := c[cart.BaseID(lineID)]
	return p, ok
}

// Apply rewrites lines in place against the catalog. Selections and quantities are never touched; only stock,
// price and the update stamp change, and only when they differ, so a second pass with the same catalog is a
// no-op.
func Apply(lines []domain.CartLine, catalog Catalog, stamp func() int64) Summary {
	sum := Summary{Lines: len(lines)}
	for i := range lines {
		line := &lines[i]
		p, ok := catalog.Match(line.ID)
		if !ok || !variantExists(p, *line) {
			if line.InStock {
				line.InStock = false
				line.LastUpdated = stamp()
				sum.Orphaned++
			} else {
				sum.Unchanged++
			}
			continue
		}

		q := pricing.Compute(p, pricing.Selection{
			Length:   line.SelectedLength,
			Density:  line.SelectedDensity,
			LaceSize: line.SelectedLaceSize,
		})
		changed := false
		if line.InStock != p.InStock {
			line.InStock = p.InStock
			sum.StockChanged++
			changed = true
		}
		if line.Price != q.Price || !samePrice(line.OriginalPrice, q.OriginalPrice) {
			line.Price = q.Price
			line.OriginalPrice = q.OriginalPrice
			sum.PriceChanged++
			changed = true
		}
		if changed {
			line.LastUpdated = stamp()
		} else {
			sum.Unchanged++
		}
	}
	return sum
}

// variantExists reports whether every option a line was bought with is still offered.
func variantExists(p domain.Product, line domain.CartLine) bool {
	if line.SelectedLength != "" && p.HasLengths() && variant.FindLength(p.Lengths, line.SelectedLength) < 0 {
		return false
	}
	if line.SelectedDensity != "" && variant.FindDensity(p.Densities, line.SelectedDensity) < 0 {
		return false
	}
	if line.SelectedLaceSize != "" && variant.FindLaceSize(p.LaceSizes, line.SelectedLaceSize) < 0 {
		return false
	}
	return true
}

// Cart is the part of cart.Store reconciliation writes through.
type Cart interface {
	Mutate(ctx context.Context, fn cart.MutateFunc) (bool, error)
}

// ApplyToCart reconciles one cart atomically.
func ApplyToCart(ctx context.Context, c Cart, catalog Catalog) (Summary, error) {
	var sum Summary
	_, err := c.Mutate(ctx, func(lines []domain.CartLine, stamp func() int64) ([]domain.CartLine, bool) {
		sum = Apply(lines, catalog, stamp)
		return lines, sum.Changed()
	})
	return sum, err
}

func samePrice(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
