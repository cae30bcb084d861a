// Package pricing composes the final price of a product from its selected length, lace size and density.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/variant"
)

// Selection names the chosen option values. Empty fields mean "not selected".
type Selection struct {
	Length   string `json:"length,omitempty"`
	Density  string `json:"density,omitempty"`
	LaceSize string `json:"laceSize,omitempty"`
}

// Quote is the composed price. OriginalPrice is nil when the base has no pre-discount price.
type Quote struct {
	Price         int64  `json:"price"`
	OriginalPrice *int64 `json:"originalPrice,omitempty"`
}

// DiscountPercent is the rounded display discount of the quote.
func (q Quote) DiscountPercent() int64 {
	return DiscountPercent(q.Price, q.OriginalPrice)
}

// DiscountPercent returns round((original-price)/original*100), or 0 when there is no meaningful original price.
func DiscountPercent(price int64, original *int64) int64 {
	if original == nil || *original <= 0 || *original <= price {
		return 0
	}
	diff := decimal.NewFromInt(*original - price)
	return diff.Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(*original)).Round(0).IntPart()
}

// base is the resolved starting point of a quote.
type base struct {
	price    int64
	original *int64
	// length is the resolved length option, nil when the product price was used.
	length *domain.LengthOption
}

// Compute returns the final sale and original price for sel. Unknown option values never fail; they simply
// contribute nothing.
func Compute(p domain.Product, sel Selection) Quote {
	b := resolveBase(p, sel)
	lace := laceAddOn(p, sel)
	density := densityAddOn(p, sel, b)

	q := Quote{Price: b.price + lace + density}
	if b.original != nil {
		q.OriginalPrice = domain.Int64(*b.original + lace + density)
	}
	return q
}

func resolveBase(p domain.Product, sel Selection) base {
	if p.HasLengths() {
		if i := variant.FindLength(p.Lengths, sel.Length); i >= 0 {
			l := p.Lengths[i]
			return base{price: l.Price, original: copyPrice(l.OriginalPrice), length: &l}
		}
	}
	return base{price: p.Price, original: copyPrice(p.OriginalPrice)}
}

func laceAddOn(p domain.Product, sel Selection) int64 {
	i := variant.FindLaceSize(p.LaceSizes, sel.LaceSize)
	if i < 0 {
		return 0
	}
	return p.LaceSizes[i].PriceMultiplier
}

func densityAddOn(p domain.Product, sel Selection, b base) int64 {
	if strings.TrimSpace(sel.Density) == "" {
		return 0
	}
	i := variant.FindDensity(p.Densities, sel.Density)
	if i < 0 {
		return 0
	}
	in := densityInput{index: i, density: p.Densities[i], base: b}
	for _, resolve := range densityResolvers {
		if amount, ok := resolve(in); ok {
			return amount
		}
	}
	return 0
}

// DefaultSelection selects the base variant of every enabled dimension.
func DefaultSelection(p domain.Product) Selection {
	var sel Selection
	if p.HasLengths() {
		sel = SelectLength(p, sel, p.Lengths[0].Value)
	}
	if sel.LaceSize == "" && len(p.LaceSizes) > 0 {
		sel.LaceSize = p.LaceSizes[0].Value
	}
	if len(p.Densities) > 0 {
		sel.Density = p.Densities[0].Value
	}
	return sel
}

// SelectLength sets the length and auto-selects the lace size that length defaults to, if any.
func SelectLength(p domain.Product, sel Selection, length string) Selection {
	sel.Length = variant.NormalizeLengthValue(length)
	if i := variant.FindLength(p.Lengths, length); i >= 0 {
		if lace := strings.TrimSpace(p.Lengths[i].LaceSize); lace != "" {
			sel.LaceSize = lace
		}
	}
	return sel
}

func copyPrice(v *int64) *int64 {
	if v == nil {
		return nil
	}
	return domain.Int64(*v)
}
