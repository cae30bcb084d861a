package domain

import "time"

// LengthOption is one selectable stretched length. ID is derived from Value and never edited by hand.
type LengthOption struct {
	ID            string `json:"id"`
	Value         string `json:"value"`
	Label         string `json:"label"`
	Price         int64  `json:"price"`
	OriginalPrice *int64 `json:"originalPrice,omitempty"`
	LaceSize      string `json:"laceSize,omitempty"`
}

// LaceSizeOption is a cap/lace variant. PriceMultiplier is a flat amount added to the price, not a ratio.
type LaceSizeOption struct {
	Value           string `json:"value"`
	Label           string `json:"label"`
	PriceMultiplier int64  `json:"priceMultiplier"`
}

// DensityPrice is one matrix row: the absolute price of a density at a given length.
type DensityPrice struct {
	LengthID    string `json:"lengthId"`
	LengthValue string `json:"lengthValue"`
	Price       int64  `json:"price"`
}

// DensityOption is a density variant with a flat fallback add-on and a per-length price matrix.
type DensityOption struct {
	Value           string         `json:"value"`
	Label           string         `json:"label"`
	AdditionalPrice int64          `json:"additionalPrice"`
	Prices          []DensityPrice `json:"prices,omitempty"`
}

// Product is the catalog aggregate. Index 0 of every option slice is the base variant.
type Product struct {
	ID            string           `json:"id"`
	Key           string           `json:"key,omitempty"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	Price         int64            `json:"price"`
	OriginalPrice *int64           `json:"originalPrice,omitempty"`
	InStock       bool             `json:"inStock"`
	Rating        float64          `json:"rating"`
	Images        []string         `json:"images,omitempty"`
	Lengths       []LengthOption   `json:"lengths,omitempty"`
	LaceSizes     []LaceSizeOption `json:"laceSizes,omitempty"`
	Densities     []DensityOption  `json:"densities,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// HasLengths reports whether length options are enabled for the product.
func (p Product) HasLengths() bool {
	return len(p.Lengths) > 0
}

// CatalogEvent is a change notification from the catalog store. Product is nil for deletes and for
// transports that only carry the record id.
type CatalogEvent struct {
	Op        string   `json:"op,omitempty"`
	ProductID string   `json:"productId,omitempty"`
	Product   *Product `json:"product,omitempty"`
}

// Int64 returns a pointer to v, for optional prices.
func Int64(v int64) *int64 {
	return &v
}
