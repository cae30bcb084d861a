package httpserver

import (
	"time"

	"storefront/internal/domain"
	"storefront/internal/pricing"
)

type productResponse struct {
	ID              string                  `json:"id"`
	Key             string                  `json:"key,omitempty"`
	Name            string                  `json:"name"`
	Description     string                  `json:"description,omitempty"`
	Price           int64                   `json:"price"`
	OriginalPrice   *int64                  `json:"originalPrice,omitempty"`
	DiscountPercent int64                   `json:"discountPercent"`
	InStock         bool                    `json:"inStock"`
	Rating          float64                 `json:"rating"`
	Images          []string                `json:"images"`
	Lengths         []domain.LengthOption   `json:"lengths"`
	LaceSizes       []domain.LaceSizeOption `json:"laceSizes"`
	Densities       []domain.DensityOption  `json:"densities"`
	Default         pricing.Selection       `json:"defaultSelection"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:              p.ID,
		Key:             p.Key,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		OriginalPrice:   p.OriginalPrice,
		DiscountPercent: pricing.DiscountPercent(p.Price, p.OriginalPrice),
		InStock:         p.InStock,
		Rating:          p.Rating,
		Images:          orEmpty(p.Images),
		Lengths:         orEmpty(p.Lengths),
		LaceSizes:       orEmpty(p.LaceSizes),
		Densities:       orEmpty(p.Densities),
		Default:         pricing.DefaultSelection(p),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

type cartResponse struct {
	Session   string            `json:"session"`
	Lines     []domain.CartLine `json:"lines"`
	Count     int               `json:"count"`
	Subtotal  int64             `json:"subtotal"`
	Persisted bool              `json:"persisted"`
}

func toCartResponse(session string, lines []domain.CartLine, persisted bool) cartResponse {
	resp := cartResponse{Session: session, Lines: orEmpty(lines), Persisted: persisted}
	for _, l := range lines {
		resp.Count += l.Quantity
		if l.InStock {
			resp.Subtotal += l.Price * int64(l.Quantity)
		}
	}
	return resp
}

func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
