// Package checkout turns a cart into the read-only view handed to the payment step.
package checkout

import (
	"golang.org/x/text/currency"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/reconcile"
	"storefront/internal/variant"
)

// Item is one cart line as shown at checkout. Option fields carry display labels when the catalog still knows
// the option, otherwise the raw selected value.
type Item struct {
	LineID        string `json:"lineId"`
	ProductID     string `json:"productId"`
	Name          string `json:"name"`
	Image         string `json:"image,omitempty"`
	Quantity      int    `json:"quantity"`
	Price         int64  `json:"price"`
	OriginalPrice *int64 `json:"originalPrice,omitempty"`
	Subtotal      int64  `json:"subtotal"`
	Length        string `json:"length,omitempty"`
	Density       string `json:"density,omitempty"`
	LaceSize      string `json:"laceSize,omitempty"`
	InStock       bool   `json:"inStock"`
}

// Snapshot is the checkout view of a cart. Total and Savings count in-stock lines only.
type Snapshot struct {
	Currency    string `json:"currency"`
	Items       []Item `json:"items"`
	Total       int64  `json:"total"`
	Savings     int64  `json:"savings"`
	Unavailable int    `json:"unavailable"`
	Purchasable bool   `json:"purchasable"`
}

// Build assembles the snapshot. Lines whose product left the catalog keep their stored name and price.
func Build(lines []domain.CartLine, catalog reconcile.Catalog, unit currency.Unit) Snapshot {
	snap := Snapshot{Currency: unit.String(), Items: make([]Item, 0, len(lines))}
	for _, line := range lines {
		item := Item{
			LineID:        line.ID,
			ProductID:     cart.BaseID(line.ID),
			Name:          line.Name,
			Image:         line.Image,
			Quantity:      line.Quantity,
			Price:         line.Price,
			OriginalPrice: line.OriginalPrice,
			Subtotal:      line.Price * int64(line.Quantity),
			Length:        line.SelectedLength,
			Density:       line.SelectedDensity,
			LaceSize:      line.SelectedLaceSize,
			InStock:       line.InStock,
		}
		if p, ok := catalog.Match(line.ID); ok {
			item.ProductID = p.ID
			labelOptions(&item, p)
		}
		snap.Items = append(snap.Items, item)

		if !line.InStock {
			snap.Unavailable++
			continue
		}
		snap.Total += item.Subtotal
		if line.OriginalPrice != nil && *line.OriginalPrice > line.Price {
			snap.Savings += (*line.OriginalPrice - line.Price) * int64(line.Quantity)
		}
	}
	snap.Purchasable = len(snap.Items) > snap.Unavailable
	return snap
}

func labelOptions(item *Item, p domain.Product) {
	if i := variant.FindLength(p.Lengths, item.Length); i >= 0 && p.Lengths[i].Label != "" {
		item.Length = p.Lengths[i].Label
	}
	if i := variant.FindDensity(p.Densities, item.Density); i >= 0 && p.Densities[i].Label != "" {
		item.Density = p.Densities[i].Label
	}
	if i := variant.FindLaceSize(p.LaceSizes, item.LaceSize); i >= 0 && p.LaceSizes[i].Label != "" {
		item.LaceSize = p.LaceSizes[i].Label
	}
}
