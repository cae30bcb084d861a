package seed

import (
	"context"
	"fmt"

	"storefront/internal/domain"
)

// ProductSaver runs the admin save pipeline. The product service implements it.
type ProductSaver interface {
	Save(ctx context.Context, p domain.Product) (*domain.Product, error)
}

// Products returns the demo catalog. Ids are fixed so Apply is idempotent.
func Products() []domain.Product {
	return []domain.Product{
		{
			ID:          "01HZY3S0BODYWAVE000000001",
			Key:         "body-wave-wig",
			Name:        "Body Wave Lace Front Wig",
			Description: "Glueless body wave unit with pre-plucked hairline",
			InStock:     true,
			Rating:      4.7,
			Images:      []string{"/images/body-wave-1.jpg", "/images/body-wave-2.jpg"},
			Lengths: []domain.LengthOption{
				{Value: "14", Label: "14 inches", Price: 25000, OriginalPrice: domain.Int64(29000), LaceSize: "13x4"},
				{Value: "16", Label: "16 inches", Price: 30000, OriginalPrice: domain.Int64(35000)},
				{Value: "20", Label: "20 inches", Price: 38000},
			},
			LaceSizes: []domain.LaceSizeOption{
				{Value: "13x4", Label: "13x4 HD Lace"},
				{Value: "13x6", Label: "13x6 HD Lace", PriceMultiplier: 5000},
			},
			Densities: []domain.DensityOption{
				{Value: "150", Label: "150%"},
				{Value: "180", Label: "180%", AdditionalPrice: 4000, Prices: []domain.DensityPrice{
					{LengthID: "length-16", LengthValue: "16", Price: 36000},
					{LengthID: "length-20", LengthValue: "20", Price: 45000},
				}},
			},
		},
		{
			ID:          "01HZY3S0STRAIGHTBOB000001",
			Key:         "straight-bob",
			Name:        "Straight Bob Wig",
			Description: "Blunt cut bob, ready to wear",
			InStock:     true,
			Rating:      4.4,
			Images:      []string{"/images/straight-bob.jpg"},
			Lengths: []domain.LengthOption{
				{Value: "10", Label: "10 inches", Price: 15000},
				{Value: "12", Label: "12 inches", Price: 17500},
			},
			Densities: []domain.DensityOption{
				{Value: "150", Label: "150%"},
				{Value: "200", Label: "200%", AdditionalPrice: 6000},
			},
		},
		{
			ID:            "01HZY3S0CLOSURE0000000001",
			Key:           "lace-closure",
			Name:          "5x5 Lace Closure",
			Description:   "Swiss lace closure for sew-ins",
			Price:         9000,
			OriginalPrice: domain.Int64(12000),
			InStock:       true,
			Rating:        4.1,
			Images:        []string{"/images/closure.jpg"},
		},
	}
}

// Apply saves the demo catalog through saver.
func Apply(ctx context.Context, saver ProductSaver) (int, error) {
	products := Products()
	for _, p := range products {
		if _, err := saver.Save(ctx, p); err != nil {
			return 0, fmt.Errorf("save product %s: %w", p.Key, err)
		}
	}
	return len(products), nil
}
