package pricing

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func wig() domain.Product {
	return domain.Product{
		ID:            "01J9WIG",
		Name:          "Body Wave Wig",
		Price:         25000,
		OriginalPrice: domain.Int64(30000),
		InStock:       true,
		Lengths: []domain.LengthOption{
			{ID: "length-14", Value: "14", Price: 25000, OriginalPrice: domain.Int64(30000), LaceSize: "13x4"},
			{ID: "length-18", Value: "18", Price: 30000, LaceSize: "13x6"},
		},
		LaceSizes: []domain.LaceSizeOption{
			{Value: "13x4", Label: "13x4"},
			{Value: "13x6", Label: "13x6", PriceMultiplier: 5000},
		},
		Densities: []domain.DensityOption{
			{Value: "150%", Prices: []domain.DensityPrice{
				{LengthID: "length-14", LengthValue: "14", Price: 25000},
				{LengthID: "length-18", LengthValue: "18", Price: 30000},
			}},
			{Value: "180%", AdditionalPrice: 3000},
			{Value: "200%", AdditionalPrice: 8000, Prices: []domain.DensityPrice{
				{LengthID: "length-14", LengthValue: "14", Price: 0},
				{LengthID: "length-18", LengthValue: "18", Price: 45000},
			}},
		},
	}
}

func TestCompute(t *testing.T) {
	plain := domain.Product{ID: "01J9PLAIN", Name: "Closure", Price: 25000}

	tests := []struct {
		name     string
		product  domain.Product
		sel      Selection
		price    int64
		original *int64
	}{
		{"base price, nothing selected", plain, Selection{}, 25000, nil},
		{"length and matrix density", wig(), Selection{Length: "18", Density: "200%"}, 45000, nil},
		{"lace add-on carries through original", wig(), Selection{Length: "14", LaceSize: "13x6"}, 30000, domain.Int64(35000)},
		{"length with unit suffix", wig(), Selection{Length: "18 inches"}, 30000, nil},
		{"unknown length falls back to product", wig(), Selection{Length: "40"}, 25000, domain.Int64(30000)},
		{"base density is free", wig(), Selection{Length: "18", Density: "150%"}, 30000, nil},
		{"flat density without matrix", wig(), Selection{Length: "18", Density: "180%"}, 33000, nil},
		{"unset matrix row falls back to flat", wig(), Selection{Length: "14", Density: "200%"}, 33000, domain.Int64(38000)},
		{"unknown density adds nothing", wig(), Selection{Length: "18", Density: "300%"}, 30000, nil},
		{"unknown lace adds nothing", wig(), Selection{Length: "18", LaceSize: "4x4"}, 30000, nil},
		{"everything", wig(), Selection{Length: "18", LaceSize: "13x6", Density: "200%"}, 50000, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Compute(tt.product, tt.sel)
			assert.Equal(t, tt.price, q.Price)
			assert.Equal(t, tt.original, q.OriginalPrice)
		})
	}
}

func TestCompute_MatrixNeedsResolvedLength(t *testing.T) {
	p := wig()
	q := Compute(p, Selection{Density: "200%"})
	assert.Equal(t, int64(25000+8000), q.Price)
}

func TestCompute_DoesNotAliasProduct(t *testing.T) {
	p := wig()
	q := Compute(p, Selection{Length: "14"})
	require.NotNil(t, q.OriginalPrice)
	*q.OriginalPrice = 1
	assert.Equal(t, int64(30000), *p.Lengths[0].OriginalPrice)
}

func TestDiscountPercent(t *testing.T) {
	tests := []struct {
		price    int64
		original *int64
		want     int64
	}{
		{30000, domain.Int64(35000), 14},
		{25000, domain.Int64(30000), 17},
		{100, nil, 0},
		{100, domain.Int64(0), 0},
		{100, domain.Int64(100), 0},
		{120, domain.Int64(100), 0},
		{1, domain.Int64(200), 100},
		{150, domain.Int64(200), 25},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DiscountPercent(tt.price, tt.original), "price=%d original=%v", tt.price, tt.original)
	}
}

func TestCompute_AddOnsComposeAdditively(t *testing.T) {
	f := gofakeit.New(3)
	for i := 0; i < 200; i++ {
		base := int64(f.IntRange(1000, 90000))
		lace := int64(f.IntRange(0, 20000))
		flat := int64(f.IntRange(0, 20000))
		p := domain.Product{
			ID:        "01J9RAND",
			Name:      "Random",
			Lengths:   []domain.LengthOption{{ID: "length-12", Value: "12", Price: base, OriginalPrice: domain.Int64(base + 1000)}},
			LaceSizes: []domain.LaceSizeOption{{Value: "base"}, {Value: "wide", PriceMultiplier: lace}},
			Densities: []domain.DensityOption{{Value: "150"}, {Value: "heavy", AdditionalPrice: flat}},
		}
		q := Compute(p, Selection{Length: "12", LaceSize: "wide", Density: "heavy"})
		if q.Price != base+lace+flat {
			t.Fatalf("price %d, want %d", q.Price, base+lace+flat)
		}
		if q.OriginalPrice == nil || *q.OriginalPrice != base+1000+lace+flat {
			t.Fatalf("original %v, want %d", q.OriginalPrice, base+1000+lace+flat)
		}
	}
}

func TestDefaultSelection(t *testing.T) {
	p := wig()
	assert.Equal(t, Selection{Length: "14", LaceSize: "13x4", Density: "150%"}, DefaultSelection(p))
	assert.Equal(t, Selection{}, DefaultSelection(domain.Product{}))

	next := SelectLength(p, DefaultSelection(p), "18 inches")
	assert.Equal(t, "18", next.Length)
	assert.Equal(t, "13x6", next.LaceSize)
}
