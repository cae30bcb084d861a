package seed

import (
	"context"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/variant"
)

type stubSaver struct {
	saved []domain.Product
}

func (s *stubSaver) Save(_ context.Context, p domain.Product) (*domain.Product, error) {
	if err := variant.PrepareForSave(&p); err != nil {
		return nil, err
	}
	s.saved = append(s.saved, p)
	return &p, nil
}

func TestApply_DemoCatalogPassesSaveRules(t *testing.T) {
	saver := &stubSaver{}
	n, err := Apply(context.Background(), saver)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if n != len(Products()) || len(saver.saved) != n {
		t.Fatalf("expected %d products saved, got %d", len(Products()), len(saver.saved))
	}

	wig := saver.saved[0]
	if wig.Price != 25000 {
		t.Fatalf("expected base length price mirrored, got %d", wig.Price)
	}
	rows := wig.Densities[1].Prices
	if len(rows) != 3 || rows[0].Price != 25000 || rows[1].Price != 36000 || rows[2].Price != 45000 {
		t.Fatalf("unexpected matrix %+v", rows)
	}
}
