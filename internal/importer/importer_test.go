package importer

import (
	"context"
	"strings"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/variant"
)

type stubSaver struct {
	items []domain.Product
}

func (s *stubSaver) Save(_ context.Context, p domain.Product) (*domain.Product, error) {
	if err := variant.PrepareForSave(&p); err != nil {
		return nil, err
	}
	s.items = append(s.items, p)
	return &p, nil
}

const header = "id,key,name,description,price,originalPrice,inStock,rating,images,option.kind,option.value,option.label,option.price,option.originalPrice,option.length,option.laceSize\n"

func TestCSVImporter_Run(t *testing.T) {
	csvData := header +
		`01J9BODYWAVE,body-wave,Body Wave Wig,Soft wave,1,,true,4.5,https://example.com/bw1.jpg,,,,,,,
,,,,,,,,https://example.com/bw2.jpg,length,14 inches,,25000,28000,,13x4
,,,,,,,,,length,16,,30000,,,
,,,,,,,,,lace,13x4,13x4 Lace,0,,,
,,,,,,,,,lace,13x6,13x6 Lace,5000,,,
,,,,,,,,,density,150,150%,0,,,
,,,,,,,,,density,180,180%,4000,,,
,,,,,,,,,density-price,180,,45000,,16,
01J9CLOSURE,closure,Lace Closure,,9000,,false,,,,,,,,,
`

	saver := &stubSaver{}
	imp := NewCSVImporter(strings.NewReader(csvData), saver, nil)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 || len(saver.items) != 2 {
		t.Fatalf("expected 2 products imported, got %d (%d saved)", count, len(saver.items))
	}

	wig := saver.items[0]
	if wig.ID != "01J9BODYWAVE" || wig.Key != "body-wave" || wig.Rating != 4.5 {
		t.Fatalf("unexpected product data: %+v", wig)
	}
	if len(wig.Images) != 2 {
		t.Fatalf("expected 2 images, got %v", wig.Images)
	}
	if len(wig.Lengths) != 2 || wig.Lengths[0].Value != "14" || wig.Lengths[0].ID != "length-14" {
		t.Fatalf("unexpected lengths %+v", wig.Lengths)
	}
	if wig.Lengths[0].Label != "14 inches" || wig.Lengths[0].LaceSize != "13x4" {
		t.Fatalf("unexpected first length %+v", wig.Lengths[0])
	}
	if wig.Price != 25000 || wig.OriginalPrice == nil || *wig.OriginalPrice != 28000 {
		t.Fatalf("expected base price mirrored from first length, got %d/%v", wig.Price, wig.OriginalPrice)
	}
	if len(wig.LaceSizes) != 2 || wig.LaceSizes[1].PriceMultiplier != 5000 {
		t.Fatalf("unexpected lace sizes %+v", wig.LaceSizes)
	}
	dense := wig.Densities[1]
	if len(dense.Prices) != 2 {
		t.Fatalf("expected a matrix row per length, got %+v", dense.Prices)
	}
	if dense.Prices[0].Price != 25000 || dense.Prices[1].Price != 45000 {
		t.Fatalf("expected imported matrix price kept and missing one defaulted, got %+v", dense.Prices)
	}

	closure := saver.items[1]
	if closure.InStock || closure.Price != 9000 || closure.HasLengths() {
		t.Fatalf("unexpected closure %+v", closure)
	}
}

func TestCSVImporter_HeaderWithByteOrderMark(t *testing.T) {
	csvData := "\ufeff" + header + "01J9CLOSURE,closure,Lace Closure,,9000,,true,,,,,,,,,\n"
	saver := &stubSaver{}

	count, err := NewCSVImporter(strings.NewReader(csvData), saver, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 1 || saver.items[0].ID != "01J9CLOSURE" {
		t.Fatalf("expected the id column to survive the BOM, got %d %+v", count, saver.items)
	}
}

func TestCSVImporter_Rejections(t *testing.T) {
	tests := []struct {
		name string
		rows string
		want string
	}{
		{
			name: "option before product",
			rows: `,,,,,,,,,length,14,,25000,,,`,
			want: "option row before any product",
		},
		{
			name: "unknown kind",
			rows: "01J9A,a,A,,100,,,,,,,,,,,\n,,,,,,,,,colour,red,,0,,,",
			want: "unknown option kind",
		},
		{
			name: "matrix row for missing density",
			rows: "01J9A,a,A,,100,,,,,,,,,,,\n,,,,,,,,,density-price,200,,100,,14,",
			want: "unknown density",
		},
		{
			name: "duplicate length fails save",
			rows: "01J9A,a,A,,100,,,,,,,,,,,\n,,,,,,,,,length,14,,100,,,\n,,,,,,,,,length,14 inches,,100,,,",
			want: `save product "a"`,
		},
		{
			name: "bad price",
			rows: "01J9A,a,A,,ten,,,,,,,,,,,",
			want: "price",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imp := NewCSVImporter(strings.NewReader(header+tt.rows+"\n"), &stubSaver{}, nil)
			_, err := imp.Run(context.Background())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
