package variant

import (
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"

	"storefront/internal/domain"
)

func TestMakeLengthID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"14", "length-14"},
		{"14 inches", "length-14"},
		{"14inches", "length-14"},
		{" 14 Inch ", "length-14"},
		{"14INCHES", "length-14"},
		{"", "length-"},
		{"bob", "length-bob"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MakeLengthID(tt.in), "input %q", tt.in)
	}
}

func TestMakeLengthID_UnitSpellingsCollapse(t *testing.T) {
	f := gofakeit.New(7)
	suffixes := []string{"", " inches", "inches", " inch", "inch", " INCHES", "  Inches  "}
	for i := 0; i < 200; i++ {
		n := f.IntRange(6, 40)
		want := fmt.Sprintf("length-%d", n)
		for _, s := range suffixes {
			in := fmt.Sprintf("%d%s", n, s)
			if got := MakeLengthID(in); got != want {
				t.Fatalf("MakeLengthID(%q) = %q, want %q", in, got, want)
			}
			if MakeLengthID(NormalizeLengthValue(in)) != want {
				t.Fatalf("normalising %q twice changed its id", in)
			}
		}
	}
}

func TestMatchesLength_LegacyShapes(t *testing.T) {
	id := MakeLengthID("16")
	tests := []struct {
		name string
		row  domain.DensityPrice
		want bool
	}{
		{"canonical", domain.DensityPrice{LengthID: "length-16"}, true},
		{"raw id with unit", domain.DensityPrice{LengthID: "length-16 inches"}, true},
		{"upper case id", domain.DensityPrice{LengthID: "LENGTH-16"}, true},
		{"value only", domain.DensityPrice{LengthValue: "16 Inches"}, true},
		{"other length", domain.DensityPrice{LengthID: "length-18", LengthValue: "18"}, false},
		{"empty row", domain.DensityPrice{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesLength(tt.row, id))
		})
	}
	assert.False(t, MatchesLength(domain.DensityPrice{LengthValue: "16"}, ""))
	assert.False(t, MatchesLength(domain.DensityPrice{}, ""), "an unresolved length never matches an empty row")
}

func TestFindOptions(t *testing.T) {
	lengths := []domain.LengthOption{{ID: "length-14", Value: "14"}, {Value: "16"}}
	assert.Equal(t, 0, FindLength(lengths, "14 inches"))
	assert.Equal(t, 1, FindLength(lengths, "16"))
	assert.Equal(t, -1, FindLength(lengths, "18"))
	assert.Equal(t, -1, FindLength(lengths, " "))

	laces := []domain.LaceSizeOption{{Value: "13x4"}, {Value: "13x6"}}
	assert.Equal(t, 1, FindLaceSize(laces, " 13x6 "))
	assert.Equal(t, -1, FindLaceSize(laces, ""))

	densities := []domain.DensityOption{{Value: "150"}, {Value: "180"}}
	assert.Equal(t, 1, FindDensity(densities, "180"))
	assert.Equal(t, -1, FindDensity(densities, "200"))
}
