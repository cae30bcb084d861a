package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/domain"
)

func values(vs ...string) []string { return vs }

func TestFindDuplicates(t *testing.T) {
	id := func(s string) string { return s }
	tests := []struct {
		name    string
		in      []string
		indices []int
		values  []string
	}{
		{"only later repeat flagged", values("14", "16", "14"), []int{2}, []string{"14"}},
		{"triple flags two", values("a", "a", "a"), []int{1, 2}, []string{"a"}},
		{"blanks ignored", values("", " ", "", "x"), []int{}, []string{}},
		{"trimmed before compare", values("13x4", " 13x4 "), []int{1}, []string{"13x4"}},
		{"no duplicates", values("150", "180", "200"), []int{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindDuplicates(tt.in, id)
			assert.Equal(t, tt.indices, got.Indices)
			assert.Equal(t, tt.values, got.Values)
		})
	}
}

func TestCheckDuplicates_PerDimension(t *testing.T) {
	p := domain.Product{
		Lengths:   []domain.LengthOption{{Value: "14"}, {Value: "16"}, {Value: "14 inches"}},
		LaceSizes: []domain.LaceSizeOption{{Value: "13x4"}, {Value: "13x6"}},
		Densities: []domain.DensityOption{{Value: "150"}, {Value: "150"}},
	}
	r := CheckDuplicates(p)
	assert.False(t, r.Empty())
	assert.True(t, r.Lengths.Has(2))
	assert.False(t, r.Lengths.Has(0))
	assert.Empty(t, r.LaceSizes.Indices)
	assert.Equal(t, []int{1}, r.Densities.Indices)

	assert.True(t, CheckDuplicates(domain.Product{}).Empty())
}
