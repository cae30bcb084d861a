package variant

import (
	"strings"

	"storefront/internal/domain"
)

// Duplicates lists the option positions whose value already appeared earlier in the same slice.
type Duplicates struct {
	Indices []int    `json:"indices"`
	Values  []string `json:"values"`
}

// Has reports whether index i was flagged.
func (d Duplicates) Has(i int) bool {
	for _, idx := range d.Indices {
		if idx == i {
			return true
		}
	}
	return false
}

// FindDuplicates flags every non-blank value that repeats an earlier one. The first occurrence is never flagged.
func FindDuplicates[T any](options []T, value func(T) string) Duplicates {
	out := Duplicates{Indices: []int{}, Values: []string{}}
	seen := make(map[string]struct{}, len(options))
	flagged := make(map[string]struct{})
	for i, opt := range options {
		v := strings.TrimSpace(value(opt))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			continue
		}
		out.Indices = append(out.Indices, i)
		if _, ok := flagged[v]; !ok {
			flagged[v] = struct{}{}
			out.Values = append(out.Values, v)
		}
	}
	return out
}

// DuplicateReport is the advisory result for all three option dimensions.
type DuplicateReport struct {
	Lengths   Duplicates `json:"lengths"`
	LaceSizes Duplicates `json:"laceSizes"`
	Densities Duplicates `json:"densities"`
}

// Empty reports whether no dimension holds a duplicate.
func (r DuplicateReport) Empty() bool {
	return len(r.Lengths.Indices) == 0 && len(r.LaceSizes.Indices) == 0 && len(r.Densities.Indices) == 0
}

// CheckDuplicates runs the guard over each dimension independently. Length values are compared after unit
// normalisation, since "14" and "14 inches" share an id.
func CheckDuplicates(p domain.Product) DuplicateReport {
	return DuplicateReport{
		Lengths:   FindDuplicates(p.Lengths, func(l domain.LengthOption) string { return NormalizeLengthValue(l.Value) }),
		LaceSizes: FindDuplicates(p.LaceSizes, func(l domain.LaceSizeOption) string { return l.Value }),
		Densities: FindDuplicates(p.Densities, func(d domain.DensityOption) string { return d.Value }),
	}
}
