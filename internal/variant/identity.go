// Package variant owns option identity, the density price matrix and the checks run before a product is saved.
package variant

import (
	"regexp"
	"strings"

	"storefront/internal/domain"
)

// LengthIDPrefix is prepended to every normalised length value.
const LengthIDPrefix = "length-"

var inchSuffix = regexp.MustCompile(`(?i)\s*inch(es)?\s*$`)

// NormalizeLengthValue strips surrounding whitespace and a trailing "inch"/"inches" unit.
func NormalizeLengthValue(value string) string {
	return strings.TrimSpace(inchSuffix.ReplaceAllString(strings.TrimSpace(value), ""))
}

// MakeLengthID derives the canonical id of a length option. Every caller that needs to reference a length
// goes through here; "14", "14 inches" and "14inches" all map to "length-14".
func MakeLengthID(value string) string {
	return LengthIDPrefix + NormalizeLengthValue(value)
}

// MatchesLength reports whether a matrix row refers to the length with the given canonical id.
//
// Rows written by the current schema carry the canonical id. Older rows may hold a raw id, a raw value or a
// value with a different unit suffix; those shapes are accepted case-insensitively until persisted data
// is confirmed clean.
func MatchesLength(row domain.DensityPrice, lengthID string) bool {
	if lengthID == "" {
		return false
	}
	if row.LengthID == lengthID {
		return true
	}
	if id := strings.TrimSpace(row.LengthID); id != "" {
		if strings.EqualFold(MakeLengthID(strings.TrimPrefix(strings.ToLower(id), LengthIDPrefix)), lengthID) {
			return true
		}
	}
	if v := strings.TrimSpace(row.LengthValue); v != "" {
		if strings.EqualFold(MakeLengthID(v), lengthID) {
			return true
		}
	}
	return false
}

// FindLength returns the index of the length option matching value, or -1.
func FindLength(lengths []domain.LengthOption, value string) int {
	if strings.TrimSpace(value) == "" {
		return -1
	}
	id := MakeLengthID(value)
	for i, l := range lengths {
		if l.ID == id || MakeLengthID(l.Value) == id {
			return i
		}
	}
	return -1
}

// FindLaceSize returns the index of the lace option with the given value, or -1.
func FindLaceSize(laces []domain.LaceSizeOption, value string) int {
	v := strings.TrimSpace(value)
	if v == "" {
		return -1
	}
	for i, l := range laces {
		if strings.TrimSpace(l.Value) == v {
			return i
		}
	}
	return -1
}

// FindDensity returns the index of the density option with the given value, or -1.
func FindDensity(densities []domain.DensityOption, value string) int {
	v := strings.TrimSpace(value)
	if v == "" {
		return -1
	}
	for i, d := range densities {
		if strings.TrimSpace(d.Value) == v {
			return i
		}
	}
	return -1
}
