package variant

import (
	"strings"

	"storefront/internal/domain"
)

// NormalizeOnLoad repairs products read from storage: length values lose their unit suffix and missing
// ids are backfilled.
func NormalizeOnLoad(p *domain.Product) {
	for i := range p.Lengths {
		l := &p.Lengths[i]
		l.Value = NormalizeLengthValue(l.Value)
		if strings.TrimSpace(l.ID) == "" {
			l.ID = MakeLengthID(l.Value)
		}
	}
}

// RebuildPriceMatrix replaces every density's matrix with exactly one row per current length. Prices already
// entered for a surviving length are carried over unchanged; new lengths default to their own base price.
// The base density always mirrors the length prices so it never adds to the total.
func RebuildPriceMatrix(p *domain.Product) {
	rebuildPriceMatrix(p, nil)
}

// rebuildPriceMatrix treats aliases[oldID] = newID as the same length when looking up prior rows.
func rebuildPriceMatrix(p *domain.Product, aliases map[string]string) {
	for di := range p.Densities {
		d := &p.Densities[di]
		prior := d.Prices
		rows := make([]domain.DensityPrice, 0, len(p.Lengths))
		for _, l := range p.Lengths {
			row := domain.DensityPrice{LengthID: l.ID, LengthValue: l.Value, Price: l.Price}
			if di > 0 {
				if price, ok := priorPrice(prior, l.ID, aliases); ok {
					row.Price = price
				}
			}
			rows = append(rows, row)
		}
		if len(rows) == 0 {
			rows = nil
		}
		d.Prices = rows
	}
}

func priorPrice(rows []domain.DensityPrice, lengthID string, aliases map[string]string) (int64, bool) {
	for _, r := range rows {
		if newID, ok := aliases[r.LengthID]; ok {
			if newID == lengthID {
				return r.Price, true
			}
			continue
		}
		if MatchesLength(r, lengthID) {
			return r.Price, true
		}
	}
	return 0, false
}

// AddLength appends a length option, deriving its id, and rebuilds the matrix.
func AddLength(p *domain.Product, l domain.LengthOption) {
	l.Value = NormalizeLengthValue(l.Value)
	l.ID = MakeLengthID(l.Value)
	if strings.TrimSpace(l.Label) == "" {
		l.Label = autoLengthLabel(l.Value)
	}
	p.Lengths = append(p.Lengths, l)
	RebuildPriceMatrix(p)
}

// RemoveLength drops the length at index i and rebuilds the matrix.
func RemoveLength(p *domain.Product, i int) {
	if i < 0 || i >= len(p.Lengths) {
		return
	}
	p.Lengths = append(p.Lengths[:i:i], p.Lengths[i+1:]...)
	RebuildPriceMatrix(p)
}

// RenameLength changes the value of the length at index i. Its id is recomputed, an auto-derived label follows
// the new value, and matrix rows for the old id move to the new one.
func RenameLength(p *domain.Product, i int, value string) {
	if i < 0 || i >= len(p.Lengths) {
		return
	}
	l := &p.Lengths[i]
	oldID := l.ID
	oldValue := l.Value
	l.Value = NormalizeLengthValue(value)
	l.ID = MakeLengthID(l.Value)
	if isAutoLengthLabel(l.Label, oldValue) {
		l.Label = autoLengthLabel(l.Value)
	}
	var aliases map[string]string
	if oldID != "" && oldID != l.ID {
		aliases = map[string]string{oldID: l.ID}
	}
	rebuildPriceMatrix(p, aliases)
}

// RemoveDensity drops the density at index i. Removing the base promotes the next density and zeroes its price.
func RemoveDensity(p *domain.Product, i int) {
	if i < 0 || i >= len(p.Densities) {
		return
	}
	p.Densities = append(p.Densities[:i:i], p.Densities[i+1:]...)
	if i == 0 && len(p.Densities) > 0 {
		p.Densities[0].AdditionalPrice = 0
	}
	RebuildPriceMatrix(p)
}

func autoLengthLabel(value string) string {
	if value == "" {
		return ""
	}
	return value + " inches"
}

func isAutoLengthLabel(label, value string) bool {
	label = strings.TrimSpace(label)
	return label == "" || label == value || label == autoLengthLabel(value)
}
