package variant

import (
	"strings"

	"storefront/internal/domain"
)

// PrepareForSave runs the admin save rules on p in place: normalise lengths, refuse duplicates and missing base
// prices, mirror the base length price onto the product, zero the base lace and density add-ons, and rebuild
// the density matrix. A length whose incoming id no longer matches its value is a rename: matrix rows keyed by
// the old id move to the new one and an auto-derived label follows the new value. On error p may be partially
// normalised but nothing has been persisted.
func PrepareForSave(p *domain.Product) error {
	p.ID = strings.TrimSpace(p.ID)
	var aliases map[string]string
	for i := range p.Lengths {
		l := &p.Lengths[i]
		l.Value = NormalizeLengthValue(l.Value)
		oldID := strings.TrimSpace(l.ID)
		l.ID = MakeLengthID(l.Value)
		if oldID == "" || oldID == l.ID {
			continue
		}
		if aliases == nil {
			aliases = make(map[string]string)
		}
		aliases[oldID] = l.ID
		if isAutoLengthLabel(l.Label, lengthValueFromID(oldID)) {
			l.Label = autoLengthLabel(l.Value)
		}
	}

	if err := Validate(*p); err != nil {
		return err
	}

	if p.HasLengths() {
		p.Price = p.Lengths[0].Price
		p.OriginalPrice = p.Lengths[0].OriginalPrice
	}
	if len(p.LaceSizes) > 0 {
		p.LaceSizes[0].PriceMultiplier = 0
	}
	if len(p.Densities) > 0 {
		p.Densities[0].AdditionalPrice = 0
	}
	rebuildPriceMatrix(p, aliases)
	return nil
}

func lengthValueFromID(id string) string {
	lower := strings.ToLower(id)
	if strings.HasPrefix(lower, LengthIDPrefix) {
		id = id[len(LengthIDPrefix):]
	}
	return NormalizeLengthValue(id)
}

// Validate is the hard precondition for persisting a product.
func Validate(p domain.Product) error {
	verr := &domain.ValidationError{}

	if strings.Contains(p.ID, "-") {
		verr.Add("id", -1, "must not contain '-'")
	}
	if strings.TrimSpace(p.Name) == "" {
		verr.Add("name", -1, "required")
	}
	if p.HasLengths() {
		if p.Lengths[0].Price <= 0 {
			verr.Add("lengths.price", 0, "base length price required")
		}
	} else if p.Price <= 0 {
		verr.Add("price", -1, "base price required")
	}
	for i, l := range p.Lengths {
		if l.Price < 0 {
			verr.Add("lengths.price", i, "must not be negative")
		}
		if l.OriginalPrice != nil && *l.OriginalPrice < 0 {
			verr.Add("lengths.originalPrice", i, "must not be negative")
		}
	}

	report := CheckDuplicates(p)
	for _, i := range report.Lengths.Indices {
		verr.Add("lengths", i, "duplicate value")
	}
	for _, i := range report.LaceSizes.Indices {
		verr.Add("laceSizes", i, "duplicate value")
	}
	for _, i := range report.Densities.Indices {
		verr.Add("densities", i, "duplicate value")
	}
	return verr.OrNil()
}
