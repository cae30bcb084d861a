package pricing

import (
	"storefront/internal/domain"
	"storefront/internal/variant"
)

type densityInput struct {
	index   int
	density domain.DensityOption
	base    base
}

// densityResolver returns the density add-on and whether it handled the input. Resolvers never fail.
type densityResolver func(in densityInput) (int64, bool)

// densityResolvers are tried in order; the last one always resolves.
var densityResolvers = []densityResolver{
	baseDensity,
	matrixDensity,
	flatDensity,
}

// baseDensity: the first density is the no-charge default.
func baseDensity(in densityInput) (int64, bool) {
	if in.index == 0 {
		return 0, true
	}
	return 0, false
}

// matrixDensity stores absolute prices per length; the add-on is the delta over the selected length's price so it
// composes with the lace add-on. Rows without a positive price are treated as unset.
func matrixDensity(in densityInput) (int64, bool) {
	if in.base.length == nil || len(in.density.Prices) == 0 {
		return 0, false
	}
	lengthID := variant.MakeLengthID(in.base.length.Value)
	for _, row := range in.density.Prices {
		if row.Price <= 0 {
			continue
		}
		if variant.MatchesLength(row, lengthID) {
			return row.Price - in.base.length.Price, true
		}
	}
	return 0, false
}

func flatDensity(in densityInput) (int64, bool) {
	return in.density.AdditionalPrice, true
}
