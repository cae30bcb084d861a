// Package cart holds a shopper's cart lines and the mutations allowed on them.
package cart

import (
	"strings"

	"storefront/internal/variant"
)

// LineID builds the cart line key. A product without a selected length is keyed by its bare id.
func LineID(productID, length string) string {
	v := variant.NormalizeLengthValue(length)
	if v == "" {
		return productID
	}
	return productID + "-" + v
}

// BaseID returns the product part of a cart line id: everything before the first '-'.
func BaseID(lineID string) string {
	if i := strings.IndexByte(lineID, '-'); i >= 0 {
		return lineID[:i]
	}
	return lineID
}
