package domain

// CartLine is one product+selection combination in a shopper's cart. ID is the bare product id, or
// "{productId}-{lengthValue}" when a length is selected.
type CartLine struct {
	ID               string `json:"id"`
	Name             string `json:"name,omitempty"`
	Image            string `json:"image,omitempty"`
	Quantity         int    `json:"quantity"`
	Price            int64  `json:"price"`
	OriginalPrice    *int64 `json:"originalPrice,omitempty"`
	InStock          bool   `json:"inStock"`
	SelectedLength   string `json:"selectedLength"`
	SelectedDensity  string `json:"selectedDensity"`
	SelectedLaceSize string `json:"selectedLaceSize"`
	// LastUpdated is a unix-millisecond stamp that increases on every mutation. Debugging only.
	LastUpdated int64 `json:"lastUpdated"`
}
