package domain

// MenuItem is one orderable item in the static catalog.
type MenuItem struct {
	Key         string  `json:"key"`
	DisplayName string  `json:"name"`
	UnitPrice   float64 `json:"price"`
}

// CartLine is one menu item's aggregated quantity within a session cart.
// A cart never holds two lines for the same key.
type CartLine struct {
	Key         string  `json:"key"`
	DisplayName string  `json:"name"`
	UnitPrice   float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// ExtractedItem is a transient {item, quantity} tuple produced by an
// extractor and consumed immediately by the cart merge.
type ExtractedItem struct {
	Key         string  `json:"key"`
	DisplayName string  `json:"name"`
	UnitPrice   float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// CartTotal recomputes the cart total from its lines.
func CartTotal(lines []CartLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}
