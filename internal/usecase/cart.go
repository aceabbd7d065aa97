package usecase

import "cafe-agent/internal/domain"

// MergeItems folds extracted items into a cart. Quantities for existing
// keys are additive, never replaced; new keys are appended in extraction
// order; the relative order of existing lines is preserved.
func MergeItems(cart []domain.CartLine, items []domain.ExtractedItem) []domain.CartLine {
	for _, it := range items {
		merged := false
		for i := range cart {
			if cart[i].Key == it.Key {
				cart[i].Quantity += it.Quantity
				merged = true
				break
			}
		}
		if !merged {
			cart = append(cart, domain.CartLine{
				Key:         it.Key,
				DisplayName: it.DisplayName,
				UnitPrice:   it.UnitPrice,
				Quantity:    it.Quantity,
			})
		}
	}
	return cart
}
