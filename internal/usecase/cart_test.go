package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cafe-agent/internal/domain"
)

func burgerItem(qty int) domain.ExtractedItem {
	return domain.ExtractedItem{Key: "burger", DisplayName: "Burger", UnitPrice: 8.99, Quantity: qty}
}

func TestMergeItems_AggregatesSameKey(t *testing.T) {
	var cart []domain.CartLine
	cart = MergeItems(cart, []domain.ExtractedItem{burgerItem(1)})
	cart = MergeItems(cart, []domain.ExtractedItem{burgerItem(1)})

	require.Len(t, cart, 1)
	require.Equal(t, "burger", cart[0].Key)
	require.Equal(t, 2, cart[0].Quantity)
	require.InDelta(t, 2*8.99, domain.CartTotal(cart), 1e-9)
}

func TestMergeItems_AppendsNewKeysInExtractionOrder(t *testing.T) {
	cart := MergeItems(nil, []domain.ExtractedItem{
		{Key: "coffee", DisplayName: "Coffee", UnitPrice: 3.49, Quantity: 1},
	})
	cart = MergeItems(cart, []domain.ExtractedItem{
		burgerItem(2),
		{Key: "fries", DisplayName: "Fries", UnitPrice: 3.99, Quantity: 1},
	})

	require.Len(t, cart, 3)
	require.Equal(t, "coffee", cart[0].Key)
	require.Equal(t, "burger", cart[1].Key)
	require.Equal(t, "fries", cart[2].Key)
}

func TestMergeItems_PreservesExistingLineOrder(t *testing.T) {
	cart := MergeItems(nil, []domain.ExtractedItem{
		{Key: "pizza", DisplayName: "Pizza", UnitPrice: 12.99, Quantity: 1},
		burgerItem(1),
	})
	cart = MergeItems(cart, []domain.ExtractedItem{burgerItem(3)})

	require.Equal(t, "pizza", cart[0].Key)
	require.Equal(t, "burger", cart[1].Key)
	require.Equal(t, 4, cart[1].Quantity)
}

func TestCartTotal_EmptyCart(t *testing.T) {
	require.Zero(t, domain.CartTotal(nil))
}
