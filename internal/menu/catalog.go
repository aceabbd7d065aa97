package menu

import (
	"errors"
	"strings"

	"cafe-agent/internal/domain"
)

// Catalog is the immutable menu loaded at startup. Declared order is
// preserved: the fallback extractor scans keys in this order, so it is
// part of the observable behavior, not a presentation detail.
type Catalog struct {
	keys  []string
	items map[string]domain.MenuItem
}

// New builds a Catalog from items in declared order. Keys are canonical
// lowercase and must be unique.
func New(items []domain.MenuItem) (*Catalog, error) {
	if len(items) == 0 {
		return nil, errors.New("menu: catalog must not be empty")
	}
	c := &Catalog{items: make(map[string]domain.MenuItem, len(items))}
	for _, it := range items {
		key := strings.ToLower(strings.TrimSpace(it.Key))
		if key == "" {
			return nil, errors.New("menu: item key must not be empty")
		}
		if _, exists := c.items[key]; exists {
			return nil, errors.New("menu: duplicate item key " + key)
		}
		it.Key = key
		c.items[key] = it
		c.keys = append(c.keys, key)
	}
	return c, nil
}

// Default returns the Twilight Cafe menu.
func Default() *Catalog {
	c, err := New([]domain.MenuItem{
		{Key: "burger", DisplayName: "Burger", UnitPrice: 8.99},
		{Key: "cheeseburger", DisplayName: "Cheeseburger", UnitPrice: 9.99},
		{Key: "pizza", DisplayName: "Pizza", UnitPrice: 12.99},
		{Key: "pasta", DisplayName: "Pasta", UnitPrice: 10.99},
		{Key: "salad", DisplayName: "Salad", UnitPrice: 7.99},
		{Key: "fries", DisplayName: "Fries", UnitPrice: 3.99},
		{Key: "chicken wings", DisplayName: "Chicken Wings", UnitPrice: 11.99},
		{Key: "sandwich", DisplayName: "Sandwich", UnitPrice: 6.99},
		{Key: "soda", DisplayName: "Soda", UnitPrice: 2.99},
		{Key: "water", DisplayName: "Water", UnitPrice: 1.99},
		{Key: "coffee", DisplayName: "Coffee", UnitPrice: 3.49},
		{Key: "milkshake", DisplayName: "Milkshake", UnitPrice: 5.99},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the item for a key, case-insensitively.
func (c *Catalog) Lookup(key string) (domain.MenuItem, bool) {
	it, ok := c.items[strings.ToLower(strings.TrimSpace(key))]
	return it, ok
}

// Keys returns the menu keys in declared order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Items returns all items in declared order.
func (c *Catalog) Items() []domain.MenuItem {
	out := make([]domain.MenuItem, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.items[k])
	}
	return out
}
