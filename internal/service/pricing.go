package service

import (
	"github.com/google/uuid"

	"zamora/internal/models"
)

// CartLine is one line of a cart as submitted by a client.
type CartLine struct {
	MenuItemID string         `json:"menu_item_id" binding:"required"`
	Quantity   int            `json:"quantity" binding:"required,min=1"`
	Options    map[string]any `json:"options,omitempty"`
}

// Totals are the amounts of an order header.
type Totals struct {
	Subtotal      models.Money `json:"subtotal"`
	ServiceCharge models.Money `json:"service_charge"`
	Total         models.Money `json:"total"`
}

// PriceCart sums unit price times quantity over items, filling each LineTotal.
// Bar orders add a service charge of barPercent of the subtotal rounded to the
// cent; food orders carry none.
func PriceCart(kind string, items []models.OrderItem, barPercent int64) Totals {
	var t Totals
	for i := range items {
		items[i].LineTotal = items[i].UnitPrice * models.Money(items[i].Quantity)
		t.Subtotal += items[i].LineTotal
	}
	if kind == models.OrderKindBar {
		t.ServiceCharge = t.Subtotal.Percent(barPercent)
	}
	t.Total = t.Subtotal + t.ServiceCharge
	return t
}

// SnapshotCart validates lines against the catalog and copies each catalog item
// into an order item at its live price. Every item must exist at propertyID,
// match kind and be available.
func SnapshotCart(kind, propertyID string, lines []CartLine, catalog []models.MenuItem) ([]models.OrderItem, error) {
	if len(lines) == 0 {
		return nil, invalid("cart is empty")
	}

	byID := make(map[string]*models.MenuItem, len(catalog))
	for i := range catalog {
		byID[catalog[i].ID] = &catalog[i]
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, invalid("quantity for %s must be positive", line.MenuItemID)
		}
		m, ok := byID[line.MenuItemID]
		if !ok || m.PropertyID != propertyID {
			return nil, invalid("menu item %s is not on this property's menu", line.MenuItemID)
		}
		if m.Kind != kind {
			return nil, invalid("menu item %q cannot be ordered as %s", m.Name, kind)
		}
		if !m.Available {
			return nil, invalid("menu item %q is not available", m.Name)
		}

		menuItemID := m.ID
		items = append(items, models.OrderItem{
			ID:          uuid.NewString(),
			MenuItemID:  &menuItemID,
			Name:        m.Name,
			Description: m.Description,
			ImageURL:    m.ImageURL,
			Ingredients: append([]string(nil), m.Ingredients...),
			Weight:      m.Weight,
			Options:     models.JSONMap(line.Options),
			UnitPrice:   m.LivePrice(),
			Quantity:    line.Quantity,
		})
	}
	return items, nil
}
