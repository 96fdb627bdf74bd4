package store

import (
	"context"

	"zamora/internal/models"
)

// ListInventory returns every inventory item of a property
func (s *Store) ListInventory(ctx context.Context, propertyID string) ([]models.InventoryItem, error) {
	items := []models.InventoryItem{}
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM inventory_items WHERE property_id = $1 ORDER BY name", propertyID)
	return items, err
}

// GetInventoryItem retrieves an inventory item by ID
func (s *Store) GetInventoryItem(ctx context.Context, id string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.db.GetContext(ctx, &item, "SELECT * FROM inventory_items WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err, "inventory item", id)
	}
	return &item, nil
}

// CreateInventoryItem inserts an inventory item
func (s *Store) CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (id, property_id, name, unit, quantity, min_quantity, cost_per_unit)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING updated_at`

	return s.db.GetContext(ctx, &item.UpdatedAt, query,
		item.ID, item.PropertyID, item.Name, item.Unit, item.Quantity, item.MinQuantity, item.CostPerUnit)
}

// UpdateInventoryItem overwrites the stock figures of an item
func (s *Store) UpdateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	query := `
		UPDATE inventory_items
		SET name = $1, unit = $2, quantity = $3, min_quantity = $4, cost_per_unit = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`

	err := s.db.GetContext(ctx, &item.UpdatedAt, query,
		item.Name, item.Unit, item.Quantity, item.MinQuantity, item.CostPerUnit, item.ID)
	return notFound(err, "inventory item", item.ID)
}

// DeleteInventoryItem removes an inventory item
func (s *Store) DeleteInventoryItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM inventory_items WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res, "inventory item", id)
}
