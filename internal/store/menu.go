package store

import (
	"context"
	"fmt"

	"zamora/internal/models"
)

// GetMenuItemsByIDs retrieves catalog items of one property by ID
func (s *Store) GetMenuItemsByIDs(ctx context.Context, propertyID string, ids []string) ([]models.MenuItem, error) {
	items := []models.MenuItem{}
	if len(ids) == 0 {
		return items, nil
	}
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM menu_items WHERE property_id = $1 AND id = ANY($2)",
		propertyID, pqStrings(ids))
	return items, err
}

// ListMenu returns the available catalog of a property, optionally one kind only
func (s *Store) ListMenu(ctx context.Context, propertyID, kind string) ([]models.MenuItem, error) {
	query := "SELECT * FROM menu_items WHERE property_id = $1 AND available"
	args := []any{propertyID}
	if kind != "" {
		query += " AND kind = $2"
		args = append(args, kind)
	}
	query += " ORDER BY name"

	items := []models.MenuItem{}
	err := s.db.SelectContext(ctx, &items, query, args...)
	return items, err
}

// ListMenuItems returns the whole catalog of a property, unavailable items included
func (s *Store) ListMenuItems(ctx context.Context, propertyID, kind string) ([]models.MenuItem, error) {
	query := "SELECT * FROM menu_items WHERE property_id = $1"
	args := []any{propertyID}
	if kind != "" {
		query += " AND kind = $2"
		args = append(args, kind)
	}
	query += " ORDER BY kind, name"

	items := []models.MenuItem{}
	err := s.db.SelectContext(ctx, &items, query, args...)
	return items, err
}

// GetMenuItem retrieves a catalog item by ID
func (s *Store) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.db.GetContext(ctx, &item, "SELECT * FROM menu_items WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err, "menu item", id)
	}
	return &item, nil
}

// CreateMenuItem inserts a catalog item
func (s *Store) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO menu_items (id, property_id, kind, name, description, image_url, ingredients,
			weight, price, base_price, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		item.ID, item.PropertyID, item.Kind, item.Name, item.Description, item.ImageURL,
		item.Ingredients, item.Weight, item.Price, item.BasePrice, item.Available)
	if err != nil {
		return fmt.Errorf("insert menu item: %w", err)
	}
	return nil
}

// UpdateMenuItem overwrites a catalog item. Orders already placed keep their
// own item snapshots and are not touched.
func (s *Store) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE menu_items
		SET name = $1, description = $2, image_url = $3, ingredients = $4, weight = $5,
			price = $6, base_price = $7, available = $8
		WHERE id = $9`,
		item.Name, item.Description, item.ImageURL, item.Ingredients, item.Weight,
		item.Price, item.BasePrice, item.Available, item.ID)
	if err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}
	return requireRow(res, "menu item", item.ID)
}

// DeleteMenuItem removes a catalog item
func (s *Store) DeleteMenuItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM menu_items WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res, "menu item", id)
}
