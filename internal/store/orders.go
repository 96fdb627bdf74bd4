package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"zamora/internal/models"
)

// CreateOrder stores the order header and its item snapshots in one transaction.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO orders (id, property_id, kind, status, table_number, room_number, booking_id,
				created_by, subtotal, service_charge, total, idempotency_key)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING created_at, updated_at`

		err := tx.QueryRowxContext(ctx, query,
			order.ID, order.PropertyID, order.Kind, order.Status, order.TableNumber, order.RoomNumber,
			order.BookingID, order.CreatedBy, order.Subtotal, order.ServiceCharge, order.Total,
			order.IdempotencyKey).
			Scan(&order.CreatedAt, &order.UpdatedAt)
		if uniqueViolation(err) {
			return fmt.Errorf("order idempotency key: %w", ErrDuplicate)
		}
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i := range items {
			item := &items[i]
			item.OrderID = order.ID
			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (id, order_id, menu_item_id, name, description, image_url,
					ingredients, weight, options, unit_price, quantity, line_total)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				item.ID, item.OrderID, item.MenuItemID, item.Name, item.Description, item.ImageURL,
				item.Ingredients, item.Weight, item.Options, item.UnitPrice, item.Quantity, item.LineTotal)
			if err != nil {
				return fmt.Errorf("insert order item %q: %w", item.Name, err)
			}
		}
		return nil
	})
}

// GetOrder retrieves an order by ID
func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err, "order", id)
	}
	return &order, nil
}

// GetOrderByIdempotencyKey retrieves the order createdBy placed at a property
// under key; nil when absent
func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, createdBy, propertyID, key string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE created_by = $1 AND property_id = $2 AND idempotency_key = $3",
		createdBy, propertyID, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderItems retrieves all items for an order
func (s *Store) GetOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY name", orderID)
	return items, err
}

// OrderFilter narrows ListOrders; empty fields match everything.
type OrderFilter struct {
	Status string
	Kind   string
}

// ListOrders returns the orders of a property, newest first
func (s *Store) ListOrders(ctx context.Context, propertyID string, f OrderFilter) ([]models.Order, error) {
	query := "SELECT * FROM orders WHERE property_id = $1"
	args := []any{propertyID}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Kind != "" {
		args = append(args, f.Kind)
		query += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders, query, args...)
	return orders, err
}

// TransitionOrder moves an order to status when the order state machine allows it.
// It returns the updated order and the status it left.
func (s *Store) TransitionOrder(ctx context.Context, orderID, status string) (*models.Order, string, error) {
	var order models.Order
	var from string
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1 FOR UPDATE", orderID); err != nil {
			return notFound(err, "order", orderID)
		}
		if !models.OrderTransitions.Allowed(order.Status, status) {
			return &TransitionError{Entity: "order", From: order.Status, To: status}
		}
		from = order.Status
		return tx.GetContext(ctx, &order,
			"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING *", status, orderID)
	})
	if err != nil {
		return nil, "", err
	}
	return &order, from, nil
}
