package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"zamora/internal/models"
)

// CreateServiceRequest inserts a guest request
func (s *Store) CreateServiceRequest(ctx context.Context, r *models.ServiceRequest) error {
	query := `
		INSERT INTO service_requests (id, property_id, type, status, table_number, room_number, note, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	return s.db.GetContext(ctx, &r.CreatedAt, query,
		r.ID, r.PropertyID, r.Type, r.Status, r.TableNumber, r.RoomNumber, r.Note, r.CreatedBy)
}

// GetServiceRequest retrieves a request by ID
func (s *Store) GetServiceRequest(ctx context.Context, id string) (*models.ServiceRequest, error) {
	var r models.ServiceRequest
	err := s.db.GetContext(ctx, &r, "SELECT * FROM service_requests WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err, "service request", id)
	}
	return &r, nil
}

// ListServiceRequests returns the requests of a property, optionally by status
func (s *Store) ListServiceRequests(ctx context.Context, propertyID, status string) ([]models.ServiceRequest, error) {
	query := "SELECT * FROM service_requests WHERE property_id = $1"
	args := []any{propertyID}
	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}
	query += " ORDER BY created_at"

	requests := []models.ServiceRequest{}
	err := s.db.SelectContext(ctx, &requests, query, args...)
	return requests, err
}

// ResolveServiceRequest marks a pending request resolved by userID
func (s *Store) ResolveServiceRequest(ctx context.Context, id, userID string) (*models.ServiceRequest, error) {
	var r models.ServiceRequest
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &r, "SELECT * FROM service_requests WHERE id = $1 FOR UPDATE", id); err != nil {
			return notFound(err, "service request", id)
		}
		if !models.ServiceRequestTransitions.Allowed(r.Status, models.ServiceRequestStatusResolved) {
			return &TransitionError{Entity: "service request", From: r.Status, To: models.ServiceRequestStatusResolved}
		}
		return tx.GetContext(ctx, &r, `
			UPDATE service_requests SET status = $1, resolved_by = $2, resolved_at = NOW()
			WHERE id = $3 RETURNING *`,
			models.ServiceRequestStatusResolved, userID, id)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}
