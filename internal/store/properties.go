package store

import (
	"context"
	"fmt"

	"zamora/internal/models"
)

// CreateProperty inserts a property; a taken slug yields ErrDuplicate.
func (s *Store) CreateProperty(ctx context.Context, p *models.Property) error {
	query := `
		INSERT INTO properties (id, name, slug, type, contact_phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query, p.ID, p.Name, p.Slug, p.Type, p.ContactPhone).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if uniqueViolation(err) {
		return fmt.Errorf("property slug %q: %w", p.Slug, ErrDuplicate)
	}
	return err
}

// GetProperty retrieves a property by ID
func (s *Store) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	var p models.Property
	err := s.db.GetContext(ctx, &p, "SELECT * FROM properties WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err, "property", id)
	}
	return &p, nil
}

// GetPropertyBySlug retrieves a property by its storefront slug
func (s *Store) GetPropertyBySlug(ctx context.Context, slug string) (*models.Property, error) {
	var p models.Property
	err := s.db.GetContext(ctx, &p, "SELECT * FROM properties WHERE slug = $1", slug)
	if err != nil {
		return nil, notFound(err, "property", slug)
	}
	return &p, nil
}

// ListProperties returns every property ordered by name
func (s *Store) ListProperties(ctx context.Context) ([]models.Property, error) {
	properties := []models.Property{}
	err := s.db.SelectContext(ctx, &properties, "SELECT * FROM properties ORDER BY name")
	return properties, err
}

// UpdateProperty overwrites the mutable fields of a property
func (s *Store) UpdateProperty(ctx context.Context, p *models.Property) error {
	query := `
		UPDATE properties SET name = $1, slug = $2, type = $3, contact_phone = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query, p.Name, p.Slug, p.Type, p.ContactPhone, p.ID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if uniqueViolation(err) {
		return fmt.Errorf("property slug %q: %w", p.Slug, ErrDuplicate)
	}
	return notFound(err, "property", p.ID)
}
