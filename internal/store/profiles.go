package store

import (
	"context"

	"zamora/internal/models"
)

// GetProfile retrieves the profile of an auth user
func (s *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.GetContext(ctx, &p,
		"SELECT id, full_name, phone, role, property_id FROM profiles WHERE id = $1", userID)
	if err != nil {
		return nil, notFound(err, "profile", userID)
	}
	return &p, nil
}

// UpdateProfileRole sets the platform role of a profile
func (s *Store) UpdateProfileRole(ctx context.Context, userID, role string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE profiles SET role = $1 WHERE id = $2", role, userID)
	if err != nil {
		return err
	}
	return requireRow(res, "profile", userID)
}

// ListMemberships returns every property role held by a user
func (s *Store) ListMemberships(ctx context.Context, userID string) ([]models.StaffMember, error) {
	members := []models.StaffMember{}
	err := s.db.SelectContext(ctx, &members,
		"SELECT property_id, user_id, role, created_at FROM property_staff WHERE user_id = $1", userID)
	return members, err
}

// UpsertStaff grants a user a role at a property, replacing any previous role
func (s *Store) UpsertStaff(ctx context.Context, m *models.StaffMember) error {
	query := `
		INSERT INTO property_staff (property_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (property_id, user_id) DO UPDATE SET role = EXCLUDED.role
		RETURNING created_at`

	return s.db.GetContext(ctx, &m.CreatedAt, query, m.PropertyID, m.UserID, m.Role)
}

// ListStaffUserIDs returns the users holding any of roles at a property
func (s *Store) ListStaffUserIDs(ctx context.Context, propertyID string, roles []string) ([]string, error) {
	ids := []string{}
	err := s.db.SelectContext(ctx, &ids,
		"SELECT user_id FROM property_staff WHERE property_id = $1 AND role = ANY($2)",
		propertyID, pqStrings(roles))
	return ids, err
}
