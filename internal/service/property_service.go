package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"zamora/internal/authz"
	"zamora/internal/models"
	"zamora/internal/redisclient"
	"zamora/internal/store"
	"zamora/internal/util"
)

const storefrontTTL = time.Minute

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// PropertyService manages tenants, their staff and the public storefront
type PropertyService struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewPropertyService creates a new property service
func NewPropertyService(store *store.Store, redis *redisclient.Client) *PropertyService {
	return &PropertyService{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// PropertyRequest creates a property; on update empty fields are left unchanged
type PropertyRequest struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Type         string `json:"type"`
	ContactPhone string `json:"contact_phone"`
}

func validPropertyType(t string) bool {
	switch t {
	case models.PropertyTypeHotel, models.PropertyTypeLodge, models.PropertyTypeRestaurant:
		return true
	}
	return false
}

func (r *PropertyRequest) apply(p *models.Property) error {
	if v := strings.TrimSpace(r.Name); v != "" {
		p.Name = v
	}
	if v := strings.ToLower(strings.TrimSpace(r.Slug)); v != "" {
		p.Slug = v
	}
	if v := strings.TrimSpace(r.Type); v != "" {
		p.Type = v
	}
	if v := strings.TrimSpace(r.ContactPhone); v != "" {
		p.ContactPhone = v
	}

	switch {
	case p.Name == "":
		return invalid("name is required")
	case !slugPattern.MatchString(p.Slug):
		return invalid("slug must be lowercase letters, digits and dashes")
	case !validPropertyType(p.Type):
		return invalid("type must be hotel, lodge or restaurant")
	}
	return nil
}

// CreateProperty registers a new tenant
func (s *PropertyService) CreateProperty(ctx context.Context, req *PropertyRequest) (*models.Property, error) {
	p := &models.Property{ID: uuid.NewString()}
	if err := req.apply(p); err != nil {
		return nil, err
	}
	if err := s.store.CreateProperty(ctx, p); err != nil {
		return nil, translate(err)
	}
	s.logger.Info("Property created", zap.String("property_id", p.ID), zap.String("slug", p.Slug))
	return p, nil
}

// GetProperty retrieves a property by ID
func (s *PropertyService) GetProperty(ctx context.Context, propertyID string) (*models.Property, error) {
	return s.store.GetProperty(ctx, propertyID)
}

// ListProperties returns every property
func (s *PropertyService) ListProperties(ctx context.Context) ([]models.Property, error) {
	return s.store.ListProperties(ctx)
}

// UpdateProperty edits a property
func (s *PropertyService) UpdateProperty(ctx context.Context, propertyID string, req *PropertyRequest) (*models.Property, error) {
	p, err := s.store.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	oldSlug := p.Slug
	if err := req.apply(p); err != nil {
		return nil, err
	}
	if err := s.store.UpdateProperty(ctx, p); err != nil {
		return nil, translate(err)
	}
	invalidateStorefront(ctx, s.redis, s.logger, oldSlug)
	invalidateStorefront(ctx, s.redis, s.logger, p.Slug)
	return p, nil
}

// AssignStaffRequest grants a user a role at a property
type AssignStaffRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

// AssignStaff grants or changes a user's role at a property
func (s *PropertyService) AssignStaff(ctx context.Context, propertyID string, req *AssignStaffRequest) (*models.StaffMember, error) {
	if !authz.StaffRole(req.Role) {
		return nil, invalid("role %q cannot be granted at a property", req.Role)
	}
	if _, err := s.store.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetProfile(ctx, req.UserID); err != nil {
		return nil, err
	}

	m := &models.StaffMember{PropertyID: propertyID, UserID: req.UserID, Role: req.Role}
	if err := s.store.UpsertStaff(ctx, m); err != nil {
		return nil, translate(err)
	}
	s.logger.Info("Staff assigned",
		zap.String("property_id", propertyID),
		zap.String("user_id", req.UserID),
		zap.String("role", req.Role))
	return m, nil
}

// SetProfileRole changes the platform role of a user
func (s *PropertyService) SetProfileRole(ctx context.Context, userID, role string) (*models.Profile, error) {
	if !authz.KnownRole(role) {
		return nil, invalid("unknown role %q", role)
	}
	if err := s.store.UpdateProfileRole(ctx, userID, role); err != nil {
		return nil, err
	}
	s.logger.Info("Profile role changed", zap.String("user_id", userID), zap.String("role", role))
	return s.store.GetProfile(ctx, userID)
}

// GetProfile returns the profile of a user
func (s *PropertyService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return s.store.GetProfile(ctx, userID)
}

// Storefront is the public view of a property
type Storefront struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Type         string `json:"type"`
	ContactPhone string `json:"contact_phone"`
}

// GetStorefront returns the public view of the property with slug
func (s *PropertyService) GetStorefront(ctx context.Context, slug string) (*Storefront, error) {
	var sf Storefront
	if s.cached(ctx, "storefront:"+slug, &sf) {
		return &sf, nil
	}

	p, err := s.store.GetPropertyBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	sf = Storefront{ID: p.ID, Name: p.Name, Slug: p.Slug, Type: p.Type, ContactPhone: p.ContactPhone}
	s.cache(ctx, "storefront:"+slug, &sf)
	return &sf, nil
}

// GetMenu returns the available menu of the property with slug, optionally one kind
func (s *PropertyService) GetMenu(ctx context.Context, slug, kind string) ([]models.MenuItem, error) {
	if kind != "" && kind != models.OrderKindFood && kind != models.OrderKindBar {
		return nil, invalid("unknown menu kind %q", kind)
	}

	key := "menu:" + slug + ":" + kind
	var menu []models.MenuItem
	if s.cached(ctx, key, &menu) {
		return menu, nil
	}

	p, err := s.store.GetPropertyBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	menu, err = s.store.ListMenu(ctx, p.ID, kind)
	if err != nil {
		return nil, err
	}
	s.cache(ctx, key, menu)
	return menu, nil
}

func (s *PropertyService) cached(ctx context.Context, key string, v any) bool {
	hit, err := s.redis.CachedJSON(ctx, key, v)
	if err != nil {
		s.logger.Warn("Storefront cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *PropertyService) cache(ctx context.Context, key string, v any) {
	if err := s.redis.CacheJSON(ctx, key, v, storefrontTTL); err != nil {
		s.logger.Warn("Storefront cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidateStorefront drops the cached storefront and every cached menu of slug
func invalidateStorefront(ctx context.Context, rc *redisclient.Client, logger *zap.Logger, slug string) {
	for _, key := range []string{"storefront:" + slug, "menu:" + slug + ":", "menu:" + slug + ":food", "menu:" + slug + ":bar"} {
		if err := rc.Invalidate(ctx, key); err != nil {
			logger.Warn("Storefront cache invalidation failed", zap.String("key", key), zap.Error(err))
		}
	}
}
