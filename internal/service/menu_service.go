package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"zamora/internal/models"
	"zamora/internal/redisclient"
	"zamora/internal/store"
	"zamora/internal/util"
)

// MenuService manages the food and bar catalog of a property
type MenuService struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewMenuService creates a new menu service
func NewMenuService(store *store.Store, redis *redisclient.Client) *MenuService {
	return &MenuService{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// MenuItemRequest creates a catalog item; on update nil fields are left
// unchanged. Kind is fixed once the item exists. ClearPrice drops the explicit
// price so the base price applies again.
type MenuItemRequest struct {
	Kind        *string       `json:"kind"`
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	ImageURL    *string       `json:"image_url"`
	Ingredients []string      `json:"ingredients"`
	Weight      *string       `json:"weight"`
	Price       *models.Money `json:"price"`
	ClearPrice  bool          `json:"clear_price"`
	BasePrice   *models.Money `json:"base_price"`
	Available   *bool         `json:"available"`
}

func (r *MenuItemRequest) apply(item *models.MenuItem, creating bool) error {
	if r.Kind != nil {
		kind := strings.TrimSpace(*r.Kind)
		if !creating && kind != item.Kind {
			return invalid("kind cannot be changed")
		}
		item.Kind = kind
	}
	if r.Name != nil {
		item.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		item.Description = strings.TrimSpace(*r.Description)
	}
	if r.ImageURL != nil {
		item.ImageURL = strings.TrimSpace(*r.ImageURL)
	}
	if r.Ingredients != nil {
		item.Ingredients = append([]string{}, r.Ingredients...)
	}
	if r.Weight != nil {
		item.Weight = strings.TrimSpace(*r.Weight)
	}
	switch {
	case r.ClearPrice:
		item.Price = nil
	case r.Price != nil:
		price := *r.Price
		item.Price = &price
	}
	if r.BasePrice != nil {
		item.BasePrice = *r.BasePrice
	}
	if r.Available != nil {
		item.Available = *r.Available
	}

	switch {
	case item.Kind != models.OrderKindFood && item.Kind != models.OrderKindBar:
		return invalid("kind must be food or bar")
	case item.Name == "":
		return invalid("name is required")
	case item.BasePrice < 0:
		return invalid("base_price cannot be negative")
	case item.Price != nil && *item.Price < 0:
		return invalid("price cannot be negative")
	}
	if item.Ingredients == nil {
		item.Ingredients = []string{}
	}
	return nil
}

// ListItems returns the whole catalog of a property, optionally one kind
func (s *MenuService) ListItems(ctx context.Context, propertyID, kind string) ([]models.MenuItem, error) {
	if kind != "" && kind != models.OrderKindFood && kind != models.OrderKindBar {
		return nil, invalid("unknown menu kind %q", kind)
	}
	return s.store.ListMenuItems(ctx, propertyID, kind)
}

// GetItem retrieves a catalog item by ID
func (s *MenuService) GetItem(ctx context.Context, itemID string) (*models.MenuItem, error) {
	return s.store.GetMenuItem(ctx, itemID)
}

// CreateItem adds an item to the catalog. New items are available unless the
// request says otherwise.
func (s *MenuService) CreateItem(ctx context.Context, propertyID string, req *MenuItemRequest) (*models.MenuItem, error) {
	item := &models.MenuItem{ID: uuid.NewString(), PropertyID: propertyID, Available: true}
	if err := req.apply(item, true); err != nil {
		return nil, err
	}
	if err := s.store.CreateMenuItem(ctx, item); err != nil {
		return nil, translate(err)
	}
	s.logger.Info("Menu item created",
		zap.String("menu_item_id", item.ID),
		zap.String("property_id", propertyID),
		zap.String("kind", item.Kind))
	s.invalidate(ctx, propertyID)
	return item, nil
}

// UpdateItem edits a catalog item. Placed orders keep the prices they were
// snapshotted with.
func (s *MenuService) UpdateItem(ctx context.Context, itemID string, req *MenuItemRequest) (*models.MenuItem, error) {
	item, err := s.store.GetMenuItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := req.apply(item, false); err != nil {
		return nil, err
	}
	if err := s.store.UpdateMenuItem(ctx, item); err != nil {
		return nil, translate(err)
	}
	s.logger.Info("Menu item updated",
		zap.String("menu_item_id", item.ID),
		zap.Stringer("live_price", item.LivePrice()),
		zap.Bool("available", item.Available))
	s.invalidate(ctx, item.PropertyID)
	return item, nil
}

// DeleteItem removes a catalog item
func (s *MenuService) DeleteItem(ctx context.Context, itemID string) error {
	item, err := s.store.GetMenuItem(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteMenuItem(ctx, itemID); err != nil {
		return err
	}
	s.logger.Info("Menu item deleted", zap.String("menu_item_id", itemID))
	s.invalidate(ctx, item.PropertyID)
	return nil
}

func (s *MenuService) invalidate(ctx context.Context, propertyID string) {
	p, err := s.store.GetProperty(ctx, propertyID)
	if err != nil {
		s.logger.Warn("Menu cache invalidation skipped", zap.String("property_id", propertyID), zap.Error(err))
		return
	}
	invalidateStorefront(ctx, s.redis, s.logger, p.Slug)
}
