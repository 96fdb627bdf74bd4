package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"zamora/internal/broker"
	"zamora/internal/models"
	"zamora/internal/redisclient"
	"zamora/internal/store"
	"zamora/internal/util"
)

// InventoryService manages stock levels and restock triage
type InventoryService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(store *store.Store, redis *redisclient.Client, eventPublisher *broker.EventPublisher) *InventoryService {
	return &InventoryService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// InventoryItemRequest creates an item; on update nil fields are left unchanged
type InventoryItemRequest struct {
	Name        *string       `json:"name"`
	Unit        *string       `json:"unit"`
	Quantity    *float64      `json:"quantity"`
	MinQuantity *float64      `json:"min_quantity"`
	CostPerUnit *models.Money `json:"cost_per_unit"`
}

func (r *InventoryItemRequest) apply(item *models.InventoryItem) error {
	if r.Name != nil {
		item.Name = strings.TrimSpace(*r.Name)
	}
	if r.Unit != nil {
		item.Unit = strings.TrimSpace(*r.Unit)
	}
	if r.Quantity != nil {
		item.Quantity = *r.Quantity
	}
	if r.MinQuantity != nil {
		item.MinQuantity = *r.MinQuantity
	}
	if r.CostPerUnit != nil {
		item.CostPerUnit = *r.CostPerUnit
	}

	switch {
	case item.Name == "":
		return invalid("name is required")
	case item.Quantity < 0:
		return invalid("quantity cannot be negative")
	case item.MinQuantity < 0:
		return invalid("min_quantity cannot be negative")
	case item.CostPerUnit < 0:
		return invalid("cost_per_unit cannot be negative")
	}
	if item.Unit == "" {
		item.Unit = "pcs"
	}
	return nil
}

// ListItems returns every inventory item of a property
func (s *InventoryService) ListItems(ctx context.Context, propertyID string) ([]models.InventoryItem, error) {
	return s.store.ListInventory(ctx, propertyID)
}

// GetItem retrieves an inventory item by ID
func (s *InventoryService) GetItem(ctx context.Context, itemID string) (*models.InventoryItem, error) {
	return s.store.GetInventoryItem(ctx, itemID)
}

// CreateItem adds an inventory item
func (s *InventoryService) CreateItem(ctx context.Context, propertyID string, req *InventoryItemRequest) (*models.InventoryItem, error) {
	item := &models.InventoryItem{ID: uuid.NewString(), PropertyID: propertyID}
	if err := req.apply(item); err != nil {
		return nil, err
	}
	if err := s.store.CreateInventoryItem(ctx, item); err != nil {
		return nil, translate(err)
	}
	s.checkThreshold(ctx, item)
	return item, nil
}

// UpdateItem edits an item's stock figures
func (s *InventoryService) UpdateItem(ctx context.Context, itemID string, req *InventoryItemRequest) (*models.InventoryItem, error) {
	item, err := s.store.GetInventoryItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := req.apply(item); err != nil {
		return nil, err
	}
	if err := s.store.UpdateInventoryItem(ctx, item); err != nil {
		return nil, translate(err)
	}
	s.logger.Info("Inventory item updated",
		zap.String("item_id", item.ID),
		zap.Float64("quantity", item.Quantity),
		zap.Float64("min_quantity", item.MinQuantity))
	s.checkThreshold(ctx, item)
	return item, nil
}

// DeleteItem removes an inventory item
func (s *InventoryService) DeleteItem(ctx context.Context, itemID string) error {
	if err := s.store.DeleteInventoryItem(ctx, itemID); err != nil {
		return err
	}
	if err := s.redis.ClearLowStock(ctx, itemID); err != nil {
		s.logger.Warn("Failed to clear low-stock mark", zap.String("item_id", itemID), zap.Error(err))
	}
	return nil
}

// checkThreshold publishes LOW_STOCK_DETECTED the first time an item drops to
// its threshold and re-arms once it is restocked above it.
func (s *InventoryService) checkThreshold(ctx context.Context, item *models.InventoryItem) {
	urgency, low := Urgency(*item)
	if !low {
		if err := s.redis.ClearLowStock(ctx, item.ID); err != nil {
			s.logger.Warn("Failed to clear low-stock mark", zap.String("item_id", item.ID), zap.Error(err))
		}
		return
	}

	first, err := s.redis.MarkLowStock(ctx, item.ID)
	if err != nil {
		s.logger.Warn("Failed to mark low stock", zap.String("item_id", item.ID), zap.Error(err))
		return
	}
	if !first {
		return
	}

	shortage := item.MinQuantity - item.Quantity
	s.logger.Info("Low stock detected",
		zap.String("item_id", item.ID),
		zap.String("name", item.Name),
		zap.String("urgency", urgency))
	if err := s.eventPublisher.PublishLowStockDetected(ctx, item, urgency, shortage); err != nil {
		s.logger.Error("Failed to publish LOW_STOCK_DETECTED event", zap.Error(err))
	}
}

// LowStock returns the restock list of a property
func (s *InventoryService) LowStock(ctx context.Context, propertyID string) ([]LowStockItem, error) {
	items, err := s.store.ListInventory(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	low := TriageLowStock(items)
	recordLowStock(propertyID, low)
	return low, nil
}

// Export renders the inventory workbook of a property
func (s *InventoryService) Export(ctx context.Context, propertyID string) ([]byte, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.Export")
	defer span.End()

	items, err := s.store.ListInventory(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return BuildInventoryWorkbook(items, TriageLowStock(items))
}

func recordLowStock(propertyID string, low []LowStockItem) {
	counts := map[string]int{UrgencyCritical: 0, UrgencyHigh: 0, UrgencyMedium: 0}
	for _, it := range low {
		counts[it.Urgency]++
	}
	for urgency, n := range counts {
		util.LowStockItems.WithLabelValues(propertyID, urgency).Set(float64(n))
	}
}
