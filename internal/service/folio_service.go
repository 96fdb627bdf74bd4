package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"zamora/internal/broker"
	"zamora/internal/models"
	"zamora/internal/store"
	"zamora/internal/util"
)

// FolioService posts charges on guest folios
type FolioService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewFolioService creates a new folio service
func NewFolioService(store *store.Store, eventPublisher *broker.EventPublisher) *FolioService {
	return &FolioService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// ChargeRequest is a charge posted by staff
type ChargeRequest struct {
	Description string       `json:"description" binding:"required"`
	Amount      models.Money `json:"amount"`
	Quantity    int          `json:"quantity,omitempty"`
}

// FolioDetail is a folio with its charges
type FolioDetail struct {
	models.Folio
	Items []models.FolioItem `json:"items"`
}

func (r *ChargeRequest) charge() (store.Charge, error) {
	description := strings.TrimSpace(r.Description)
	if description == "" {
		return store.Charge{}, invalid("description is required")
	}
	if r.Amount <= 0 {
		return store.Charge{}, invalid("amount must be positive")
	}
	qty := r.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return store.Charge{}, invalid("quantity must be positive")
	}
	return store.Charge{Description: description, Quantity: qty, UnitPrice: r.Amount}, nil
}

// AddCharge posts a charge on an open folio; the folio total is recomputed
// from all its items in the same transaction.
func (s *FolioService) AddCharge(ctx context.Context, folioID string, req *ChargeRequest) (*models.Folio, *models.FolioItem, error) {
	ctx, span := util.StartSpan(ctx, "FolioService.AddCharge")
	defer span.End()

	c, err := req.charge()
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	folio, item, err := s.store.AddCharge(ctx, folioID, c)
	util.FolioChargeLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, nil, translate(err)
	}
	s.posted(ctx, folio, item)
	return folio, item, nil
}

// AddChargeToBooking posts a charge on the booking's open folio, opening one
// when the booking has none yet.
func (s *FolioService) AddChargeToBooking(ctx context.Context, bookingID string, req *ChargeRequest) (*models.Folio, *models.FolioItem, error) {
	ctx, span := util.StartSpan(ctx, "FolioService.AddChargeToBooking")
	defer span.End()

	c, err := req.charge()
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	folio, item, err := s.store.AddChargeToBooking(ctx, bookingID, c)
	util.FolioChargeLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, nil, translate(err)
	}
	s.posted(ctx, folio, item)
	return folio, item, nil
}

func (s *FolioService) posted(ctx context.Context, folio *models.Folio, item *models.FolioItem) {
	util.FolioChargesTotal.Inc()
	s.logger.Info("Folio charge posted",
		zap.String("folio_id", folio.ID),
		zap.Stringer("amount", item.TotalPrice),
		zap.Stringer("total", folio.TotalAmount))

	if err := s.eventPublisher.PublishFolioChargeAdded(ctx, folio, item); err != nil {
		s.logger.Error("Failed to publish FOLIO_CHARGE_ADDED event", zap.Error(err))
	}
}

// GetFolio retrieves a folio with its charges
func (s *FolioService) GetFolio(ctx context.Context, folioID string) (*FolioDetail, error) {
	folio, err := s.store.GetFolio(ctx, folioID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.GetFolioItems(ctx, folioID)
	if err != nil {
		return nil, err
	}
	return &FolioDetail{Folio: *folio, Items: items}, nil
}

// UpdateStatus closes, reopens or settles a folio
func (s *FolioService) UpdateStatus(ctx context.Context, folioID, status string) (*models.Folio, error) {
	if !models.FolioTransitions.Known(status) {
		return nil, invalid("unknown folio status %q", status)
	}
	folio, err := s.store.TransitionFolio(ctx, folioID, status)
	if err != nil {
		return nil, translate(err)
	}
	s.logger.Info("Folio status changed", zap.String("folio_id", folioID), zap.String("status", status))
	return folio, nil
}
