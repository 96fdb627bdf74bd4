package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"zamora/internal/broker"
	"zamora/internal/models"
	"zamora/internal/store"
	"zamora/internal/util"
)

// ServiceRequestService handles guest calls for staff
type ServiceRequestService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewServiceRequestService creates a new service request service
func NewServiceRequestService(store *store.Store, eventPublisher *broker.EventPublisher) *ServiceRequestService {
	return &ServiceRequestService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// ServiceCallRequest represents a guest call
type ServiceCallRequest struct {
	Type        string  `json:"type" binding:"required"`
	TableNumber *string `json:"table_number,omitempty"`
	RoomNumber  *string `json:"room_number,omitempty"`
	Note        string  `json:"note"`
}

// Create stores a pending request and notifies the property
func (s *ServiceRequestService) Create(ctx context.Context, propertyID, createdBy string, req *ServiceCallRequest) (*models.ServiceRequest, error) {
	if strings.TrimSpace(req.Type) == "" {
		return nil, invalid("type is required")
	}
	if req.TableNumber == nil && req.RoomNumber == nil {
		return nil, invalid("table_number or room_number is required")
	}

	property, err := s.store.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	r := &models.ServiceRequest{
		ID:          uuid.NewString(),
		PropertyID:  propertyID,
		Type:        strings.TrimSpace(req.Type),
		Status:      models.ServiceRequestStatusPending,
		TableNumber: req.TableNumber,
		RoomNumber:  req.RoomNumber,
		Note:        strings.TrimSpace(req.Note),
	}
	if createdBy != "" {
		r.CreatedBy = &createdBy
	}
	if err := s.store.CreateServiceRequest(ctx, r); err != nil {
		return nil, translate(err)
	}
	s.logger.Info("Service request created", zap.String("request_id", r.ID), zap.String("type", r.Type))

	if err := s.eventPublisher.PublishServiceRequest(ctx, models.EventTypeServiceRequestCreated, r, property.ContactPhone); err != nil {
		s.logger.Error("Failed to publish SERVICE_REQUEST_CREATED event", zap.Error(err))
	}
	return r, nil
}

// Get retrieves a request by ID
func (s *ServiceRequestService) Get(ctx context.Context, requestID string) (*models.ServiceRequest, error) {
	return s.store.GetServiceRequest(ctx, requestID)
}

// List returns the requests of a property
func (s *ServiceRequestService) List(ctx context.Context, propertyID, status string) ([]models.ServiceRequest, error) {
	if status != "" && !models.ServiceRequestTransitions.Known(status) {
		return nil, invalid("unknown service request status %q", status)
	}
	return s.store.ListServiceRequests(ctx, propertyID, status)
}

// Resolve closes a pending request
func (s *ServiceRequestService) Resolve(ctx context.Context, requestID, userID string) (*models.ServiceRequest, error) {
	r, err := s.store.ResolveServiceRequest(ctx, requestID, userID)
	if err != nil {
		return nil, translate(err)
	}
	if err := s.eventPublisher.PublishServiceRequest(ctx, models.EventTypeServiceRequestClosed, r, ""); err != nil {
		s.logger.Error("Failed to publish SERVICE_REQUEST_RESOLVED event", zap.Error(err))
	}
	return r, nil
}
