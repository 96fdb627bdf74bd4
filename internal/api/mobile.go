package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"zamora/internal/authz"
	"zamora/internal/models"
	"zamora/internal/service"
)

func (h *Handler) placeFoodOrder(c *gin.Context) {
	h.placeOrder(c, models.OrderKindFood)
}

func (h *Handler) placeBarOrder(c *gin.Context) {
	h.placeOrder(c, models.OrderKindBar)
}

func (h *Handler) placeOrder(c *gin.Context, kind string) {
	propertyID := c.Param("propertyId")
	if !h.authorize(c, authz.Resource{Kind: authz.OrderKind(kind), PropertyID: propertyID}, authz.ActionCreate) {
		return
	}

	var req service.PlaceOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.svc.Orders.PlaceOrder(c.Request.Context(), propertyID, kind, callerOf(c).UserID,
		c.GetHeader("Idempotency-Key"), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) createServiceRequest(c *gin.Context) {
	propertyID := c.Param("propertyId")
	if !h.authorize(c, authz.Resource{Kind: authz.KindServiceRequest, PropertyID: propertyID}, authz.ActionCreate) {
		return
	}

	var req service.ServiceCallRequest
	if !bindJSON(c, &req) {
		return
	}
	sr, err := h.svc.Requests.Create(c.Request.Context(), propertyID, callerOf(c).UserID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sr)
}

// me returns the caller as the policy sees them, with the profile when one exists
func (h *Handler) me(c *gin.Context) {
	caller := callerOf(c)

	resp := gin.H{
		"user_id":     caller.UserID,
		"role":        caller.Role,
		"memberships": caller.Memberships,
	}
	if caller.PropertyID != "" {
		resp["property_id"] = caller.PropertyID
	}

	profile, err := h.svc.Properties.GetProfile(c.Request.Context(), caller.UserID)
	switch {
	case err == nil:
		resp["profile"] = profile
	case !errors.Is(err, service.ErrNotFound):
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) subscribePush(c *gin.Context) {
	var req service.SubscribeRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.svc.Push.Subscribe(c.Request.Context(), callerOf(c).UserID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}
