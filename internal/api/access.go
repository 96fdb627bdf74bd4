package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"zamora/internal/auth"
	"zamora/internal/authz"
	"zamora/internal/service"
	"zamora/internal/util"
)

// statusRequest is the body of every status transition endpoint
type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// authorize asks the policy whether the caller may act on res and writes 403
// when not. Handlers return immediately on false.
func (h *Handler) authorize(c *gin.Context, res authz.Resource, action string) bool {
	caller, ok := auth.CallerFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return false
	}

	d := authz.Decide(caller, res, action)
	if !d.Allowed {
		util.AuthFailuresTotal.WithLabelValues("forbidden").Inc()
		h.logger.Debug("Access denied",
			zap.String("user_id", caller.UserID),
			zap.String("kind", res.Kind),
			zap.String("property_id", res.PropertyID),
			zap.String("action", action),
			zap.String("reason", d.Reason))
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return false
	}
	return true
}

// requirePlatform guards the admin console
func (h *Handler) requirePlatform() gin.HandlerFunc {
	return func(c *gin.Context) {
		action := authz.ActionRead
		switch c.Request.Method {
		case http.MethodPost:
			action = authz.ActionCreate
		case http.MethodPut, http.MethodPatch:
			action = authz.ActionUpdate
		case http.MethodDelete:
			action = authz.ActionDelete
		}
		if !h.authorize(c, authz.Resource{Kind: authz.KindPlatform}, action) {
			return
		}
		c.Next()
	}
}

func callerOf(c *gin.Context) authz.Caller {
	caller, _ := auth.CallerFrom(c)
	return caller
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// bindJSON decodes the body and writes 400 on failure
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// respondError maps service error classes to status codes. Unclassified
// errors are logged and answered with a generic 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		h.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
