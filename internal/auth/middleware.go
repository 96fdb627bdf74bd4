package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"zamora/internal/authz"
	"zamora/internal/models"
	"zamora/internal/store"
	"zamora/internal/util"
)

const callerKey = "zamora.caller"

// ProfileSource loads the profile and memberships behind a token subject.
// *store.Store implements it.
type ProfileSource interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	ListMemberships(ctx context.Context, userID string) ([]models.StaffMember, error)
}

// Authenticator turns a request into an authz.Caller.
type Authenticator struct {
	verifier   *Verifier
	profiles   ProfileSource
	cookieName string
	logger     *zap.Logger
}

// NewAuthenticator creates an authenticator
func NewAuthenticator(verifier *Verifier, profiles ProfileSource, cookieName string, logger *zap.Logger) *Authenticator {
	return &Authenticator{verifier: verifier, profiles: profiles, cookieName: cookieName, logger: logger}
}

// Resolve builds the caller for a verified user. A user without a profile row
// yet is treated as a guest.
func (a *Authenticator) Resolve(ctx context.Context, userID string) (authz.Caller, error) {
	caller := authz.Caller{UserID: userID, Role: authz.RoleGuest, Memberships: map[string]string{}}

	profile, err := a.profiles.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return caller, nil
	case err != nil:
		return authz.Caller{}, err
	}
	if profile.Role != "" {
		caller.Role = profile.Role
	}
	if profile.PropertyID != nil {
		caller.PropertyID = *profile.PropertyID
	}

	members, err := a.profiles.ListMemberships(ctx, userID)
	if err != nil {
		return authz.Caller{}, err
	}
	for _, m := range members {
		caller.Memberships[m.PropertyID] = m.Role
	}
	return caller, nil
}

// Middleware rejects requests without a valid token with 401 and stores the
// resolved caller on the context.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := ExtractToken(c.Request, a.cookieName)
		if err != nil {
			util.AuthFailuresTotal.WithLabelValues("missing_token").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := a.verifier.Verify(token)
		if err != nil {
			util.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()
			a.logger.Debug("token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		caller, err := a.Resolve(c.Request.Context(), claims.Subject)
		if err != nil {
			a.logger.Error("failed to resolve caller", zap.String("user_id", claims.Subject), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(callerKey, caller)
		c.Next()
	}
}

// CallerFrom returns the caller stored by Middleware.
func CallerFrom(c *gin.Context) (authz.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return authz.Caller{}, false
	}
	caller, ok := v.(authz.Caller)
	return caller, ok
}
