package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken is returned when a request carries neither header nor cookie.
	ErrNoToken = errors.New("no access token")
	// ErrInvalidToken is returned for a token that fails verification.
	ErrInvalidToken = errors.New("invalid access token")
)

// Claims are the fields read from an access token.
type Claims struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks access tokens issued by the auth service.
type Verifier struct {
	secret   []byte
	audience string
}

// NewVerifier creates a verifier for HS256 tokens signed with secret.
func NewVerifier(secret, audience string) *Verifier {
	return &Verifier{secret: []byte(secret), audience: audience}
}

// Verify parses tokenString and returns its claims. The token must be HS256,
// unexpired, carry a subject and, when configured, the expected audience.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}

// ExtractToken reads the bearer token from the Authorization header, falling
// back to the session cookie.
func ExtractToken(r *http.Request, cookieName string) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token, nil
			}
		}
	}
	if cookieName != "" {
		if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
			return cookie.Value, nil
		}
	}
	return "", ErrNoToken
}
