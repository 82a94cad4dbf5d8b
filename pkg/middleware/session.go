package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prohmpiriya/tier-events/pkg/response"
)

const (
	// UserIDKey is the gin context key holding the authenticated viewer ID
	UserIDKey = "user_id"
	// DefaultSessionCookie is the cookie carrying the session token
	DefaultSessionCookie = "__session"
)

// ErrNoSession is returned when a request carries no session token
var ErrNoSession = errors.New("no session token")

// SessionConfig configures session token verification
type SessionConfig struct {
	Secret     string
	Issuer     string
	CookieName string
}

// SessionClaims are the claims carried by a session token. The subject is the viewer ID.
type SessionClaims struct {
	FirstName string `json:"first_name,omitempty"`
	jwt.RegisteredClaims
}

// IssueSessionToken signs a session token for a viewer
func IssueSessionToken(cfg *SessionConfig, viewerID, firstName string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		FirstName: firstName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   viewerID,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}

// ParseSessionToken verifies a token and returns its claims
func ParseSessionToken(cfg *SessionConfig, tokenString string) (*SessionClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("invalid session token: missing subject")
	}
	return claims, nil
}

// tokenFromRequest reads a bearer token or falls back to the session cookie
func tokenFromRequest(c *gin.Context, cookieName string) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
			return parts[1], nil
		}
		return "", errors.New("malformed authorization header")
	}

	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie, nil
	}
	return "", ErrNoSession
}

func authenticate(c *gin.Context, cfg *SessionConfig) error {
	token, err := tokenFromRequest(c, cfg.CookieName)
	if err != nil {
		return err
	}
	claims, err := ParseSessionToken(cfg, token)
	if err != nil {
		return err
	}
	c.Set(UserIDKey, claims.Subject)
	return nil
}

// SessionAuth rejects requests without a valid session with 401
func SessionAuth(cfg *SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authenticate(c, cfg); err != nil {
			_ = c.Error(err)
			response.AbortWithError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		c.Next()
	}
}

// OptionalSession sets the viewer ID when a valid session is present and never aborts
func OptionalSession(cfg *SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authenticate(c, cfg); err != nil && !errors.Is(err, ErrNoSession) {
			_ = c.Error(err)
		}
		c.Next()
	}
}

// GetUserID returns the authenticated viewer ID
func GetUserID(c *gin.Context) (string, bool) {
	id := c.GetString(UserIDKey)
	return id, id != ""
}
