package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jengzang/travel-atlas-go/pkg/response"
)

// Context keys set by Auth
const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

// RoleAdmin is the role allowed to use the admin console API
const RoleAdmin = "admin"

// Claims are the accepted access token claims. The role may be carried at the
// top level or in app_metadata.
type Claims struct {
	Role        string `json:"role,omitempty"`
	AppMetadata struct {
		Role string `json:"role,omitempty"`
	} `json:"app_metadata"`
	jwt.RegisteredClaims
}

// EffectiveRole prefers the app_metadata role over the top-level one.
func (c *Claims) EffectiveRole() string {
	if c.AppMetadata.Role != "" {
		return c.AppMetadata.Role
	}
	return c.Role
}

// Auth verifies an HS256 bearer token and stores the subject and role on the
// context
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			response.Error(c, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}

		claims := &Claims{}
		_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token expired"
			}
			response.Error(c, http.StatusUnauthorized, msg, err)
			return
		}
		if claims.Subject == "" {
			response.Error(c, http.StatusUnauthorized, "Token has no subject", nil)
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextRole, claims.EffectiveRole())
		c.Next()
	}
}

// RequireAdmin rejects requests whose token role is not admin. It must run
// after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != RoleAdmin {
			response.Error(c, http.StatusForbidden, "Admin role required", nil)
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated subject
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
