package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/miniguru-commerce/internal/domain/user"
)

const (
	// UserIDKey holds the authenticated user's id in the gin context
	UserIDKey = "user_id"

	// RoleKey holds the authenticated user's role in the gin context
	RoleKey = "user_role"
)

// Claims is the bearer token payload. Tokens are issued elsewhere; this
// service only verifies them.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticate verifies an HS256 bearer token and stores the caller's id and role
func Authenticate(secret []byte) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (interface{}, error) { return secret, nil }

	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
			return
		}

		var claims Claims
		if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
			message := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				message = "Token expired"
			}
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token subject")
			return
		}

		role := user.Role(claims.Role)
		if role == "" {
			role = user.RoleUser
		}
		c.Set(UserIDKey, userID)
		c.Set(RoleKey, role)
		c.Next()
	}
}

// RequireAdmin rejects callers whose token does not carry the admin role.
// It must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			abortWithError(c, http.StatusForbidden, "FORBIDDEN", "Admin role required")
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated caller, if any
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(UserIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

func IsAdmin(c *gin.Context) bool {
	v, _ := c.Get(RoleKey)
	role, _ := v.(user.Role)
	return role == user.RoleAdmin
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
