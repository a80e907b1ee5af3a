package middleware

import (
	"strings"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/auth"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/domain"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ContextUserID    = "userId"
	ContextUserRole  = "userRole"
	ContextProfileID = "profileId"
	ContextEmail     = "userEmail"
)

// AuthMiddleware verifies the bearer token and stores the claims in the context.
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			response.Error(c, domain.NewUnauthorizedError(domain.CodeUnauthorized, "missing or malformed Authorization header"))
			return
		}

		claims, err := jwtManager.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, domain.NewUnauthorizedError(domain.CodeUnauthorized, "invalid or expired token"))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextProfileID, claims.ProfileID)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}

// RequireRole rejects requests whose token role is not one of roles.
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			response.Error(c, domain.NewUnauthorizedError(domain.CodeUnauthorized, "unauthorized"))
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		response.Error(c, domain.NewForbiddenError("insufficient role"))
	}
}

// GetUserID returns the authenticated user id.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetRole returns the authenticated role.
func GetRole(c *gin.Context) (auth.Role, bool) {
	v, ok := c.Get(ContextUserRole)
	if !ok {
		return "", false
	}
	role, ok := v.(auth.Role)
	return role, ok
}

// GetProfileID returns the profile linked to the authenticated user.
func GetProfileID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextProfileID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetEmail returns the authenticated user's email.
func GetEmail(c *gin.Context) string {
	return c.GetString(ContextEmail)
}
