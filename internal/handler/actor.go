package handler

import (
	"strconv"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/booking"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/domain"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/middleware"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// actorFrom builds the caller from the claims AuthMiddleware stored. It writes a
// 401 and returns false when they are missing.
func actorFrom(c *gin.Context) (booking.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domain.NewUnauthorizedError(domain.CodeUnauthorized, "unauthorized"))
		return booking.Actor{}, false
	}
	role, _ := middleware.GetRole(c)
	profileID, _ := middleware.GetProfileID(c)

	return booking.Actor{
		UserID:    userID,
		ProfileID: profileID,
		Role:      booking.Role(role),
		Email:     middleware.GetEmail(c),
	}, true
}

func uuidParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "invalid "+label)
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// int64Query reads an optional integer query parameter. An absent parameter is zero.
func int64Query(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return n, true
}
