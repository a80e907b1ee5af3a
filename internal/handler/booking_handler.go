package handler

import (
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/application"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/auth"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/middleware"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/response"
	"github.com/gin-gonic/gin"
)

// BookingHandler handles HTTP requests for the booking lifecycle.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	bookings := r.Group("/bookings")
	bookings.Use(middleware.AuthMiddleware(jwtManager))
	{
		bookings.POST("", middleware.RequireRole(auth.RoleStudent), h.CreateBooking)
		bookings.GET("/mine", middleware.RequireRole(auth.RoleStudent), h.ListMyBookings)
		bookings.GET("/requests", middleware.RequireRole(auth.RoleProvider), h.ListRequests)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/status", middleware.RequireRole(auth.RoleProvider), h.UpdateStatus)
		bookings.POST("/:id/cancel", middleware.RequireRole(auth.RoleStudent), h.CancelBooking)
	}
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.CreateBooking(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto)
}

// ListMyBookings handles GET /api/v1/bookings/mine
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	dtos, err := h.service.ListMyBookings(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dtos)
}

// ListRequests handles GET /api/v1/bookings/requests
func (h *BookingHandler) ListRequests(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	dtos, err := h.service.ListPendingRequests(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dtos)
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	bookingID, ok := uuidParam(c, "id", "booking ID")
	if !ok {
		return
	}

	dto, err := h.service.GetBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// UpdateStatus handles POST /api/v1/bookings/:id/status
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	bookingID, ok := uuidParam(c, "id", "booking ID")
	if !ok {
		return
	}

	var req application.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.UpdateStatus(c.Request.Context(), actor, bookingID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	bookingID, ok := uuidParam(c, "id", "booking ID")
	if !ok {
		return
	}

	dto, err := h.service.CancelBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}
