package handler

import (
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/application"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/auth"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/middleware"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/response"
	"github.com/gin-gonic/gin"
)

// PaymentHandler handles HTTP requests for payment operations.
type PaymentHandler struct {
	service *application.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *application.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers the authenticated payment routes. The gateway webhook
// is registered separately by WebhookHandler.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	payments := r.Group("/payments")
	payments.Use(middleware.AuthMiddleware(jwtManager))
	{
		payments.POST("/initialize", middleware.RequireRole(auth.RoleStudent), h.InitializePayment)
		payments.GET("/booking/:bookingId", h.GetPaymentByBooking)
	}
}

// InitializePayment handles POST /api/v1/payments/initialize
func (h *PaymentHandler) InitializePayment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req application.InitializePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.InitializePayment(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// GetPaymentByBooking handles GET /api/v1/payments/booking/:bookingId
func (h *PaymentHandler) GetPaymentByBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	bookingID, ok := uuidParam(c, "bookingId", "booking ID")
	if !ok {
		return
	}

	dto, err := h.service.GetPaymentByBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}
