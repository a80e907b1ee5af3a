package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/application"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/auth"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/middleware"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/response"
)

// AdminPaymentHandler handles admin HTTP requests for payment management.
type AdminPaymentHandler struct {
	paymentService *application.PaymentService
}

// NewAdminPaymentHandler creates a new AdminPaymentHandler.
func NewAdminPaymentHandler(paymentService *application.PaymentService) *AdminPaymentHandler {
	return &AdminPaymentHandler{paymentService: paymentService}
}

// RegisterRoutes registers admin payment routes.
func (h *AdminPaymentHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/payments", h.ListPayments)
		admin.GET("/stats/payments", h.PaymentStats)
		admin.POST("/payments/:bookingId/refund", h.RefundPayment)
	}
}

// ListPayments handles GET /api/v1/admin/payments.
func (h *AdminPaymentHandler) ListPayments(c *gin.Context) {
	page, limit := pageParams(c)

	payments, total, err := h.paymentService.ListAllPayments(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, payments, total, page, limit)
}

// PaymentStats handles GET /api/v1/admin/stats/payments.
func (h *AdminPaymentHandler) PaymentStats(c *gin.Context) {
	stats, err := h.paymentService.GetPaymentStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// RefundPayment handles POST /api/v1/admin/payments/:bookingId/refund.
func (h *AdminPaymentHandler) RefundPayment(c *gin.Context) {
	bookingID, ok := uuidParam(c, "bookingId", "booking ID")
	if !ok {
		return
	}

	dto, err := h.paymentService.RefundPayment(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}
