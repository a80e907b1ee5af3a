package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/adapter"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/application"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/domain"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CodeInvalidSignature is returned when the webhook signature does not verify.
const CodeInvalidSignature = "INVALID_SIGNATURE"

const maxWebhookBody = 1 << 20

// gatewayEvent is the envelope of every gateway notification. Data is only
// decoded for charge.success; other events may carry any shape.
type gatewayEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type chargeData struct {
	Reference string         `json:"reference" validate:"required"`
	Amount    int64          `json:"amount" validate:"gt=0"`
	Currency  string         `json:"currency"`
	Channel   string         `json:"channel"`
	Metadata  chargeMetadata `json:"metadata"`
}

type chargeMetadata struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
}

// WebhookHandler receives payment gateway notifications. It is unauthenticated;
// the HMAC signature over the raw body is the only proof of origin.
type WebhookHandler struct {
	service  *application.ReconciliationService
	secret   string
	validate *validator.Validate
	logger   *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler verifying with secret.
func NewWebhookHandler(service *application.ReconciliationService, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		service:  service,
		secret:   secret,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers POST /payments/webhook behind the given middleware,
// usually a rate limiter.
func (h *WebhookHandler) RegisterRoutes(r *gin.RouterGroup, mw ...gin.HandlerFunc) {
	handlers := make([]gin.HandlerFunc, 0, len(mw)+1)
	handlers = append(handlers, mw...)
	r.POST("/payments/webhook", append(handlers, h.HandleWebhook)...)
}

// HandleWebhook handles POST /api/v1/payments/webhook
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(c, "unable to read request body")
		return
	}

	if !adapter.VerifySignature(h.secret, body, c.GetHeader(adapter.SignatureHeader)) {
		h.logger.Warn("webhook signature rejected", zap.String("client_ip", c.ClientIP()))
		response.Error(c, domain.NewUnauthorizedError(CodeInvalidSignature, "invalid webhook signature"))
		return
	}

	var evt gatewayEvent
	if err := json.Unmarshal(body, &evt); err != nil || evt.Event == "" {
		response.BadRequest(c, "malformed webhook payload")
		return
	}

	n := application.ChargeNotification{Event: evt.Event, Raw: body}
	if evt.Event == application.EventChargeSuccess {
		var data chargeData
		if err := json.Unmarshal(evt.Data, &data); err != nil {
			response.BadRequest(c, "malformed charge data")
			return
		}
		if err := h.validate.Struct(data); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		n.Reference = data.Reference
		n.AmountMinor = data.Amount
		n.Currency = data.Currency
		n.Channel = data.Channel
		n.BookingID = uuid.MustParse(data.Metadata.BookingID)
	}

	outcome, err := h.service.Reconcile(c.Request.Context(), n)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Envelope{Success: true, Data: gin.H{"outcome": outcome.String()}})
}
