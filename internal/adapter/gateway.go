package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CodeGatewayError is reported when the payment gateway rejects or fails a call.
const CodeGatewayError = "GATEWAY_ERROR"

// Checkout is a gateway checkout session the payer is redirected to.
type Checkout struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// PaymentGateway is the anti-corruption layer over the payment provider. The booking
// id travels in the session metadata and comes back in the charge notification.
type PaymentGateway interface {
	Initialize(ctx context.Context, amountMinor int64, email string, bookingID uuid.UUID) (*Checkout, error)
}

// PaystackConfig configures the Paystack client.
type PaystackConfig struct {
	SecretKey   string
	BaseURL     string
	CallbackURL string
	Timeout     time.Duration
}

// PaystackGateway talks to the Paystack transaction API.
type PaystackGateway struct {
	cfg    PaystackConfig
	client *http.Client
	logger *zap.Logger
}

// NewPaystackGateway creates a Paystack client.
func NewPaystackGateway(cfg PaystackConfig, logger *zap.Logger) *PaystackGateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.paystack.co"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &PaystackGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type initializeRequest struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata"`
}

type initializeResponse struct {
	Status  bool     `json:"status"`
	Message string   `json:"message"`
	Data    Checkout `json:"data"`
}

// Initialize opens a checkout session for amountMinor (pesewas/kobo).
func (g *PaystackGateway) Initialize(ctx context.Context, amountMinor int64, email string, bookingID uuid.UUID) (*Checkout, error) {
	body, err := json.Marshal(initializeRequest{
		Email:       email,
		Amount:      amountMinor,
		CallbackURL: g.cfg.CallbackURL,
		Metadata:    map[string]string{"booking_id": bookingID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal initialize request: %w", err)
	}

	url := strings.TrimRight(g.cfg.BaseURL, "/") + "/transaction/initialize"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build initialize request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error("paystack initialize failed", zap.String("booking_id", bookingID.String()), zap.Error(err))
		return nil, domain.NewUpstreamError(CodeGatewayError, "payment gateway unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, domain.NewUpstreamError(CodeGatewayError, "failed to read payment gateway response")
	}

	var out initializeResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !out.Status {
		msg := out.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		g.logger.Warn("paystack rejected initialize",
			zap.String("booking_id", bookingID.String()),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return nil, domain.NewUpstreamError(CodeGatewayError, msg)
	}
	if decodeErr != nil {
		return nil, domain.NewUpstreamError(CodeGatewayError, "malformed payment gateway response")
	}

	g.logger.Info("paystack checkout initialized",
		zap.String("booking_id", bookingID.String()),
		zap.String("reference", out.Data.Reference),
		zap.Int64("amount_minor", amountMinor),
	)
	return &out.Data, nil
}

// MockGateway is a development implementation of PaymentGateway. It never
// contacts a provider.
type MockGateway struct {
	logger *zap.Logger
}

// NewMockGateway creates a new mock gateway for development.
func NewMockGateway(logger *zap.Logger) *MockGateway {
	return &MockGateway{logger: logger}
}

// Initialize returns a fake checkout session.
func (m *MockGateway) Initialize(_ context.Context, amountMinor int64, email string, bookingID uuid.UUID) (*Checkout, error) {
	reference := fmt.Sprintf("mock_%s", uuid.New().String()[:8])
	checkout := &Checkout{
		AuthorizationURL: "https://checkout.mock.local/" + reference,
		AccessCode:       "ac_" + reference,
		Reference:        reference,
	}

	m.logger.Info("[MOCK GATEWAY] checkout initialized",
		zap.String("reference", reference),
		zap.String("booking_id", bookingID.String()),
		zap.Int64("amount_minor", amountMinor),
		zap.String("email", email),
	)
	return checkout, nil
}
