package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPaystackGateway_Initialize(t *testing.T) {
	bookingID := uuid.New()
	var got initializeRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"ref_123"}}`))
	}))
	defer srv.Close()

	gw := NewPaystackGateway(PaystackConfig{SecretKey: "sk_test", BaseURL: srv.URL, CallbackURL: "https://app/cb"}, zap.NewNop())
	checkout, err := gw.Initialize(context.Background(), 20000, "student@example.com", bookingID)
	require.NoError(t, err)

	assert.Equal(t, "ref_123", checkout.Reference)
	assert.Equal(t, "abc", checkout.AccessCode)
	assert.Equal(t, "https://checkout.paystack.com/abc", checkout.AuthorizationURL)

	assert.Equal(t, int64(20000), got.Amount)
	assert.Equal(t, "student@example.com", got.Email)
	assert.Equal(t, "https://app/cb", got.CallbackURL)
	assert.Equal(t, bookingID.String(), got.Metadata["booking_id"])
}

func TestPaystackGateway_Initialize_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	}))
	defer srv.Close()

	gw := NewPaystackGateway(PaystackConfig{SecretKey: "bad", BaseURL: srv.URL}, zap.NewNop())
	_, err := gw.Initialize(context.Background(), 100, "a@b.c", uuid.New())
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, CodeGatewayError, domain.CodeOf(err))
	assert.Contains(t, err.Error(), "Invalid key")
}

func TestPaystackGateway_Initialize_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	gw := NewPaystackGateway(PaystackConfig{SecretKey: "sk", BaseURL: srv.URL}, zap.NewNop())
	_, err := gw.Initialize(context.Background(), 100, "a@b.c", uuid.New())
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestMockGateway_Initialize(t *testing.T) {
	gw := NewMockGateway(zap.NewNop())
	checkout, err := gw.Initialize(context.Background(), 100, "a@b.c", uuid.New())
	require.NoError(t, err)
	assert.NotEmpty(t, checkout.Reference)
	assert.Contains(t, checkout.AuthorizationURL, checkout.Reference)
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)
	sig := Sign("secret", body)

	assert.Len(t, sig, 128)
	assert.True(t, VerifySignature("secret", body, sig))
	assert.False(t, VerifySignature("other", body, sig))
	assert.False(t, VerifySignature("secret", []byte(`{"event":"charge.failed"}`), sig))
	assert.False(t, VerifySignature("secret", body, ""))
	assert.False(t, VerifySignature("", body, Sign("", body)))
}
