package paymongo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/config"
	"github.com/rmtsolutions/logisticsapi/pkg/errors"
)

func sourceResponse(id, status, checkoutURL string) map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{
			"id": id,
			"attributes": map[string]interface{}{
				"status": status,
				"redirect": map[string]interface{}{
					"checkout_url": checkoutURL,
				},
			},
		},
	}
}

func newTestClient(serverURL string) *Client {
	return NewClient(config.PayMongoConfig{SecretKey: "sk_test_abc", BaseURL: serverURL}, zap.NewNop())
}

func TestCreateGCashSource(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sources", r.URL.Path)
		// Basic auth is base64("sk_test_abc:")
		assert.Equal(t, "Basic c2tfdGVzdF9hYmM6", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(sourceResponse("src_123", "pending", "https://checkout.example/src_123"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	source, err := client.CreateGCashSource(context.Background(), 680.50, "Ana Reyes", "ana@example.com",
		"https://shop.example/success", "https://shop.example/failed")
	require.NoError(t, err)

	assert.Equal(t, "src_123", source.ID)
	assert.Equal(t, "pending", source.Status)
	assert.Equal(t, "https://checkout.example/src_123", source.CheckoutURL)

	attrs := captured["data"].(map[string]interface{})["attributes"].(map[string]interface{})
	assert.Equal(t, "gcash", attrs["type"])
	assert.Equal(t, "PHP", attrs["currency"])
	// pesos converted to centavos
	assert.Equal(t, float64(68050), attrs["amount"])
}

func TestCentavoConversionRounds(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(sourceResponse("src_round", "pending", "https://checkout.example/src_round"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	// 620.10 is not exactly representable as a float64; a plain
	// truncation would send 62009 centavos instead of 62010.
	_, err := client.CreateGCashSource(context.Background(), 620.10, "Ana Reyes", "ana@example.com",
		"https://shop.example/success", "https://shop.example/failed")
	require.NoError(t, err)

	attrs := captured["data"].(map[string]interface{})["attributes"].(map[string]interface{})
	assert.Equal(t, float64(62010), attrs["amount"])
}

func TestGetSourceRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(sourceResponse("src_456", "chargeable", ""))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	source, err := client.GetSource(context.Background(), "src_456")
	require.NoError(t, err)

	assert.Equal(t, "chargeable", source.Status)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetSource(context.Background(), "src_789")

	var upstream *errors.ErrUpstream
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "paymongo", upstream.Service)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetriesGiveUpEventually(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetSource(context.Background(), "src_000")

	require.Error(t, err)
	assert.Equal(t, int32(maxAttempts), atomic.LoadInt32(&calls))
}
