package paymongo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateCheckoutSession(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/checkout_sessions", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"cs_abc123","attributes":{"checkout_url":"https://checkout.example.com/cs_abc123","status":"active"}}}`))
	}))
	defer server.Close()

	client, err := NewClient("sk_test_123", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, err)

	session, err := client.CreateCheckoutSession(context.Background(), CreateCheckoutSessionRequest{
		LineItems: []LineItem{
			{Name: "The Silent Library", Amount: 49900, Currency: "PHP", Quantity: 1},
		},
		PaymentMethodTypes: []string{"qrph"},
		SuccessURL:         "https://shop.example.com/checkout/success",
		CancelURL:          "https://shop.example.com/checkout/cancel",
		ReferenceNumber:    "ORD-AAAABBBBCCCC",
	})
	require.NoError(t, err)
	require.Equal(t, "cs_abc123", session.ID)
	require.Equal(t, "https://checkout.example.com/cs_abc123", session.CheckoutURL)

	attrs := captured["data"].(map[string]any)["attributes"].(map[string]any)
	require.Equal(t, "ORD-AAAABBBBCCCC", attrs["reference_number"])
	items := attrs["line_items"].([]any)
	require.Len(t, items, 1)
	first := items[0].(map[string]any)
	require.Equal(t, float64(49900), first["amount"])
	require.Equal(t, "PHP", first["currency"])
}

func TestCreateCheckoutSessionProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"errors":[{"detail":"upstream unavailable"}]}`))
	}))
	defer server.Close()

	client, err := NewClient("sk_test_123", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.CreateCheckoutSession(context.Background(), CreateCheckoutSessionRequest{
		LineItems:  []LineItem{{Name: "x", Amount: 100, Currency: "PHP", Quantity: 1}},
		SuccessURL: "https://shop.example.com/s",
		CancelURL:  "https://shop.example.com/c",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 502")
}

func TestCreateCheckoutSessionValidatesInput(t *testing.T) {
	client, err := NewClient("sk_test_123")
	require.NoError(t, err)

	_, err = client.CreateCheckoutSession(context.Background(), CreateCheckoutSessionRequest{})
	require.Error(t, err)
}

func TestNewClientRequiresSecretKey(t *testing.T) {
	_, err := NewClient("   ")
	require.Error(t, err)
}

func TestExpireCheckoutSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/checkout_sessions/cs_abc123/expire", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":{"id":"cs_abc123"}}`))
	}))
	defer server.Close()

	client, err := NewClient("sk_test_123", WithBaseURL(server.URL))
	require.NoError(t, err)

	require.NoError(t, client.ExpireCheckoutSession(context.Background(), "cs_abc123"))
}
