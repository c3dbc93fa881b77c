package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwame/agrimarket/internal/types"
)

func TestSimulatedInitializeAndVerify(t *testing.T) {
	client := New("", "")
	require.True(t, client.Simulated())

	charge, err := client.Initialize(context.Background(), "buyer@example.com", 5000, types.PlanStandard)
	require.NoError(t, err)
	assert.NotEmpty(t, charge.Reference)
	assert.NotEmpty(t, charge.AuthorizationURL)
	assert.Equal(t, types.PlanStandard, charge.Plan)

	status, plan, err := client.Verify(context.Background(), charge.Reference)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, status)
	assert.Equal(t, types.PlanStandard, plan)
}

func TestSimulatedVerify_UnknownReference(t *testing.T) {
	client := New("", "")

	status, _, err := client.Verify(context.Background(), "sim_never-issued")
	assert.Equal(t, StatusFailed, status)

	var unknownErr *UnknownReferenceError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "sim_never-issued", unknownErr.Reference)
}

func TestInitialize_AgainstGateway(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_abc", r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "buyer@example.com", payload["email"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": true,
			"data": {
				"authorization_url": "https://checkout.example.com/abc123",
				"reference": "ref_abc123"
			}
		}`))
	}))
	defer server.Close()

	client := New(server.URL, "sk_test_abc")
	require.False(t, client.Simulated())

	charge, err := client.Initialize(context.Background(), "buyer@example.com", 20000, types.PlanPremium)
	require.NoError(t, err)
	assert.Equal(t, "ref_abc123", charge.Reference)
	assert.Equal(t, "https://checkout.example.com/abc123", charge.AuthorizationURL)
}

func TestVerify_AgainstGateway(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/ref_abc123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": true,
			"data": {
				"status": "success",
				"metadata": {"plan": "premium"}
			}
		}`))
	}))
	defer server.Close()

	client := New(server.URL, "sk_test_abc")

	status, plan, err := client.Verify(context.Background(), "ref_abc123")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, status)
	assert.Equal(t, types.PlanPremium, plan)
}

func TestVerify_PendingStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": true, "data": {"status": "ongoing"}}`))
	}))
	defer server.Close()

	client := New(server.URL, "sk_test_abc")

	status, _, err := client.Verify(context.Background(), "ref_pending")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)
}

func TestGatewayErrorSurfacesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status": false, "message": "Invalid key"}`))
	}))
	defer server.Close()

	client := New(server.URL, "sk_bad")

	_, err := client.Initialize(context.Background(), "buyer@example.com", 5000, types.PlanStandard)
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusUnauthorized, gwErr.StatusCode)
	assert.Contains(t, gwErr.Message, "Invalid key")
}

func TestInitialize_MissingReference(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": true, "data": {}}`))
	}))
	defer server.Close()

	client := New(server.URL, "sk_test_abc")

	_, err := client.Initialize(context.Background(), "buyer@example.com", 5000, types.PlanStandard)
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
}
