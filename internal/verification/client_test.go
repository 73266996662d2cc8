package verification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"karigar/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := zerolog.Nop()
	return NewClient(config.VerificationConfig{
		URL:            server.URL,
		APIKey:         "test-key",
		TimeoutSeconds: 5,
	}, &logger)
}

func TestVerifyAccepted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

		var req struct {
			IDNumber string `json:"id_number"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "1234-5678-9012", req.IDNumber)

		json.NewEncoder(w).Encode(map[string]any{"verified": true})
	})

	verified, reason, err := client.Verify(context.Background(), "1234-5678-9012")
	require.NoError(t, err)
	assert.True(t, verified)
	assert.Empty(t, reason)
}

func TestVerifyRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"verified": false, "reason": "id number not found"})
	})

	verified, reason, err := client.Verify(context.Background(), "0000")
	require.NoError(t, err)
	assert.False(t, verified)
	assert.Equal(t, "id number not found", reason)
}

func TestVerifyServiceError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	verified, _, err := client.Verify(context.Background(), "1234")
	assert.Error(t, err)
	assert.False(t, verified)
}

func TestVerifyUnreachable(t *testing.T) {
	logger := zerolog.Nop()
	client := NewClient(config.VerificationConfig{
		URL:            "http://127.0.0.1:1",
		TimeoutSeconds: 1,
	}, &logger)

	verified, _, err := client.Verify(context.Background(), "1234")
	assert.Error(t, err)
	assert.False(t, verified)
}

func TestHashID(t *testing.T) {
	h1 := HashID("1234-5678-9012")
	h2 := HashID("1234-5678-9012")
	h3 := HashID("other")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
	assert.NotContains(t, h1, "1234")
}
