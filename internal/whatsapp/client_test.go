package whatsapp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexocrm/nexo/internal/whatsapp"
	"github.com/nexocrm/nexo/pkg/models"
)

func testSettings() *models.WhatsAppSettings {
	return &models.WhatsAppSettings{
		PhoneNumberID: "745001",
		AccessToken:   "EAAG-token",
		APIVersion:    "v18.0",
	}
}

func TestClient_SendText(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages":[{"id":"wamid.123"}]}`))
	}))
	defer srv.Close()

	client := whatsapp.NewClient(srv.URL, 5*time.Second)
	resp, err := client.SendText(context.Background(), testSettings(), "15551234567", "hello")
	require.NoError(t, err)

	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "wamid.123", resp.Messages[0].ID)
	assert.Equal(t, "/v18.0/745001/messages", gotPath)
	assert.Equal(t, "Bearer EAAG-token", gotAuth)
	assert.Equal(t, "whatsapp", gotBody["messaging_product"])
	assert.Equal(t, "15551234567", gotBody["to"])
	assert.Equal(t, "hello", gotBody["text"].(map[string]any)["body"])
}

func TestClient_SendTemplate(t *testing.T) {
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages":[{"id":"wamid.456"}]}`))
	}))
	defer srv.Close()

	client := whatsapp.NewClient(srv.URL, 5*time.Second)
	_, err := client.SendTemplate(context.Background(), testSettings(), "15551234567", "welcome", "en_US")
	require.NoError(t, err)

	assert.Equal(t, "template", gotBody["type"])
	tmpl := gotBody["template"].(map[string]any)
	assert.Equal(t, "welcome", tmpl["name"])
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","code":190}}`))
	}))
	defer srv.Close()

	client := whatsapp.NewClient(srv.URL, 5*time.Second)
	_, err := client.SendText(context.Background(), testSettings(), "15551234567", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid OAuth access token")
}

func TestClient_TransportError(t *testing.T) {
	// Nothing is listening on this address.
	client := whatsapp.NewClient("http://127.0.0.1:1", time.Second)

	_, err := client.SendText(context.Background(), testSettings(), "15551234567", "hello")
	assert.ErrorIs(t, err, whatsapp.ErrProviderUnavailable)
}
