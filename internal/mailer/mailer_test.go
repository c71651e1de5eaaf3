package mailer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/underneath-app/underneath/internal/mailer"
)

func TestClient_Send(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transmissions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := mailer.NewClient(server.URL, "test-key", "no-reply@underneath.app", "Underneath")

	err := client.Send(context.Background(), "sub@example.com", "You have been invited", "<p>hi</p>", "hi")
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotAuth)

	content := gotBody["content"].(map[string]interface{})
	assert.Equal(t, "You have been invited", content["subject"])
	from := content["from"].(map[string]interface{})
	assert.Equal(t, "no-reply@underneath.app", from["email"])

	recipients := gotBody["recipients"].([]interface{})
	require.Len(t, recipients, 1)
}

func TestClient_SendAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"invalid recipient"}]}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := mailer.NewClient(server.URL, "test-key", "no-reply@underneath.app", "Underneath")

	err := client.Send(context.Background(), "bad", "subject", "", "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestLogMailer_Send(t *testing.T) {
	err := mailer.LogMailer{}.Send(context.Background(), "sub@example.com", "subject", "", "")
	assert.NoError(t, err)
}
