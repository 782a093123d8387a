package announcer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoPostsMessage(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/announcements", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	a := New(WithWebhookURL(srv.URL + "/"))
	require.NoError(t, a.Do(context.Background(), "delete", "INBOX", 4))
	assert.Equal(t, `delete: mailbox "INBOX" matched 4 messages`, got["message"])
}

func TestDoWithoutURLIsNoop(t *testing.T) {
	assert.NoError(t, New().Do(context.Background(), "move", "INBOX", 1))
	assert.NoError(t, New(WithWebhookURL("  ")).Do(context.Background(), "move", "INBOX", 1))
}

func TestDoReportsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	err := New(WithWebhookURL(srv.URL)).Do(context.Background(), "mark", "INBOX", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
