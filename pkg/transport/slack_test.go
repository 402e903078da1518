package transport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwatch/shelfwatch/pkg/transport"
)

func TestSlackSender_Name(t *testing.T) {
	s := transport.NewSlackSender("https://hooks.slack.com/test")
	assert.Equal(t, "slack", s.Name())
}

func TestSlackSender_Send(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, http.MethodPost, r.Method)

		err := json.NewDecoder(r.Body).Decode(&received)
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := transport.NewSlackSender(server.URL)
	err := s.Send(context.Background(), "#warehouse", "Low stock alert (1 item):\n- Widget: 2 left")
	require.NoError(t, err)

	assert.Equal(t, "#warehouse", received["channel"])
	assert.Contains(t, received["text"], "Widget: 2 left")
}

func TestSlackSender_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := transport.NewSlackSender(server.URL)
	err := s.Send(context.Background(), "#warehouse", "message")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
