package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 5*time.Second)
}

func TestGetUsers(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, usersPath, r.URL.Path)
		_, _ = w.Write([]byte(`{"children":[{"id":"user_1"}],"referral_customers":null,"warnings":[]}`))
	})

	dir, err := c.GetUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, dir.Children, 1)
	assert.NotNil(t, dir.ReferralCustomers)
	assert.False(t, dir.Decentralized())
}

func TestGetUsersError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.GetUsers(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Failed to load users (503)", apiErr.Message)
}

func TestCreateSession(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"session_id":"sess_` + body["user_id"] + `"}`))
	})

	session, err := c.CreateSession(context.Background(), "user_9")
	require.NoError(t, err)
	assert.Equal(t, "sess_user_9", session.SessionID)
}

func TestCreateSessionUsesEnvelopeMessage(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"missing_api_key","message":"server is missing EASYPOST_API_KEY"}}`))
	})

	_, err := c.CreateSession(context.Background(), "user_9")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "missing_api_key", apiErr.Code)
	assert.Equal(t, "server is missing EASYPOST_API_KEY", apiErr.Error())
}
