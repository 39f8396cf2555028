package easypost

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/embeddables/domain"
	"github.com/fastygo/embeddables/repository"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) repository.PlatformRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL + "/v2", APIKey: "EZTK123", Timeout: 5 * time.Second}, nil)
}

func TestBasicAuth(t *testing.T) {
	// base64("EZTK123:")
	assert.Equal(t, "Basic RVpUSzEyMzo=", BasicAuth("EZTK123"))
}

func TestCreateSessionForwardsPayload(t *testing.T) {
	var gotAuth string
	var gotBody domain.SessionRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/embeddables/session", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"session_id":"sess_1","expires_at":"soon"}`))
	})

	session, err := c.CreateSession(context.Background(), domain.SessionRequest{UserID: "user_1", OriginHost: "localhost"})
	require.NoError(t, err)

	assert.Equal(t, "sess_1", session.SessionID)
	assert.JSONEq(t, `{"session_id":"sess_1","expires_at":"soon"}`, string(session.Raw))
	assert.Equal(t, BasicAuth("EZTK123"), gotAuth)
	assert.Equal(t, domain.SessionRequest{UserID: "user_1", OriginHost: "localhost"}, gotBody)
}

func TestCreateSessionRelaysUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"code":"INVALID","message":"user not found"}}`))
	})

	_, err := c.CreateSession(context.Background(), domain.SessionRequest{UserID: "user_x", OriginHost: "localhost"})
	dErr, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrCodeUpstream, dErr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, dErr.Status)
	assert.Equal(t, "user not found", dErr.Message)
	assert.NotNil(t, dErr.Details)
}

func TestUpstreamErrorWrapsNonJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bad gateway"))
	})

	_, err := c.ListReferralCustomers(context.Background(), repository.PageRequest{PageSize: 100})
	dErr, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, listFailedMessage, dErr.Message)
	assert.Equal(t, map[string]string{"raw": "bad gateway"}, dErr.Details)
}

func TestListChildUsersSendsCursor(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/users/children", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("page_size"))
		assert.Equal(t, "user_99", r.URL.Query().Get("after_id"))
		_, _ = w.Write([]byte(`{"children":[{"id":"user_100","name":"A","verified":true}],"has_more":true}`))
	})

	page, err := c.ListChildUsers(context.Background(), repository.PageRequest{PageSize: 100, AfterID: "user_99"})
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "user_100", page.Users[0].ID)
	assert.True(t, page.HasMore)
}

func TestCanceledContextSkipsRequest(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListChildUsers(ctx, repository.PageRequest{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestListReferralCustomersKeepsUpstreamRecord(t *testing.T) {
	record := `{"id":"user_1","object":"User","name":"Acme","phone_number":"555","verified":true,"created_at":"2024-01-01T00:00:00Z"}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"referral_customers":[` + record + `],"has_more":false}`))
	})

	page, err := c.ListReferralCustomers(context.Background(), repository.PageRequest{PageSize: 100})
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "Acme", page.Users[0].Name)

	out, err := json.Marshal(page.Users)
	require.NoError(t, err)
	assert.JSONEq(t, `[`+record+`]`, string(out))
}

func TestCreateSessionLogsUndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["sess_1"]`))
	}))
	t.Cleanup(srv.Close)
	core, logs := observer.New(zap.WarnLevel)
	c := NewClient(Options{BaseURL: srv.URL, APIKey: "EZTK123", Timeout: 5 * time.Second}, zap.New(core))

	session, err := c.CreateSession(context.Background(), domain.SessionRequest{UserID: "user_1", OriginHost: "localhost"})
	require.NoError(t, err)

	assert.Empty(t, session.SessionID)
	assert.JSONEq(t, `["sess_1"]`, string(session.Raw))
	assert.Equal(t, 1, logs.FilterMessage("easypost session body is not an object").Len())
}
