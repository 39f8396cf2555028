package router

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/embeddables/api/handler"
	"github.com/fastygo/embeddables/domain"
	"github.com/fastygo/embeddables/internal/config"
	"github.com/fastygo/embeddables/repository"
	embeddablesUC "github.com/fastygo/embeddables/usecase/embeddables"
)

type emptyPlatform struct{}

func (emptyPlatform) CreateSession(ctx context.Context, req domain.SessionRequest) (*domain.EmbeddableSession, error) {
	return &domain.EmbeddableSession{SessionID: "sess", Raw: []byte(`{"session_id":"sess"}`)}, nil
}

func (emptyPlatform) ListChildUsers(ctx context.Context, page repository.PageRequest) (*domain.Page, error) {
	return &domain.Page{}, nil
}

func (emptyPlatform) ListReferralCustomers(ctx context.Context, page repository.PageRequest) (*domain.Page, error) {
	return &domain.Page{}, nil
}

func newTestRouter(t *testing.T) fasthttp.RequestHandler {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("index"), 0o644))

	uc := embeddablesUC.New(emptyPlatform{}, config.EasyPostConfig{APIKey: "EZTK", OriginHost: "localhost"}, nil, nil, nil)
	r := New(Handlers{
		Session: apiHandler.NewSessionHandler(uc, nil, nil),
		Users:   apiHandler.NewUsersHandler(uc, true, nil, nil),
		Health:  apiHandler.NewHealthHandler(apiHandler.HealthInfo{Port: "5000", OriginHost: "localhost", HasAPIKey: true}, nil, nil, nil),
		Static:  apiHandler.NewStaticHandler(dir, "index.html", nil),
	})
	return r.Handler
}

func serve(h fasthttp.RequestHandler, method, uri, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&fasthttp.Request{}, nil, nil)
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	ctx.Request.SetBodyString(body)
	h(ctx)
	return ctx
}

func TestRoutes(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		method string
		uri    string
		body   string
		status int
	}{
		{fasthttp.MethodGet, "/api/health", "", http.StatusOK},
		{fasthttp.MethodPost, "/api/easypost-embeddables/session", `{"user_id":"user_1"}`, http.StatusOK},
		{fasthttp.MethodPost, "/api/easypost-embeddables/session", `{"user_id":""}`, http.StatusBadRequest},
		{fasthttp.MethodGet, "/api/easypost-embeddables/child-users", "", http.StatusOK},
		{fasthttp.MethodGet, "/api/easypost-embeddables/referral-customers", "", http.StatusOK},
		{fasthttp.MethodGet, "/api/easypost-embeddables/users", "", http.StatusOK},
		{fasthttp.MethodGet, "/api/easypost-embeddables/nothing", "", http.StatusNotFound},
		{fasthttp.MethodGet, "/dashboard.html", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.uri, func(t *testing.T) {
			ctx := serve(h, tt.method, tt.uri, tt.body)
			assert.Equal(t, tt.status, ctx.Response.StatusCode(), string(ctx.Response.Body()))
		})
	}
}

func TestUsersRouteModeInference(t *testing.T) {
	h := newTestRouter(t)
	ctx := serve(h, fasthttp.MethodGet, "/api/easypost-embeddables/users", "")

	var dir domain.Directory
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &dir))
	// an empty referral list is replaced by the demo record
	assert.True(t, dir.Decentralized())
	assert.Equal(t, domain.WarningReferralFallback, dir.Warnings[0].Type)
}
