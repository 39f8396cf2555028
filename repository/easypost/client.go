package easypost

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/embeddables/domain"
	"github.com/fastygo/embeddables/repository"
)

const (
	sessionPath           = "/embeddables/session"
	childUsersPath        = "/users/children"
	referralCustomersPath = "/referral_customers"

	sessionFailedMessage = "EasyPost embeddables session request failed"
	listFailedMessage    = "EasyPost request failed"
)

// Options configures the upstream client.
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Name    string
}

type client struct {
	http    *fasthttp.Client
	baseURL string
	auth    string
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient builds a fasthttp-backed PlatformRepository authenticated with HTTP Basic auth
// (API key as username, empty password).
func NewClient(opts Options, logger *zap.Logger) repository.PlatformRepository {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &client{
		http: &fasthttp.Client{
			Name:                opts.Name,
			ReadTimeout:         opts.Timeout,
			WriteTimeout:        opts.Timeout,
			MaxIdleConnDuration: 90 * time.Second,
		},
		baseURL: opts.BaseURL,
		auth:    BasicAuth(opts.APIKey),
		timeout: opts.Timeout,
		logger:  logger,
	}
}

// BasicAuth renders the Authorization header value for an API key.
func BasicAuth(apiKey string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(apiKey+":"))
}

func (c *client) CreateSession(ctx context.Context, in domain.SessionRequest) (*domain.EmbeddableSession, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}

	status, body, err := c.do(ctx, fasthttp.MethodPost, sessionPath, nil, payload)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, upstreamError(status, body, sessionFailedMessage)
	}

	session := &domain.EmbeddableSession{Raw: relayable(body)}
	if err := json.Unmarshal(session.Raw, session); err != nil {
		c.logger.Warn("easypost session body is not an object", zap.Error(err))
	}
	return session, nil
}

type childUsersResponse struct {
	Children []domain.User `json:"children"`
	HasMore  bool          `json:"has_more"`
}

func (c *client) ListChildUsers(ctx context.Context, page repository.PageRequest) (*domain.Page, error) {
	var out childUsersResponse
	if err := c.list(ctx, childUsersPath, page, &out); err != nil {
		return nil, err
	}
	return &domain.Page{Users: out.Children, HasMore: out.HasMore}, nil
}

type referralCustomersResponse struct {
	ReferralCustomers []domain.User `json:"referral_customers"`
	HasMore           bool          `json:"has_more"`
}

func (c *client) ListReferralCustomers(ctx context.Context, page repository.PageRequest) (*domain.Page, error) {
	var out referralCustomersResponse
	if err := c.list(ctx, referralCustomersPath, page, &out); err != nil {
		return nil, err
	}
	return &domain.Page{Users: out.ReferralCustomers, HasMore: out.HasMore}, nil
}

func (c *client) list(ctx context.Context, path string, page repository.PageRequest, out interface{}) error {
	query := map[string]string{}
	if page.PageSize > 0 {
		query["page_size"] = strconv.Itoa(page.PageSize)
	}
	if page.AfterID != "" {
		query["after_id"] = page.AfterID
	}

	status, body, err := c.do(ctx, fasthttp.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return upstreamError(status, body, listFailedMessage)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return domain.WrapError(domain.ErrCodeUpstream, "unexpected EasyPost response", err)
	}
	return nil
}

func (c *client) do(ctx context.Context, method, path string, query map[string]string, body []byte) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAuthorization, c.auth)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	for k, v := range query {
		req.URI().QueryArgs().Set(k, v)
	}
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		c.logger.Warn("easypost request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return 0, nil, &domain.Error{
			Code:    domain.ErrCodeUpstream,
			Message: fmt.Sprintf("EasyPost %s %s unreachable", method, path),
			Err:     err,
			Status:  http.StatusBadGateway,
		}
	}

	status := resp.StatusCode()
	if !isSuccess(status) {
		c.logger.Warn("easypost returned error status", zap.String("path", path), zap.Int("status", status))
	}
	return status, append([]byte(nil), resp.Body()...), nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// relayable returns body when it is valid JSON, otherwise wraps the text as {"raw": text}.
func relayable(body []byte) json.RawMessage {
	if json.Valid(body) {
		return body
	}
	wrapped, _ := json.Marshal(map[string]string{"raw": string(body)})
	return wrapped
}

type upstreamErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func upstreamError(status int, body []byte, fallback string) error {
	var details interface{}
	if err := json.Unmarshal(body, &details); err != nil {
		details = map[string]string{"raw": string(body)}
	}

	message := fallback
	var parsed upstreamErrorBody
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		message = parsed.Error.Message
	}
	return domain.NewUpstreamError(status, message, details)
}
