package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/embeddables/api/transport"
	"github.com/fastygo/embeddables/domain"
)

const (
	usersPath   = "/api/easypost-embeddables/users"
	sessionPath = "/api/easypost-embeddables/session"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to the embeddables backend the way the browser bundle does.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	timeout time.Duration
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 40 * time.Second
	}
	return &Client{
		http:    &fasthttp.Client{ReadTimeout: timeout, WriteTimeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

// GetUsers loads the combined directory.
func (c *Client) GetUsers(ctx context.Context) (*domain.Directory, error) {
	status, body, err := c.do(ctx, fasthttp.MethodGet, usersPath, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, apiError(status, body, fmt.Sprintf("Failed to load users (%d)", status))
	}

	var dir domain.Directory
	if err := json.Unmarshal(body, &dir); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	if dir.Children == nil {
		dir.Children = []domain.User{}
	}
	if dir.ReferralCustomers == nil {
		dir.ReferralCustomers = []domain.User{}
	}
	return &dir, nil
}

// CreateSession asks the backend for an embeddable session for userID.
func (c *Client) CreateSession(ctx context.Context, userID string) (*domain.EmbeddableSession, error) {
	payload, err := json.Marshal(transport.SessionRequest{UserID: userID})
	if err != nil {
		return nil, err
	}
	status, body, err := c.do(ctx, fasthttp.MethodPost, sessionPath, payload)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, apiError(status, body, "Failed to create session")
	}

	session := &domain.EmbeddableSession{Raw: body}
	if err := json.Unmarshal(body, session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return 0, nil, err
	}
	return resp.StatusCode(), append([]byte(nil), resp.Body()...), nil
}

func apiError(status int, body []byte, fallback string) error {
	var env transport.ErrorEnvelope
	out := &APIError{Status: status, Message: fallback}
	if json.Unmarshal(body, &env) == nil {
		out.Code = env.Error.Code
		if env.Error.Message != "" {
			out.Message = env.Error.Message
		}
	}
	return out
}
