package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/embeddables/api/transport"
	"github.com/fastygo/embeddables/domain"
	"github.com/fastygo/embeddables/pkg/httpcontext"
	"github.com/fastygo/embeddables/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
		status = http.StatusInternalServerError
		body, _ = json.Marshal(transport.NewError(string(domain.ErrCodeInternal), "Server error", nil))
	}
	h.respondRaw(ctx, status, body)
}

// respondRaw writes an already encoded JSON body.
func (h baseHandler) respondRaw(ctx *fasthttp.RequestCtx, status int, body []byte) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, stdCtx context.Context, err error) {
	status, code, message, details := mapError(err)
	log := logger.WithRequestID(stdCtx, h.logger)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("code", code), zap.Int("status", status), zap.Error(err))
	} else {
		log.Warn("request rejected", zap.String("code", code), zap.Int("status", status), zap.Error(err))
	}
	h.respondJSON(ctx, status, transport.NewError(code, message, details))
}

func mapError(err error) (status int, code string, message string, details interface{}) {
	dErr, ok := domain.AsError(err)
	if !ok {
		return http.StatusInternalServerError, string(domain.ErrCodeInternal), "Server error", err.Error()
	}

	code, message, details = string(dErr.Code), dErr.Message, dErr.Details
	switch {
	case dErr.Status != 0:
		status = dErr.Status
	case dErr.Code == domain.ErrCodeInvalid:
		status = http.StatusBadRequest
	case dErr.Code == domain.ErrCodeNotFound:
		status = http.StatusNotFound
	case dErr.Code == domain.ErrCodeUpstream:
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}
	if details == nil && dErr.Err != nil {
		details = dErr.Err.Error()
	}
	return status, code, message, details
}
