package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/embeddables/api/transport"
	"github.com/fastygo/embeddables/domain"
	"github.com/fastygo/embeddables/pkg/httpcontext"
	"github.com/fastygo/embeddables/pkg/logger"
	embeddablesUC "github.com/fastygo/embeddables/usecase/embeddables"
)

type SessionHandler struct {
	baseHandler
	uc *embeddablesUC.UseCase
}

func NewSessionHandler(uc *embeddablesUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Create an embeddable session for a sub-account
// @Tags embeddables
// @Router /api/easypost-embeddables/session [post]
func (h *SessionHandler) Create(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.SessionRequest
	if body := ctx.PostBody(); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			h.respondError(ctx, stdCtx, domain.WrapError(domain.ErrCodeInvalid, "invalid payload", err))
			return
		}
	}

	session, err := h.uc.CreateSession(stdCtx, req.UserID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	logger.WithRequestID(stdCtx, h.logger).Info("embeddable session created", zap.String("user_id", req.UserID))
	h.respondRaw(ctx, http.StatusOK, session.Raw)
}
