package handler

import (
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/embeddables/api/transport"
	"github.com/fastygo/embeddables/pkg/httpcontext"
	embeddablesUC "github.com/fastygo/embeddables/usecase/embeddables"
)

type UsersHandler struct {
	baseHandler
	uc       *embeddablesUC.UseCase
	paginate bool
}

// NewUsersHandler serves the directory endpoints. paginate is the default for child-users
// when the request carries no "all" query argument.
func NewUsersHandler(uc *embeddablesUC.UseCase, paginate bool, adapter *httpcontext.Adapter, logger *zap.Logger) *UsersHandler {
	return &UsersHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		paginate:    paginate,
	}
}

// @Summary List child users
// @Tags embeddables
// @Param all query bool false "follow the cursor through every page"
// @Router /api/easypost-embeddables/child-users [get]
func (h *UsersHandler) ChildUsers(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	all := h.paginate
	if raw := string(ctx.QueryArgs().Peek("all")); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			all = parsed
		}
	}

	users, err := h.uc.ListChildUsers(stdCtx, all)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewChildUsersResponse(users))
}

// @Summary List referral customers
// @Tags embeddables
// @Router /api/easypost-embeddables/referral-customers [get]
func (h *UsersHandler) ReferralCustomers(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	users, err := h.uc.ListReferralCustomers(stdCtx)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.ReferralCustomersResponse{ReferralCustomers: users})
}

// @Summary Combined user directory with fallbacks
// @Tags embeddables
// @Router /api/easypost-embeddables/users [get]
func (h *UsersHandler) Directory(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondJSON(ctx, http.StatusOK, h.uc.Directory(stdCtx))
}
