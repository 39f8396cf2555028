package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/embeddables/api/transport"
	"github.com/fastygo/embeddables/internal/infrastructure/monitor"
	"github.com/fastygo/embeddables/pkg/httpcontext"
)

// StatusProvider exposes the latest dependency probe.
type StatusProvider interface {
	GetStatus() monitor.Status
}

// HealthInfo is the static part of the health payload.
type HealthInfo struct {
	Port       string
	OriginHost string
	HasAPIKey  bool
}

type HealthHandler struct {
	baseHandler
	info    HealthInfo
	monitor StatusProvider
}

func NewHealthHandler(info HealthInfo, mon StatusProvider, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		info:        info,
		monitor:     mon,
	}
}

// @Summary Health check
// @Tags health
// @Router /api/health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	payload := transport.HealthResponse{
		OK:         true,
		Port:       h.info.Port,
		OriginHost: h.info.OriginHost,
		HasAPIKey:  h.info.HasAPIKey,
	}

	if h.monitor != nil {
		status := h.monitor.GetStatus()
		payload.Services = &transport.ServicesStatus{
			Redis:        status.Redis,
			Audit:        status.Audit,
			AuditEntries: status.AuditEntries,
		}
		if !status.LastCheck.IsZero() {
			payload.Services.LastCheck = status.LastCheck.UTC().Format(time.RFC3339)
		}
	}

	h.respondJSON(ctx, http.StatusOK, payload)
}
