package handler

import (
	"bytes"
	"net/http"
	"path/filepath"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/embeddables/api/transport"
	"github.com/fastygo/embeddables/domain"
)

var apiPrefix = []byte("/api/")

// StaticHandler serves the browser bundle and falls back to the root document
// for any unknown non-API path.
type StaticHandler struct {
	baseHandler
	indexPath string
	files     fasthttp.RequestHandler
}

func NewStaticHandler(dir, index string, logger *zap.Logger) *StaticHandler {
	if index == "" {
		index = "index.html"
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		root = dir
	}

	h := &StaticHandler{
		baseHandler: newBaseHandler(nil, logger),
		indexPath:   filepath.Join(root, index),
	}
	fs := &fasthttp.FS{
		Root:               root,
		IndexNames:         []string{index},
		GenerateIndexPages: false,
		AcceptByteRange:    true,
		PathNotFound:       h.fallback,
	}
	h.files = fs.NewRequestHandler()
	return h
}

// Serve is installed as the router's NotFound handler.
func (h *StaticHandler) Serve(ctx *fasthttp.RequestCtx) {
	if bytes.HasPrefix(ctx.Path(), apiPrefix) {
		h.notFound(ctx)
		return
	}
	h.files(ctx)
}

func (h *StaticHandler) fallback(ctx *fasthttp.RequestCtx) {
	if bytes.HasPrefix(ctx.Path(), apiPrefix) {
		h.notFound(ctx)
		return
	}
	ctx.SendFile(h.indexPath)
}

func (h *StaticHandler) notFound(ctx *fasthttp.RequestCtx) {
	h.respondJSON(ctx, http.StatusNotFound,
		transport.NewError(string(domain.ErrCodeNotFound), "no route for "+string(ctx.Path()), nil))
}
