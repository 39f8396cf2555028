package middleware

import (
	"github.com/valyala/fasthttp"
)

// CORS allows the configured origin to call the API from a separately served front end.
// Preflight requests are answered directly with 204.
func CORS(allowedOrigin string) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			h := &ctx.Response.Header
			h.Set(fasthttp.HeaderAccessControlAllowOrigin, allowedOrigin)
			h.Set(fasthttp.HeaderAccessControlAllowMethods, "GET,POST,OPTIONS")
			h.Set(fasthttp.HeaderAccessControlAllowHeaders, "Content-Type,Accept,X-Request-ID")
			if allowedOrigin != "*" {
				h.Add(fasthttp.HeaderVary, "Origin")
			}

			if ctx.IsOptions() {
				ctx.SetStatusCode(fasthttp.StatusNoContent)
				return
			}
			next(ctx)
		}
	}
}
