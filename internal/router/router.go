package router

import (
	"github.com/fasthttp/router"

	apiHandler "github.com/fastygo/embeddables/api/handler"
)

const embeddablesPrefix = "/api/easypost-embeddables"

type Handlers struct {
	Session *apiHandler.SessionHandler
	Users   *apiHandler.UsersHandler
	Health  *apiHandler.HealthHandler
	Static  *apiHandler.StaticHandler
}

func New(handlers Handlers) *router.Router {
	r := router.New()

	r.GET("/api/health", handlers.Health.Check)

	api := r.Group(embeddablesPrefix)
	api.POST("/session", handlers.Session.Create)
	api.GET("/child-users", handlers.Users.ChildUsers)
	api.GET("/referral-customers", handlers.Users.ReferralCustomers)
	api.GET("/users", handlers.Users.Directory)

	// Everything else is the browser bundle, with SPA fallback to the root document.
	if handlers.Static != nil {
		r.NotFound = handlers.Static.Serve
	}
	r.HandleOPTIONS = false

	return r
}
