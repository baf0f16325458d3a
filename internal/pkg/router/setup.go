package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/contapp-relay/app/controllers"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/middleware"
)

// Router registers a group of routes on the app
type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies are the constructed handlers and settings the routes need
type Dependencies struct {
	Verifier middleware.TokenVerifier
	Chat     *controllers.ChatController
	Billing  *controllers.BillingController

	// AllowOrigins is the fiber cors origin list, "*" for any
	AllowOrigins string
	// ChatRateLimit is requests per user per minute, 0 disables it
	ChatRateLimit int
	// LimiterStorage shares limiter counters between instances; nil keeps
	// them in memory
	LimiterStorage fiber.Storage
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	// The public router installs CORS for every route, so it goes first.
	setup(app, NewHttpRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
