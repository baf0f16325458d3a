package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/ManuelReschke/contapp-relay/app/controllers"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/constants"
)

// HttpRouter installs CORS and the unauthenticated routes
type HttpRouter struct {
	deps Dependencies
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	origins := h.deps.AllowOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get(constants.HealthRoute, controllers.HandleHealth)
	// PayPal calls the webhook without a bearer token; authenticity is
	// checked by signature verification in the handler.
	app.Post(constants.PayPalPrefix+constants.WebhookRoute, h.deps.Billing.HandlePayPalWebhook)
}

func NewHttpRouter(deps Dependencies) *HttpRouter {
	return &HttpRouter{deps: deps}
}
