package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/contapp-relay/internal/pkg/constants"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/middleware"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/usercontext"
)

// ApiRouter installs the routes that require an identity token
type ApiRouter struct {
	deps Dependencies
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	requireAuth := middleware.RequireIdentityToken(h.deps.Verifier)

	chatHandlers := []fiber.Handler{requireAuth}
	if h.deps.ChatRateLimit > 0 {
		chatHandlers = append(chatHandlers, h.chatLimiter())
	}
	chatHandlers = append(chatHandlers, h.deps.Chat.HandleChat)
	app.Post(constants.ChatRoute, chatHandlers...)

	paypal := app.Group(constants.PayPalPrefix)
	paypal.Post(constants.CreateSubscriptionRoute, requireAuth, h.deps.Billing.HandleCreateSubscription)
	paypal.Get(constants.SubscriptionRoute, requireAuth, h.deps.Billing.HandleGetSubscription)
}

// chatLimiter counts chat requests per verified user
func (h ApiRouter) chatLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        h.deps.ChatRateLimit,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "chat:" + usercontext.GetUID(c)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many requests"})
		},
		Storage: h.deps.LimiterStorage,
	})
}

func NewApiRouter(deps Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}
