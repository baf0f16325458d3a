package constants

// Route constants
const (
	HealthRoute  = "/health"
	ChatRoute    = "/chat"
	PayPalPrefix = "/paypal"

	CreateSubscriptionRoute = "/create-subscription"
	WebhookRoute            = "/webhook"
	SubscriptionRoute       = "/subscription"

	MetricsRoute = "/metrics"
	DocsBasePath = "/docs/api/"
	DocsFilePath = "public/docs/v1/openapi.yml"
)
