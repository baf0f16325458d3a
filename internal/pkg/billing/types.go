package billing

// PayPal subscription webhook event types handled by the mapper.
const (
	EventSubscriptionActivated     = "BILLING.SUBSCRIPTION.ACTIVATED"
	EventSubscriptionUpdated       = "BILLING.SUBSCRIPTION.UPDATED"
	EventSubscriptionCancelled     = "BILLING.SUBSCRIPTION.CANCELLED"
	EventSubscriptionSuspended     = "BILLING.SUBSCRIPTION.SUSPENDED"
	EventSubscriptionExpired       = "BILLING.SUBSCRIPTION.EXPIRED"
	EventSubscriptionPaymentFailed = "BILLING.SUBSCRIPTION.PAYMENT.FAILED"
)

// ResourceStatusActive is the PayPal subscription status that counts as active.
const ResourceStatusActive = "ACTIVE"

// Event is the subset of a PayPal webhook envelope the relay reacts to.
type Event struct {
	ID           string   `json:"id"`
	EventType    string   `json:"event_type"`
	ResourceType string   `json:"resource_type"`
	Resource     Resource `json:"resource"`
}

// Resource is the subscription object carried by the event.
type Resource struct {
	ID       string `json:"id"`
	PlanID   string `json:"plan_id"`
	Status   string `json:"status"`
	CustomID string `json:"custom_id"`
}

// WebhookResult describes what happened to an event.
type WebhookResult struct {
	UID       string
	Applied   bool
	Ignored   bool
	Duplicate bool
}
