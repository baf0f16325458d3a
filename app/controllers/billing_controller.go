package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/contapp-relay/internal/pkg/billing"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/entitlements"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/paypal"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/usercontext"
)

const payPalCallTimeout = 15 * time.Second

// PayPalGateway is the subset of the PayPal API used by the billing routes.
type PayPalGateway interface {
	CreateSubscription(ctx context.Context, in paypal.CreateSubscriptionRequest) (*paypal.Subscription, error)
	VerifyWebhookSignature(ctx context.Context, headers paypal.SignatureHeaders, rawEvent json.RawMessage) (bool, error)
}

type BillingController struct {
	service    *billing.Service
	paypal     PayPalGateway
	plans      billing.PlanCatalog
	appBaseURL string
}

func NewBillingController(service *billing.Service, gateway PayPalGateway, plans billing.PlanCatalog, appBaseURL string) *BillingController {
	return &BillingController{
		service:    service,
		paypal:     gateway,
		plans:      plans,
		appBaseURL: appBaseURL,
	}
}

type createSubscriptionRequest struct {
	PlanCode string `json:"planCode" validate:"required"`
}

// HandleCreateSubscription starts a PayPal subscription for the caller and
// records it as pending.
func (bc *BillingController) HandleCreateSubscription(c *fiber.Ctx) error {
	uid := usercontext.GetUID(c)
	if uid == "" {
		return errorJSON(c, fiber.StatusUnauthorized, "Missing auth token")
	}

	var req createSubscriptionRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || validate.Struct(req) != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid plan")
	}
	// planCode must be spelled exactly; custom_id parsing is the lenient path.
	plan := entitlements.Plan(req.PlanCode)
	if !plan.Valid() {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid plan")
	}
	planID, ok := bc.plans.PlanID(plan)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid plan")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), payPalCallTimeout)
	defer cancel()

	base := requestBaseURL(c, bc.appBaseURL)
	sub, err := bc.paypal.CreateSubscription(ctx, paypal.CreateSubscriptionRequest{
		PlanID:    planID,
		CustomID:  fmt.Sprintf("%s:%s", uid, plan),
		ReturnURL: base + "/dashboard/plan?paypal=success",
		CancelURL: base + "/dashboard/plan?paypal=cancel",
	})
	if err != nil {
		var apiErr *paypal.APIError
		if errors.As(err, &apiErr) {
			return errorJSON(c, apiErr.StatusCode, apiErr.Message)
		}
		fiberlog.Errorf("create subscription for %s failed: %v", uid, err)
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}

	approvalURL := sub.ApprovalURL()
	if approvalURL == "" {
		return errorJSON(c, fiber.StatusInternalServerError, "No approval link")
	}

	if err := bc.service.RecordPendingSubscription(ctx, uid, sub.ID, planID, plan); err != nil {
		fiberlog.Errorf("record pending subscription %s for %s failed: %v", sub.ID, uid, err)
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"approvalUrl":    approvalURL,
		"subscriptionId": sub.ID,
	})
}

// HandlePayPalWebhook verifies a PayPal delivery and applies it to the
// matching user record.
func (bc *BillingController) HandlePayPalWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.Body()...)

	var event billing.Event
	if !json.Valid(rawBody) || json.Unmarshal(rawBody, &event) != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid payload")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), payPalCallTimeout)
	defer cancel()

	headers := paypal.SignatureHeadersFrom(func(key string) string { return c.Get(key) })
	verified, err := bc.paypal.VerifyWebhookSignature(ctx, headers, rawBody)
	if err != nil {
		fiberlog.Errorf("webhook %s verification failed: %v", event.ID, err)
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
	if !verified {
		return errorJSON(c, fiber.StatusBadRequest, "Webhook not verified")
	}

	result, err := bc.service.ApplyWebhookEvent(ctx, event)
	if err != nil {
		fiberlog.Errorf("webhook %s (%s) failed: %v", event.ID, event.EventType, err)
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}

	switch {
	case result.Duplicate:
		fiberlog.Infof("webhook %s (%s) already applied", event.ID, event.EventType)
		return c.JSON(fiber.Map{"ok": true, "duplicate": true})
	case result.Ignored:
		fiberlog.Warnf("webhook %s (%s) matched no user", event.ID, event.EventType)
		return c.JSON(fiber.Map{"ok": true, "ignored": true})
	}
	fiberlog.Infof("webhook %s (%s) applied to user %s", event.ID, event.EventType, result.UID)
	return c.JSON(fiber.Map{"ok": true})
}

// HandleGetSubscription returns the caller's subscription record, or null
// before the first write.
func (bc *BillingController) HandleGetSubscription(c *fiber.Ctx) error {
	uid := usercontext.GetUID(c)
	if uid == "" {
		return errorJSON(c, fiber.StatusUnauthorized, "Missing auth token")
	}

	rec, err := bc.service.GetSubscription(c.UserContext(), uid)
	if err != nil {
		if errors.Is(err, billing.ErrRecordNotFound) {
			return c.JSON(fiber.Map{"subscription": nil, "active": false})
		}
		fiberlog.Errorf("load subscription for %s failed: %v", uid, err)
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to load subscription")
	}
	return c.JSON(fiber.Map{"subscription": rec, "active": rec.IsActive()})
}
