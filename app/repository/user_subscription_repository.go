package repository

import (
	"github.com/ManuelReschke/contapp-relay/app/models"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/billing"
)

// UserSubscriptionRepository stores one subscription record per user.
type UserSubscriptionRepository interface {
	billing.Repository
}

// sqlColumns maps update fields to user_subscriptions columns.
var sqlColumns = map[billing.Field]string{
	billing.FieldPayPalSubscriptionID: "paypal_subscription_id",
	billing.FieldPayPalPlanID:         "paypal_plan_id",
	billing.FieldPlan:                 "plan",
	billing.FieldPendingPlan:          "pending_plan",
	billing.FieldStatus:               "status",
}

func cloneSubscription(rec *models.UserSubscription) *models.UserSubscription {
	cp := *rec
	cp.PayPalSubscriptionID = cloneString(rec.PayPalSubscriptionID)
	cp.PayPalPlanID = cloneString(rec.PayPalPlanID)
	cp.Plan = cloneString(rec.Plan)
	cp.PendingPlan = cloneString(rec.PendingPlan)
	cp.Status = cloneString(rec.Status)
	return &cp
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
