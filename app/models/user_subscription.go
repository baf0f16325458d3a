package models

import "time"

// Subscription status values written by the PayPal webhook.
const (
	SubscriptionStatusActive    = "ACTIVE"
	SubscriptionStatusSuspended = "SUSPENDED"
)

// UsersCollection is the Firestore collection holding one document per user.
const UsersCollection = "users"

// UserSubscription is the per-user subscription record. It is created on the
// first merge-upsert and never deleted. Nil fields are absent (or null) in the
// underlying document.
type UserSubscription struct {
	UID                  string    `gorm:"primaryKey;type:varchar(128)" json:"uid" firestore:"-"`
	PayPalSubscriptionID *string   `gorm:"column:paypal_subscription_id;type:varchar(64);index:idx_user_subscriptions_paypal_subscription_id" json:"paypalSubscriptionId,omitempty" firestore:"paypalSubscriptionId"`
	PayPalPlanID         *string   `gorm:"column:paypal_plan_id;type:varchar(64)" json:"paypalPlanId,omitempty" firestore:"paypalPlanId"`
	Plan                 *string   `gorm:"type:varchar(16)" json:"plan,omitempty" firestore:"plan"`
	PendingPlan          *string   `gorm:"type:varchar(16)" json:"pendingPlan,omitempty" firestore:"pendingPlan"`
	Status               *string   `gorm:"type:varchar(16)" json:"status,omitempty" firestore:"status"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"-" firestore:"-"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updatedAt" firestore:"updatedAt"`
}

func (UserSubscription) TableName() string {
	return "user_subscriptions"
}

// IsActive reports whether the user currently holds an entitled plan.
func (s *UserSubscription) IsActive() bool {
	return s != nil && s.Status != nil && *s.Status == SubscriptionStatusActive
}
