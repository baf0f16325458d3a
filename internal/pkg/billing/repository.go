package billing

import (
	"context"
	"errors"

	"github.com/ManuelReschke/contapp-relay/app/models"
)

// ErrRecordNotFound is returned by repositories when no record matches.
var ErrRecordNotFound = errors.New("user subscription not found")

// Repository is the user record store used by the billing service.
type Repository interface {
	// FindByKey loads the record of one user.
	FindByKey(ctx context.Context, uid string) (*models.UserSubscription, error)
	// FindBySubscriptionID returns at most one record whose
	// paypalSubscriptionId matches, in the store's natural order.
	FindBySubscriptionID(ctx context.Context, subscriptionID string) (*models.UserSubscription, error)
	// UpsertMerge creates the record when absent and otherwise writes only
	// the fields listed in updates. updatedAt is always stamped.
	UpsertMerge(ctx context.Context, uid string, updates UpdateSet) error
}

// DeliveryJournal remembers webhook events that were already handled.
type DeliveryJournal interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Remember(ctx context.Context, eventID string) error
}
