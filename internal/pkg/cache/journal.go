package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// WebhookEventKeyPrefix namespaces applied webhook event ids.
const WebhookEventKeyPrefix = "contapp:paypal:webhook:"

// DeliveryJournal remembers applied webhook event ids for a limited time.
type DeliveryJournal struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDeliveryJournal(client *redis.Client, ttl time.Duration) *DeliveryJournal {
	return &DeliveryJournal{client: client, ttl: ttl}
}

func (j *DeliveryJournal) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := j.client.Exists(ctx, WebhookEventKeyPrefix+eventID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Remember records eventID. A zero ttl keeps the key forever.
func (j *DeliveryJournal) Remember(ctx context.Context, eventID string) error {
	return j.client.Set(ctx, WebhookEventKeyPrefix+eventID, time.Now().UTC().Format(time.RFC3339), j.ttl).Err()
}
