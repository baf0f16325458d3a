package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ManuelReschke/contapp-relay/app/models"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/billing"
)

// memoryUserSubscriptionRepository keeps records in process memory
type memoryUserSubscriptionRepository struct {
	mu      sync.RWMutex
	records map[string]*models.UserSubscription
	now     func() time.Time
}

// NewMemoryUserSubscriptionRepository creates an empty in-memory repository
func NewMemoryUserSubscriptionRepository() UserSubscriptionRepository {
	return &memoryUserSubscriptionRepository{
		records: make(map[string]*models.UserSubscription),
		now:     time.Now,
	}
}

func (r *memoryUserSubscriptionRepository) FindByKey(_ context.Context, uid string) (*models.UserSubscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[uid]
	if !ok {
		return nil, billing.ErrRecordNotFound
	}
	return cloneSubscription(rec), nil
}

// FindBySubscriptionID returns the first match in uid order
func (r *memoryUserSubscriptionRepository) FindBySubscriptionID(_ context.Context, subscriptionID string) (*models.UserSubscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	uids := make([]string, 0, len(r.records))
	for uid := range r.records {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	for _, uid := range uids {
		rec := r.records[uid]
		if rec.PayPalSubscriptionID != nil && *rec.PayPalSubscriptionID == subscriptionID {
			return cloneSubscription(rec), nil
		}
	}
	return nil, billing.ErrRecordNotFound
}

func (r *memoryUserSubscriptionRepository) UpsertMerge(_ context.Context, uid string, updates billing.UpdateSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	rec, ok := r.records[uid]
	if !ok {
		rec = &models.UserSubscription{UID: uid, CreatedAt: now}
		r.records[uid] = rec
	}
	updates.ApplyTo(rec)
	rec.UpdatedAt = now
	return nil
}
