package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/contapp-relay/app/models"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/billing"
)

// gormUserSubscriptionRepository implements UserSubscriptionRepository on SQL
type gormUserSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormUserSubscriptionRepository creates a SQL backed repository
func NewGormUserSubscriptionRepository(db *gorm.DB) UserSubscriptionRepository {
	return &gormUserSubscriptionRepository{db: db}
}

func (r *gormUserSubscriptionRepository) FindByKey(ctx context.Context, uid string) (*models.UserSubscription, error) {
	var rec models.UserSubscription
	err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&rec).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return &rec, nil
}

// FindBySubscriptionID returns the first match in primary key order
func (r *gormUserSubscriptionRepository) FindBySubscriptionID(ctx context.Context, subscriptionID string) (*models.UserSubscription, error) {
	var rec models.UserSubscription
	err := r.db.WithContext(ctx).Where("paypal_subscription_id = ?", subscriptionID).First(&rec).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return &rec, nil
}

// UpsertMerge inserts the row or, on a uid conflict, assigns only the listed
// columns plus updated_at.
func (r *gormUserSubscriptionRepository) UpsertMerge(ctx context.Context, uid string, updates billing.UpdateSet) error {
	now := time.Now().UTC()
	row := models.UserSubscription{UID: uid, CreatedAt: now, UpdatedAt: now}
	updates.ApplyTo(&row)

	assignments := map[string]interface{}{"updated_at": now}
	for _, f := range updates.Fields() {
		col, ok := sqlColumns[f]
		if !ok {
			continue
		}
		u := updates[f]
		if u.Op == billing.OpDelete || u.Value == nil {
			assignments[col] = nil
			continue
		}
		assignments[col] = *u.Value
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&row).Error
}

func translateGormError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return billing.ErrRecordNotFound
	}
	return err
}
