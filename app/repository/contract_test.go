package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/contapp-relay/internal/pkg/billing"
)

// runRepositoryContract checks the behavior every store driver must share.
func runRepositoryContract(t *testing.T, repo UserSubscriptionRepository) {
	ctx := context.Background()

	t.Run("missing record", func(t *testing.T) {
		_, err := repo.FindByKey(ctx, "missing-"+uuid.NewString())
		assert.ErrorIs(t, err, billing.ErrRecordNotFound)

		_, err = repo.FindBySubscriptionID(ctx, "I-"+uuid.NewString())
		assert.ErrorIs(t, err, billing.ErrRecordNotFound)
	})

	t.Run("upsert creates then merges", func(t *testing.T) {
		uid := "u-" + uuid.NewString()
		subID := "I-" + uuid.NewString()

		require.NoError(t, repo.UpsertMerge(ctx, uid, billing.UpdateSet{
			billing.FieldPayPalSubscriptionID: billing.Set(subID),
			billing.FieldPayPalPlanID:         billing.Set("P-PLUS"),
			billing.FieldPendingPlan:          billing.Set("PLUS"),
		}))

		rec, err := repo.FindByKey(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, uid, rec.UID)
		require.NotNil(t, rec.PendingPlan)
		assert.Equal(t, "PLUS", *rec.PendingPlan)
		assert.Nil(t, rec.Status)
		assert.False(t, rec.UpdatedAt.IsZero())
		firstUpdate := rec.UpdatedAt

		time.Sleep(10 * time.Millisecond)
		require.NoError(t, repo.UpsertMerge(ctx, uid, billing.UpdateSet{
			billing.FieldStatus:       billing.Set("ACTIVE"),
			billing.FieldPlan:         billing.Set("PLUS"),
			billing.FieldPendingPlan:  billing.Delete(),
			billing.FieldPayPalPlanID: billing.Unchanged(),
		}))

		rec, err = repo.FindByKey(ctx, uid)
		require.NoError(t, err)
		require.NotNil(t, rec.Status)
		assert.Equal(t, "ACTIVE", *rec.Status)
		assert.Equal(t, "PLUS", *rec.Plan)
		assert.Nil(t, rec.PendingPlan)
		require.NotNil(t, rec.PayPalPlanID)
		assert.Equal(t, "P-PLUS", *rec.PayPalPlanID)
		require.NotNil(t, rec.PayPalSubscriptionID)
		assert.Equal(t, subID, *rec.PayPalSubscriptionID)
		assert.False(t, rec.UpdatedAt.Before(firstUpdate))

		found, err := repo.FindBySubscriptionID(ctx, subID)
		require.NoError(t, err)
		assert.Equal(t, uid, found.UID)
	})

	t.Run("explicit null clears field", func(t *testing.T) {
		uid := "u-" + uuid.NewString()
		subID := "I-" + uuid.NewString()
		require.NoError(t, repo.UpsertMerge(ctx, uid, billing.UpdateSet{
			billing.FieldPayPalSubscriptionID: billing.Set(subID),
		}))
		require.NoError(t, repo.UpsertMerge(ctx, uid, billing.UpdateSet{
			billing.FieldPayPalSubscriptionID: billing.SetNull(),
		}))

		rec, err := repo.FindByKey(ctx, uid)
		require.NoError(t, err)
		assert.Nil(t, rec.PayPalSubscriptionID)

		_, err = repo.FindBySubscriptionID(ctx, subID)
		assert.ErrorIs(t, err, billing.ErrRecordNotFound)
	})
}
