package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ManuelReschke/contapp-relay/app/models"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/billing"
)

// firestoreUserSubscriptionRepository stores one document per user, keyed by uid
type firestoreUserSubscriptionRepository struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreUserSubscriptionRepository creates a repository over the users collection
func NewFirestoreUserSubscriptionRepository(client *firestore.Client) UserSubscriptionRepository {
	return &firestoreUserSubscriptionRepository{client: client, collection: models.UsersCollection}
}

func (r *firestoreUserSubscriptionRepository) FindByKey(ctx context.Context, uid string) (*models.UserSubscription, error) {
	snap, err := r.client.Collection(r.collection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, billing.ErrRecordNotFound
		}
		return nil, err
	}
	return decodeSubscription(snap)
}

// FindBySubscriptionID returns the first matching document in query order
func (r *firestoreUserSubscriptionRepository) FindBySubscriptionID(ctx context.Context, subscriptionID string) (*models.UserSubscription, error) {
	iter := r.client.Collection(r.collection).
		Where(string(billing.FieldPayPalSubscriptionID), "==", subscriptionID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, billing.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeSubscription(snap)
}

// UpsertMerge writes only the listed fields with MergeAll, so other fields of
// the user document survive.
func (r *firestoreUserSubscriptionRepository) UpsertMerge(ctx context.Context, uid string, updates billing.UpdateSet) error {
	data := map[string]interface{}{
		string(billing.FieldUpdatedAt): firestore.ServerTimestamp,
	}
	for _, f := range updates.Fields() {
		u := updates[f]
		switch {
		case u.Op == billing.OpDelete:
			data[string(f)] = firestore.Delete
		case u.Value == nil:
			data[string(f)] = nil
		default:
			data[string(f)] = *u.Value
		}
	}

	_, err := r.client.Collection(r.collection).Doc(uid).Set(ctx, data, firestore.MergeAll)
	return err
}

func decodeSubscription(snap *firestore.DocumentSnapshot) (*models.UserSubscription, error) {
	var rec models.UserSubscription
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", snap.Ref.ID, err)
	}
	rec.UID = snap.Ref.ID
	return &rec, nil
}
