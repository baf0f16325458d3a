package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/contapp-relay/app/models"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/entitlements"
)

// Service reconciles PayPal subscription state into user records.
type Service struct {
	repo    Repository
	mapper  *Mapper
	journal DeliveryJournal
}

// NewService creates a billing service. journal may be nil.
func NewService(repo Repository, mapper *Mapper, journal DeliveryJournal) *Service {
	return &Service{repo: repo, mapper: mapper, journal: journal}
}

// ApplyWebhookEvent maps a verified event onto its user record with a single
// merge-upsert. Events that resolve to no user are acknowledged as ignored.
func (s *Service) ApplyWebhookEvent(ctx context.Context, ev Event) (WebhookResult, error) {
	eventID := strings.TrimSpace(ev.ID)
	if s.seen(ctx, eventID) {
		return WebhookResult{Duplicate: true}, nil
	}

	mut := s.mapper.Map(ev)
	uid, err := s.resolveTarget(ctx, mut)
	if err != nil {
		return WebhookResult{}, err
	}
	if uid == "" {
		s.remember(ctx, eventID)
		return WebhookResult{Ignored: true}, nil
	}

	if err := s.repo.UpsertMerge(ctx, uid, mut.Updates); err != nil {
		return WebhookResult{}, fmt.Errorf("apply %s for user %s: %w", ev.EventType, uid, err)
	}
	s.remember(ctx, eventID)
	return WebhookResult{UID: uid, Applied: true}, nil
}

// resolveTarget returns the uid named by custom_id or, failing that, the user
// holding the subscription id. Empty means no target.
func (s *Service) resolveTarget(ctx context.Context, mut Mutation) (string, error) {
	if mut.UID != "" {
		return mut.UID, nil
	}
	if mut.SubscriptionID == "" {
		return "", nil
	}
	rec, err := s.repo.FindBySubscriptionID(ctx, mut.SubscriptionID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("lookup subscription %s: %w", mut.SubscriptionID, err)
	}
	return rec.UID, nil
}

// RecordPendingSubscription stores a freshly created, not yet approved
// subscription on the user record.
func (s *Service) RecordPendingSubscription(ctx context.Context, uid, subscriptionID, planID string, plan entitlements.Plan) error {
	uid = strings.TrimSpace(uid)
	if uid == "" || strings.TrimSpace(subscriptionID) == "" {
		return errors.New("uid and subscription id are required")
	}
	return s.repo.UpsertMerge(ctx, uid, UpdateSet{
		FieldPayPalSubscriptionID: Set(strings.TrimSpace(subscriptionID)),
		FieldPayPalPlanID:         Set(strings.TrimSpace(planID)),
		FieldPendingPlan:          Set(plan.String()),
	})
}

// GetSubscription returns the user's record or ErrRecordNotFound.
func (s *Service) GetSubscription(ctx context.Context, uid string) (*models.UserSubscription, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, errors.New("uid is required")
	}
	return s.repo.FindByKey(ctx, uid)
}

func (s *Service) seen(ctx context.Context, eventID string) bool {
	if s.journal == nil || eventID == "" {
		return false
	}
	seen, err := s.journal.Seen(ctx, eventID)
	if err != nil {
		fiberlog.Warnf("webhook journal lookup for %s failed: %v", eventID, err)
		return false
	}
	return seen
}

func (s *Service) remember(ctx context.Context, eventID string) {
	if s.journal == nil || eventID == "" {
		return
	}
	if err := s.journal.Remember(ctx, eventID); err != nil {
		fiberlog.Warnf("webhook journal write for %s failed: %v", eventID, err)
	}
}
