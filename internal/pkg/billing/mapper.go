package billing

import (
	"strings"

	"github.com/ManuelReschke/contapp-relay/app/models"
	"github.com/ManuelReschke/contapp-relay/internal/pkg/entitlements"
)

// Mutation is the mapper's output for one event: where it may apply and what
// it writes.
type Mutation struct {
	// UID comes from custom_id and needs no store lookup. Empty when the
	// event does not name a user.
	UID string
	// SubscriptionID is the secondary lookup key used when UID is empty.
	SubscriptionID string
	Updates        UpdateSet
}

// Mapper turns PayPal subscription events into record updates.
type Mapper struct {
	plans PlanCatalog
	// stampMissingIDs overwrites paypalSubscriptionId/paypalPlanId with null
	// when the event resource lacks them.
	stampMissingIDs bool
}

func NewMapper(plans PlanCatalog, stampMissingIDs bool) *Mapper {
	return &Mapper{plans: plans, stampMissingIDs: stampMissingIDs}
}

// ParseCustomID splits "<uid>:<planCode>". A value without a colon is a bare
// uid. The plan segment is returned only when it is a known plan code.
func ParseCustomID(customID string) (string, entitlements.Plan) {
	customID = strings.TrimSpace(customID)
	uid, rawPlan, _ := strings.Cut(customID, ":")
	plan, ok := entitlements.ParsePlan(rawPlan)
	if !ok {
		plan = ""
	}
	return strings.TrimSpace(uid), plan
}

// Map is pure: the same event always yields the same mutation.
func (m *Mapper) Map(ev Event) Mutation {
	res := ev.Resource
	uid, customPlan := ParseCustomID(res.CustomID)
	subscriptionID := strings.TrimSpace(res.ID)
	planID := strings.TrimSpace(res.PlanID)

	updates := UpdateSet{
		FieldPayPalSubscriptionID: m.stampID(subscriptionID),
		FieldPayPalPlanID:         m.stampID(planID),
	}

	activate := func() {
		updates[FieldStatus] = Set(models.SubscriptionStatusActive)
		updates[FieldPlan] = Set(m.plans.resolvePlan(planID, customPlan).String())
		updates[FieldPendingPlan] = Delete()
	}

	switch strings.TrimSpace(ev.EventType) {
	case EventSubscriptionActivated:
		activate()
	case EventSubscriptionCancelled,
		EventSubscriptionSuspended,
		EventSubscriptionExpired,
		EventSubscriptionPaymentFailed:
		updates[FieldStatus] = Set(models.SubscriptionStatusSuspended)
		updates[FieldPendingPlan] = Delete()
	case EventSubscriptionUpdated:
		if strings.EqualFold(strings.TrimSpace(res.Status), ResourceStatusActive) {
			activate()
		}
	}

	return Mutation{
		UID:            uid,
		SubscriptionID: subscriptionID,
		Updates:        updates,
	}
}

func (m *Mapper) stampID(id string) FieldUpdate {
	if id != "" {
		return Set(id)
	}
	if m.stampMissingIDs {
		return SetNull()
	}
	return Unchanged()
}
