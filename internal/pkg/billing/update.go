package billing

import (
	"sort"

	"github.com/ManuelReschke/contapp-relay/app/models"
)

// Field names a mutable field of the user subscription record. The value is
// the document field name used by the Firestore store.
type Field string

const (
	FieldPayPalSubscriptionID Field = "paypalSubscriptionId"
	FieldPayPalPlanID         Field = "paypalPlanId"
	FieldPlan                 Field = "plan"
	FieldPendingPlan          Field = "pendingPlan"
	FieldStatus               Field = "status"
)

// FieldUpdatedAt is stamped by every store on every write.
const FieldUpdatedAt Field = "updatedAt"

// Op is the instruction carried by a FieldUpdate.
type Op uint8

const (
	OpUnchanged Op = iota
	OpSet
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpSet:
		return "set"
	case OpDelete:
		return "delete"
	default:
		return "unchanged"
	}
}

// FieldUpdate is a tagged write instruction. For OpSet a nil Value writes an
// explicit null.
type FieldUpdate struct {
	Op    Op
	Value *string
}

func Set(v string) FieldUpdate {
	return FieldUpdate{Op: OpSet, Value: &v}
}

func SetNull() FieldUpdate {
	return FieldUpdate{Op: OpSet}
}

func Delete() FieldUpdate {
	return FieldUpdate{Op: OpDelete}
}

func Unchanged() FieldUpdate {
	return FieldUpdate{}
}

// UpdateSet holds the instructions for one merge-upsert. Missing fields are
// unchanged.
type UpdateSet map[Field]FieldUpdate

// Get returns the instruction for f, Unchanged when none was recorded.
func (s UpdateSet) Get(f Field) FieldUpdate {
	if u, ok := s[f]; ok {
		return u
	}
	return Unchanged()
}

// Fields returns the fields that will be written, sorted by name.
func (s UpdateSet) Fields() []Field {
	fields := make([]Field, 0, len(s))
	for f, u := range s {
		if u.Op == OpUnchanged {
			continue
		}
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// ApplyTo writes the instructions onto an in-memory record. Delete and an
// explicit null both leave the field nil.
func (s UpdateSet) ApplyTo(rec *models.UserSubscription) {
	for _, f := range s.Fields() {
		target := recordField(rec, f)
		if target == nil {
			continue
		}
		u := s[f]
		if u.Op == OpDelete || u.Value == nil {
			*target = nil
			continue
		}
		v := *u.Value
		*target = &v
	}
}

func recordField(rec *models.UserSubscription, f Field) **string {
	switch f {
	case FieldPayPalSubscriptionID:
		return &rec.PayPalSubscriptionID
	case FieldPayPalPlanID:
		return &rec.PayPalPlanID
	case FieldPlan:
		return &rec.Plan
	case FieldPendingPlan:
		return &rec.PendingPlan
	case FieldStatus:
		return &rec.Status
	default:
		return nil
	}
}
