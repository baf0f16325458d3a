package entitlements

import "testing"

func TestParsePlan(t *testing.T) {
	tests := []struct {
		in     string
		want   Plan
		wantOK bool
	}{
		{in: "PRO", want: PlanPro, wantOK: true},
		{in: "plus", want: PlanPlus, wantOK: true},
		{in: "  Plus ", want: PlanPlus, wantOK: true},
		{in: "", wantOK: false},
		{in: "premium", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := ParsePlan(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Fatalf("ParsePlan(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestRank(t *testing.T) {
	if Rank(PlanPlus) >= Rank(PlanPro) {
		t.Fatalf("expected PRO to outrank PLUS")
	}
	if Rank(Plan("gold")) != 0 {
		t.Fatalf("expected unknown plan to rank 0")
	}
}

func TestHighest(t *testing.T) {
	if Highest() != PlanPro {
		t.Fatalf("expected highest tier to be PRO, got %q", Highest())
	}
}

func TestValid(t *testing.T) {
	for _, p := range []Plan{PlanPro, PlanPlus} {
		if !p.Valid() {
			t.Fatalf("expected %q to be valid", p)
		}
	}
	for _, p := range []Plan{"pro", " PLUS", "GOLD", ""} {
		if p.Valid() {
			t.Fatalf("expected %q to be invalid", p)
		}
	}
}
