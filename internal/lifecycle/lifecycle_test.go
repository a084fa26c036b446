package lifecycle

import "testing"

func TestValid(t *testing.T) {
	cases := []struct {
		entity Entity
		status string
		want   bool
	}{
		{Application, StageApplied, true},
		{Application, StageHired, true},
		{Application, "Onboarding", false},
		{Leave, LeaveUnderProcess, true},
		{Leave, "Pending", false},
		{Payroll, PayrollFailed, true},
		{Payroll, "Approved", false},
		{PerformanceReview, ReviewDisputed, true},
		{PerformanceReview, "", false},
		{Entity("unknown"), "Applied", false},
	}
	for _, tc := range cases {
		if got := Valid(tc.entity, tc.status); got != tc.want {
			t.Errorf("Valid(%s, %q) = %v, want %v", tc.entity, tc.status, got, tc.want)
		}
	}
}

func TestInitial(t *testing.T) {
	if got := Initial(Application); got != "" {
		t.Errorf("Application initial should be caller-supplied, got %q", got)
	}
	if got := Initial(Leave); got != LeaveApplied {
		t.Errorf("Leave initial = %q, want %q", got, LeaveApplied)
	}
	if got := Initial(Payroll); got != PayrollPending {
		t.Errorf("Payroll initial = %q, want %q", got, PayrollPending)
	}
	if got := Initial(PerformanceReview); got != ReviewPending {
		t.Errorf("PerformanceReview initial = %q, want %q", got, ReviewPending)
	}
}

func TestDeleteLocked(t *testing.T) {
	for _, stage := range States(Application) {
		if DeleteLocked(Application, stage) {
			t.Errorf("applications must never lock, stage %q did", stage)
		}
	}
	if !DeleteLocked(Leave, LeaveApproved) {
		t.Errorf("approved leave should be locked")
	}
	if DeleteLocked(Leave, LeaveRejected) {
		t.Errorf("rejected leave should not be locked")
	}
	if !DeleteLocked(Payroll, PayrollPaid) {
		t.Errorf("paid payroll should be locked")
	}
	if DeleteLocked(Payroll, PayrollProcessing) {
		t.Errorf("processing payroll should not be locked")
	}
	if !DeleteLocked(PerformanceReview, ReviewAcknowledged) || !DeleteLocked(PerformanceReview, ReviewDisputed) {
		t.Errorf("acknowledged and disputed reviews should be locked")
	}
	if DeleteLocked(PerformanceReview, ReviewPending) {
		t.Errorf("pending review should not be locked")
	}
}

func TestStatesIsACopy(t *testing.T) {
	states := States(Leave)
	if len(states) != 4 {
		t.Fatalf("unexpected leave states: %v", states)
	}
	states[0] = "mutated"
	if States(Leave)[0] != LeaveApplied {
		t.Fatalf("States returned shared backing array")
	}
}
