// Package lifecycle owns the status tables of the four HR record types:
// which statuses exist, which one a new record starts in, and which ones
// lock a record against deletion. Membership is the only transition rule;
// any declared status is reachable from any other.
package lifecycle

// Entity identifies one of the governed record types.
type Entity string

const (
	Application       Entity = "application"
	Leave             Entity = "leave"
	Payroll           Entity = "payroll"
	PerformanceReview Entity = "performance_review"
)

// Application stages.
const (
	StageApplied   = "Applied"
	StageScreening = "Screening"
	StageInterview = "Interview"
	StageOffer     = "Offer"
	StageHired     = "Hired"
	StageRejected  = "Rejected"
)

// Leave statuses.
const (
	LeaveApplied      = "Applied"
	LeaveUnderProcess = "Under Process"
	LeaveApproved     = "Approved"
	LeaveRejected     = "Rejected"
)

// Payroll statuses.
const (
	PayrollPending    = "Pending"
	PayrollProcessing = "Processing"
	PayrollPaid       = "Paid"
	PayrollFailed     = "Failed"
)

// Performance review statuses.
const (
	ReviewPending      = "Pending"
	ReviewAcknowledged = "Acknowledged"
	ReviewDisputed     = "Disputed"
)

type table struct {
	states  []string
	initial string
	locked  []string
}

var tables = map[Entity]table{
	Application: {
		states: []string{StageApplied, StageScreening, StageInterview, StageOffer, StageHired, StageRejected},
		// initial stage is caller-supplied; no delete lock
	},
	Leave: {
		states:  []string{LeaveApplied, LeaveUnderProcess, LeaveApproved, LeaveRejected},
		initial: LeaveApplied,
		locked:  []string{LeaveApproved},
	},
	Payroll: {
		states:  []string{PayrollPending, PayrollProcessing, PayrollPaid, PayrollFailed},
		initial: PayrollPending,
		locked:  []string{PayrollPaid},
	},
	PerformanceReview: {
		states:  []string{ReviewPending, ReviewAcknowledged, ReviewDisputed},
		initial: ReviewPending,
		locked:  []string{ReviewAcknowledged, ReviewDisputed},
	},
}

// Valid reports whether status is a declared member of the entity's enum.
func Valid(entity Entity, status string) bool {
	for _, s := range tables[entity].states {
		if s == status {
			return true
		}
	}
	return false
}

// Initial returns the system-assigned initial status for the entity, or ""
// when the initial status is caller-supplied (Application).
func Initial(entity Entity) string {
	return tables[entity].initial
}

// DeleteLocked reports whether a record in the given status may no longer
// be deleted.
func DeleteLocked(entity Entity, status string) bool {
	for _, s := range tables[entity].locked {
		if s == status {
			return true
		}
	}
	return false
}

// States returns the declared status set of the entity.
func States(entity Entity) []string {
	src := tables[entity].states
	out := make([]string, len(src))
	copy(out, src)
	return out
}
