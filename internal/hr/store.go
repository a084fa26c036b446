package hr

import (
	"context"
	"time"
)

// Store bundles the four entity repositories.
type Store interface {
	Applications() ApplicationStore
	Leaves() LeaveStore
	Payrolls() PayrollStore
	Reviews() ReviewStore
}

// ApplicationStore persists job applications.
type ApplicationStore interface {
	Create(ctx context.Context, app *Application) error
	Find(ctx context.Context, id string) (*Application, error)
	UpdateStage(ctx context.Context, id, stage string) error
	List(ctx context.Context, filter ApplicationFilter, page Page) ([]*Application, error)
	Delete(ctx context.Context, id string) error
}

// LeaveStore persists leave requests.
type LeaveStore interface {
	Create(ctx context.Context, leave *Leave) error
	Find(ctx context.Context, id string) (*Leave, error)
	UpdateStatus(ctx context.Context, id, status string) error
	List(ctx context.Context, filter LeaveFilter, page Page) ([]*Leave, error)
	// ListByEmployee returns the employee's own leaves, newest start date
	// first. Zero from/to means no date-range restriction.
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]*Leave, error)
	Delete(ctx context.Context, id string) error
}

// PayrollStore persists payroll records.
type PayrollStore interface {
	Create(ctx context.Context, p *Payroll) error
	Find(ctx context.Context, id string) (*Payroll, error)
	UpdateStatus(ctx context.Context, id, status string) error
	List(ctx context.Context, filter PayrollFilter, page Page) ([]*Payroll, error)
	// History returns the employee's payroll records ordered year desc,
	// month desc. year <= 0 means all years.
	History(ctx context.Context, employeeID string, year int) ([]*Payroll, error)
	Delete(ctx context.Context, id string) error
}

// ReviewStore persists performance reviews.
type ReviewStore interface {
	Create(ctx context.Context, rev *PerformanceReview) error
	Find(ctx context.Context, id string) (*PerformanceReview, error)
	// UpdateStatus applies the status plus the employee's response fields.
	UpdateStatus(ctx context.Context, id, status, employeeComments string, acknowledgedAt *time.Time) error
	List(ctx context.Context, filter ReviewFilter, page Page) ([]*PerformanceReview, error)
	// History returns the employee's reviews ordered by period descending.
	// periodYear filters periods whose label contains the year; "" means all.
	History(ctx context.Context, employeeID, periodYear string) ([]*PerformanceReview, error)
	Delete(ctx context.Context, id string) error
}
