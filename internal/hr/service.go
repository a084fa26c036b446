package hr

import (
	"context"
	"fmt"
	"time"

	"peopledesk.org/internal/ids"
	"peopledesk.org/internal/lifecycle"
	"peopledesk.org/internal/media"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Service composes field validation, lifecycle rules and attachment
// handling on top of the entity stores.
type Service struct {
	store Store
	media media.Uploader
	now   func() time.Time
}

// ServiceOption configures Service.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs Service.
func NewService(store Store, uploader media.Uploader, opts ...ServiceOption) *Service {
	svc := &Service{store: store, media: uploader, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func normalizePage(p Page) Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

// compensate removes uploaded artifacts after a failed record write.
// Best effort: the write error is what surfaces to the caller.
func (s *Service) compensate(ctx context.Context, urls ...string) {
	for _, u := range urls {
		if u != "" {
			_ = s.media.Delete(ctx, u)
		}
	}
}

// Applications --------------------------------------------------------------

// CreateApplicationInput carries caller-supplied application fields plus
// the staged attachment paths.
type CreateApplicationInput struct {
	JobID           int64
	CandidateID     int64
	Stage           string
	ResumePath      string
	CoverLetterPath string
}

// CreateApplication uploads the resume (and optional cover letter), then
// persists the application with the acting employee as interviewer.
func (s *Service) CreateApplication(ctx context.Context, in CreateApplicationInput, actorID string) (*Application, error) {
	if in.JobID <= 0 || in.CandidateID <= 0 || in.Stage == "" {
		return nil, fmt.Errorf("%w: job_id, candidate_id and current_stage are required", ErrInvalidInput)
	}
	if !lifecycle.Valid(lifecycle.Application, in.Stage) {
		return nil, fmt.Errorf("%w: unknown application stage %q", ErrInvalidInput, in.Stage)
	}
	if in.ResumePath == "" {
		return nil, fmt.Errorf("%w: resume file is required", ErrInvalidInput)
	}
	resumeURL, err := s.media.Upload(ctx, in.ResumePath)
	if err != nil {
		return nil, fmt.Errorf("%w: resume upload failed", ErrInvalidInput)
	}
	var coverURL string
	if in.CoverLetterPath != "" {
		coverURL, err = s.media.Upload(ctx, in.CoverLetterPath)
		if err != nil {
			s.compensate(ctx, resumeURL)
			return nil, fmt.Errorf("%w: cover letter upload failed", ErrInvalidInput)
		}
	}
	app := &Application{
		ID:             ids.New(),
		InterviewerID:  actorID,
		JobID:          in.JobID,
		CandidateID:    in.CandidateID,
		Stage:          in.Stage,
		ResumeURL:      resumeURL,
		CoverLetterURL: coverURL,
	}
	if err := s.store.Applications().Create(ctx, app); err != nil {
		s.compensate(ctx, resumeURL, coverURL)
		return nil, err
	}
	return s.store.Applications().Find(ctx, app.ID)
}

func (s *Service) GetApplication(ctx context.Context, id string) (*Application, error) {
	return s.store.Applications().Find(ctx, id)
}

// UpdateApplicationStage moves the application to another pipeline stage.
func (s *Service) UpdateApplicationStage(ctx context.Context, id, stage string) (*Application, error) {
	if !lifecycle.Valid(lifecycle.Application, stage) {
		return nil, fmt.Errorf("%w: unknown application stage %q", ErrInvalidInput, stage)
	}
	if err := s.store.Applications().UpdateStage(ctx, id, stage); err != nil {
		return nil, err
	}
	return s.store.Applications().Find(ctx, id)
}

func (s *Service) ListApplications(ctx context.Context, filter ApplicationFilter, page Page) ([]*Application, error) {
	if filter.Stage != "" && !lifecycle.Valid(lifecycle.Application, filter.Stage) {
		return nil, fmt.Errorf("%w: unknown application stage %q", ErrInvalidInput, filter.Stage)
	}
	return s.store.Applications().List(ctx, filter, normalizePage(page))
}

// DeleteApplication removes the application; no stage locks deletion.
func (s *Service) DeleteApplication(ctx context.Context, id string) error {
	return s.store.Applications().Delete(ctx, id)
}

// Leaves ---------------------------------------------------------------------

// ApplyForLeaveInput carries a leave request plus its staged attachment.
type ApplyForLeaveInput struct {
	Type           string
	StartDate      time.Time
	EndDate        time.Time
	Paid           bool
	HalfDay        bool
	Attendance     int
	AttachmentPath string
}

// ApplyForLeave uploads the supporting document, then persists the request
// with initial status Applied, owned by the acting employee.
func (s *Service) ApplyForLeave(ctx context.Context, in ApplyForLeaveInput, actorID string) (*Leave, error) {
	if in.Type == "" || in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: leave_type, start_date and end_date are required", ErrInvalidInput)
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, fmt.Errorf("%w: end_date precedes start_date", ErrInvalidInput)
	}
	if in.AttachmentPath == "" {
		return nil, fmt.Errorf("%w: supporting document is required", ErrInvalidInput)
	}
	attachmentURL, err := s.media.Upload(ctx, in.AttachmentPath)
	if err != nil {
		return nil, fmt.Errorf("%w: attachment upload failed", ErrInvalidInput)
	}
	leave := &Leave{
		ID:            ids.New(),
		EmployeeID:    actorID,
		Type:          in.Type,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Paid:          in.Paid,
		HalfDay:       in.HalfDay,
		Attendance:    in.Attendance,
		Status:        lifecycle.Initial(lifecycle.Leave),
		AttachmentURL: attachmentURL,
	}
	if err := s.store.Leaves().Create(ctx, leave); err != nil {
		s.compensate(ctx, attachmentURL)
		return nil, err
	}
	return s.store.Leaves().Find(ctx, leave.ID)
}

func (s *Service) GetLeave(ctx context.Context, id string) (*Leave, error) {
	return s.store.Leaves().Find(ctx, id)
}

// UpdateLeaveStatus applies a status from the leave enum.
func (s *Service) UpdateLeaveStatus(ctx context.Context, id, status string) (*Leave, error) {
	if !lifecycle.Valid(lifecycle.Leave, status) {
		return nil, fmt.Errorf("%w: invalid leave status %q", ErrInvalidInput, status)
	}
	if err := s.store.Leaves().UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.store.Leaves().Find(ctx, id)
}

func (s *Service) ListLeaves(ctx context.Context, filter LeaveFilter, page Page) ([]*Leave, error) {
	if filter.Status != "" && !lifecycle.Valid(lifecycle.Leave, filter.Status) {
		return nil, fmt.Errorf("%w: invalid leave status %q", ErrInvalidInput, filter.Status)
	}
	return s.store.Leaves().List(ctx, filter, normalizePage(page))
}

// EmployeeLeaves returns the acting employee's leaves; with year and month
// both set it restricts to leaves starting in that calendar month.
func (s *Service) EmployeeLeaves(ctx context.Context, employeeID string, year, month int) ([]*Leave, error) {
	var from, to time.Time
	if year > 0 && month > 0 {
		if month > 12 {
			return nil, fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
		}
		from = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	}
	return s.store.Leaves().ListByEmployee(ctx, employeeID, from, to)
}

// CancelLeave removes a leave request unless it has been approved.
func (s *Service) CancelLeave(ctx context.Context, id string) error {
	leave, err := s.store.Leaves().Find(ctx, id)
	if err != nil {
		return err
	}
	if lifecycle.DeleteLocked(lifecycle.Leave, leave.Status) {
		return fmt.Errorf("%w: cannot cancel approved leave", ErrConflict)
	}
	return s.store.Leaves().Delete(ctx, id)
}

// Payroll --------------------------------------------------------------------

// GeneratePayrollInput carries the fields of a new payroll record.
type GeneratePayrollInput struct {
	EmployeeID  string
	BasicSalary int64
	Allowances  []NamedAmount
	Deductions  []NamedAmount
	Month       int
	Year        int
}

// GeneratePayroll computes the net total and persists the record with
// initial status Pending.
func (s *Service) GeneratePayroll(ctx context.Context, in GeneratePayrollInput) (*Payroll, error) {
	if in.EmployeeID == "" || in.BasicSalary <= 0 || in.Month == 0 || in.Year == 0 {
		return nil, fmt.Errorf("%w: emp_id, basic_salary, month and year are required", ErrInvalidInput)
	}
	if in.Month < 1 || in.Month > 12 {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
	}
	total := in.BasicSalary
	for _, a := range in.Allowances {
		total += a.Amount
	}
	for _, d := range in.Deductions {
		total -= d.Amount
	}
	p := &Payroll{
		ID:          ids.New(),
		EmployeeID:  in.EmployeeID,
		BasicSalary: in.BasicSalary,
		Allowances:  append([]NamedAmount{}, in.Allowances...),
		Deductions:  append([]NamedAmount{}, in.Deductions...),
		TotalSalary: total,
		Month:       in.Month,
		Year:        in.Year,
		Status:      lifecycle.Initial(lifecycle.Payroll),
	}
	if err := s.store.Payrolls().Create(ctx, p); err != nil {
		return nil, err
	}
	return s.store.Payrolls().Find(ctx, p.ID)
}

func (s *Service) GetPayroll(ctx context.Context, id string) (*Payroll, error) {
	return s.store.Payrolls().Find(ctx, id)
}

// UpdatePayrollStatus applies a status from the payroll enum.
func (s *Service) UpdatePayrollStatus(ctx context.Context, id, status string) (*Payroll, error) {
	if !lifecycle.Valid(lifecycle.Payroll, status) {
		return nil, fmt.Errorf("%w: invalid payment status %q", ErrInvalidInput, status)
	}
	if err := s.store.Payrolls().UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.store.Payrolls().Find(ctx, id)
}

func (s *Service) ListPayrolls(ctx context.Context, filter PayrollFilter, page Page) ([]*Payroll, error) {
	if filter.Status != "" && !lifecycle.Valid(lifecycle.Payroll, filter.Status) {
		return nil, fmt.Errorf("%w: invalid payment status %q", ErrInvalidInput, filter.Status)
	}
	return s.store.Payrolls().List(ctx, filter, normalizePage(page))
}

// PayrollHistory returns the employee's payroll records, optionally
// restricted to one year, newest period first.
func (s *Service) PayrollHistory(ctx context.Context, employeeID string, year int) ([]*Payroll, error) {
	if employeeID == "" {
		return nil, fmt.Errorf("%w: employee id is required", ErrInvalidInput)
	}
	return s.store.Payrolls().History(ctx, employeeID, year)
}

// DeletePayroll removes a payroll record unless it has been paid.
func (s *Service) DeletePayroll(ctx context.Context, id string) error {
	p, err := s.store.Payrolls().Find(ctx, id)
	if err != nil {
		return err
	}
	if lifecycle.DeleteLocked(lifecycle.Payroll, p.Status) {
		return fmt.Errorf("%w: cannot delete processed payroll", ErrConflict)
	}
	return s.store.Payrolls().Delete(ctx, id)
}

// Performance reviews --------------------------------------------------------

// CreateReviewInput carries the fields of a new performance review.
type CreateReviewInput struct {
	EmployeeID       string
	Period           string
	Goals            []string
	Achievements     []string
	ImprovementAreas []string
	Rating           int
	ReviewerComments string
}

// CreateReview persists a review with initial status Pending and the acting
// employee as reviewer.
func (s *Service) CreateReview(ctx context.Context, in CreateReviewInput, actorID string) (*PerformanceReview, error) {
	if in.EmployeeID == "" || in.Period == "" || in.Rating == 0 {
		return nil, fmt.Errorf("%w: emp_id, review_period and rating are required", ErrInvalidInput)
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	rev := &PerformanceReview{
		ID:               ids.New(),
		EmployeeID:       in.EmployeeID,
		ReviewerID:       actorID,
		Period:           in.Period,
		Goals:            append([]string{}, in.Goals...),
		Achievements:     append([]string{}, in.Achievements...),
		ImprovementAreas: append([]string{}, in.ImprovementAreas...),
		Rating:           in.Rating,
		ReviewerComments: in.ReviewerComments,
		Status:           lifecycle.Initial(lifecycle.PerformanceReview),
	}
	if err := s.store.Reviews().Create(ctx, rev); err != nil {
		return nil, err
	}
	return s.store.Reviews().Find(ctx, rev.ID)
}

func (s *Service) GetReview(ctx context.Context, id string) (*PerformanceReview, error) {
	return s.store.Reviews().Find(ctx, id)
}

// UpdateReviewStatus applies a status from the review enum and records the
// employee's response. The acknowledgement date is set exactly when the new
// status is Acknowledged.
func (s *Service) UpdateReviewStatus(ctx context.Context, id, status, employeeComments string) (*PerformanceReview, error) {
	if !lifecycle.Valid(lifecycle.PerformanceReview, status) {
		return nil, fmt.Errorf("%w: invalid review status %q", ErrInvalidInput, status)
	}
	var ackAt *time.Time
	if status == lifecycle.ReviewAcknowledged {
		now := s.now().UTC()
		ackAt = &now
	}
	if err := s.store.Reviews().UpdateStatus(ctx, id, status, employeeComments, ackAt); err != nil {
		return nil, err
	}
	return s.store.Reviews().Find(ctx, id)
}

func (s *Service) ListReviews(ctx context.Context, filter ReviewFilter, page Page) ([]*PerformanceReview, error) {
	if filter.Status != "" && !lifecycle.Valid(lifecycle.PerformanceReview, filter.Status) {
		return nil, fmt.Errorf("%w: invalid review status %q", ErrInvalidInput, filter.Status)
	}
	return s.store.Reviews().List(ctx, filter, normalizePage(page))
}

// ReviewHistory returns the employee's reviews, optionally filtered to
// periods mentioning the given year, newest period first.
func (s *Service) ReviewHistory(ctx context.Context, employeeID, periodYear string) ([]*PerformanceReview, error) {
	if employeeID == "" {
		return nil, fmt.Errorf("%w: employee id is required", ErrInvalidInput)
	}
	return s.store.Reviews().History(ctx, employeeID, periodYear)
}

// DeleteReview removes a review while it is still Pending.
func (s *Service) DeleteReview(ctx context.Context, id string) error {
	rev, err := s.store.Reviews().Find(ctx, id)
	if err != nil {
		return err
	}
	if lifecycle.DeleteLocked(lifecycle.PerformanceReview, rev.Status) {
		return fmt.Errorf("%w: cannot delete acknowledged or disputed review", ErrConflict)
	}
	return s.store.Reviews().Delete(ctx, id)
}
