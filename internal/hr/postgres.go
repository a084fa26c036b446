package hr

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"peopledesk.org/internal/ids"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Applications() ApplicationStore { return &applicationStore{db: s.db} }
func (s *PGStore) Leaves() LeaveStore             { return &leaveStore{db: s.db} }
func (s *PGStore) Payrolls() PayrollStore         { return &payrollStore{db: s.db} }
func (s *PGStore) Reviews() ReviewStore           { return &reviewStore{db: s.db} }

// Shared listing helper ----------------------------------------------------

// listSpec parameterizes the filter+join+paginate query every entity store
// needs: equality conditions on the entity table (alias t) joined with the
// owning employee's display fields (alias e).
type listSpec struct {
	table    string
	columns  string
	ownerCol string
	where    []string
	args     []any
}

// query renders a deterministic page: stable order by creation time then id,
// 1-indexed page numbers.
func (s listSpec) query(page Page) (string, []any) {
	q := `select ` + s.columns + `, e.id, e.name, e.email from ` + s.table +
		` t join employees e on e.id = t.` + s.ownerCol
	if len(s.where) > 0 {
		q += ` where ` + strings.Join(s.where, ` and `)
	}
	args := append([]any{}, s.args...)
	q += fmt.Sprintf(` order by t.created_at asc, t.id asc limit $%d offset $%d`,
		len(args)+1, len(args)+2)
	args = append(args, page.Size, (page.Number-1)*page.Size)
	return q, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func mapRowErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Application store --------------------------------------------------------

type applicationStore struct{ db *sql.DB }

const applicationColumns = `t.id, t.interviewer_id, t.job_id, t.candidate_id, t.stage, t.resume_url, coalesce(t.cover_letter_url, ''), t.created_at, t.updated_at`

func (s *applicationStore) Create(ctx context.Context, app *Application) error {
	if app.ID == "" {
		app.ID = ids.New()
	}
	var cover any
	if app.CoverLetterURL != "" {
		cover = app.CoverLetterURL
	}
	_, err := s.db.ExecContext(ctx,
		`insert into applications(id, interviewer_id, job_id, candidate_id, stage, resume_url, cover_letter_url)
		 values($1,$2,$3,$4,$5,$6,$7)`,
		app.ID, app.InterviewerID, app.JobID, app.CandidateID, app.Stage, app.ResumeURL, cover,
	)
	return err
}

func (s *applicationStore) Find(ctx context.Context, id string) (*Application, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+applicationColumns+`, e.id, e.name, e.email
		 from applications t join employees e on e.id = t.interviewer_id
		 where t.id=$1`, id)
	return scanApplication(row)
}

func (s *applicationStore) UpdateStage(ctx context.Context, id, stage string) error {
	res, err := s.db.ExecContext(ctx,
		`update applications set stage=$2, updated_at=now() where id=$1`, id, stage)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *applicationStore) List(ctx context.Context, filter ApplicationFilter, page Page) ([]*Application, error) {
	spec := listSpec{
		table:    "applications",
		columns:  applicationColumns,
		ownerCol: "interviewer_id",
	}
	if filter.Stage != "" {
		spec.where = append(spec.where, `t.stage=$1`)
		spec.args = append(spec.args, filter.Stage)
	}
	q, args := spec.query(page)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, app)
	}
	return res, rows.Err()
}

func (s *applicationStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from applications where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanApplication(row rowScanner) (*Application, error) {
	var (
		app Application
		ref EmployeeRef
	)
	err := row.Scan(
		&app.ID, &app.InterviewerID, &app.JobID, &app.CandidateID, &app.Stage,
		&app.ResumeURL, &app.CoverLetterURL, &app.CreatedAt, &app.UpdatedAt,
		&ref.ID, &ref.Name, &ref.Email,
	)
	if err != nil {
		return nil, mapRowErr(err)
	}
	app.Interviewer = &ref
	return &app, nil
}

// Leave store --------------------------------------------------------------

type leaveStore struct{ db *sql.DB }

const leaveColumns = `t.id, t.employee_id, t.leave_type, t.start_date, t.end_date, t.is_paid, t.is_halfday, t.attendance, t.status, t.attachment_url, t.created_at, t.updated_at`

func (s *leaveStore) Create(ctx context.Context, leave *Leave) error {
	if leave.ID == "" {
		leave.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into leaves(id, employee_id, leave_type, start_date, end_date, is_paid, is_halfday, attendance, status, attachment_url)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		leave.ID, leave.EmployeeID, leave.Type, leave.StartDate, leave.EndDate,
		leave.Paid, leave.HalfDay, leave.Attendance, leave.Status, leave.AttachmentURL,
	)
	return err
}

func (s *leaveStore) Find(ctx context.Context, id string) (*Leave, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+leaveColumns+`, e.id, e.name, e.email
		 from leaves t join employees e on e.id = t.employee_id
		 where t.id=$1`, id)
	return scanLeave(row)
}

func (s *leaveStore) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx,
		`update leaves set status=$2, updated_at=now() where id=$1`, id, status)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *leaveStore) List(ctx context.Context, filter LeaveFilter, page Page) ([]*Leave, error) {
	spec := listSpec{
		table:    "leaves",
		columns:  leaveColumns,
		ownerCol: "employee_id",
	}
	if filter.Status != "" {
		spec.where = append(spec.where, fmt.Sprintf(`t.status=$%d`, len(spec.args)+1))
		spec.args = append(spec.args, filter.Status)
	}
	if filter.Type != "" {
		spec.where = append(spec.where, fmt.Sprintf(`t.leave_type=$%d`, len(spec.args)+1))
		spec.args = append(spec.args, filter.Type)
	}
	q, args := spec.query(page)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Leave
	for rows.Next() {
		leave, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, leave)
	}
	return res, rows.Err()
}

func (s *leaveStore) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]*Leave, error) {
	q := `select ` + leaveColumns + `, e.id, e.name, e.email
		 from leaves t join employees e on e.id = t.employee_id
		 where t.employee_id=$1`
	args := []any{employeeID}
	if !from.IsZero() && !to.IsZero() {
		q += ` and t.start_date >= $2 and t.start_date <= $3`
		args = append(args, from, to)
	}
	q += ` order by t.start_date desc, t.id desc`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Leave
	for rows.Next() {
		leave, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, leave)
	}
	return res, rows.Err()
}

func (s *leaveStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from leaves where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanLeave(row rowScanner) (*Leave, error) {
	var (
		leave Leave
		ref   EmployeeRef
	)
	err := row.Scan(
		&leave.ID, &leave.EmployeeID, &leave.Type, &leave.StartDate, &leave.EndDate,
		&leave.Paid, &leave.HalfDay, &leave.Attendance, &leave.Status,
		&leave.AttachmentURL, &leave.CreatedAt, &leave.UpdatedAt,
		&ref.ID, &ref.Name, &ref.Email,
	)
	if err != nil {
		return nil, mapRowErr(err)
	}
	leave.Employee = &ref
	return &leave, nil
}

// Payroll store ------------------------------------------------------------

type payrollStore struct{ db *sql.DB }

const payrollColumns = `t.id, t.employee_id, t.basic_salary, t.allowances, t.deductions, t.total_salary, t.month, t.year, t.status, t.created_at, t.updated_at`

func (s *payrollStore) Create(ctx context.Context, p *Payroll) error {
	if p.ID == "" {
		p.ID = ids.New()
	}
	allowances, err := json.Marshal(p.Allowances)
	if err != nil {
		return err
	}
	deductions, err := json.Marshal(p.Deductions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`insert into payrolls(id, employee_id, basic_salary, allowances, deductions, total_salary, month, year, status)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.EmployeeID, p.BasicSalary, allowances, deductions,
		p.TotalSalary, p.Month, p.Year, p.Status,
	)
	return err
}

func (s *payrollStore) Find(ctx context.Context, id string) (*Payroll, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+payrollColumns+`, e.id, e.name, e.email
		 from payrolls t join employees e on e.id = t.employee_id
		 where t.id=$1`, id)
	return scanPayroll(row)
}

func (s *payrollStore) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx,
		`update payrolls set status=$2, updated_at=now() where id=$1`, id, status)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *payrollStore) List(ctx context.Context, filter PayrollFilter, page Page) ([]*Payroll, error) {
	spec := listSpec{
		table:    "payrolls",
		columns:  payrollColumns,
		ownerCol: "employee_id",
	}
	if filter.Status != "" {
		spec.where = append(spec.where, fmt.Sprintf(`t.status=$%d`, len(spec.args)+1))
		spec.args = append(spec.args, filter.Status)
	}
	if filter.Month > 0 {
		spec.where = append(spec.where, fmt.Sprintf(`t.month=$%d`, len(spec.args)+1))
		spec.args = append(spec.args, filter.Month)
	}
	if filter.Year > 0 {
		spec.where = append(spec.where, fmt.Sprintf(`t.year=$%d`, len(spec.args)+1))
		spec.args = append(spec.args, filter.Year)
	}
	q, args := spec.query(page)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Payroll
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (s *payrollStore) History(ctx context.Context, employeeID string, year int) ([]*Payroll, error) {
	q := `select ` + payrollColumns + `, e.id, e.name, e.email
		 from payrolls t join employees e on e.id = t.employee_id
		 where t.employee_id=$1`
	args := []any{employeeID}
	if year > 0 {
		q += ` and t.year=$2`
		args = append(args, year)
	}
	q += ` order by t.year desc, t.month desc, t.id desc`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Payroll
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (s *payrollStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from payrolls where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanPayroll(row rowScanner) (*Payroll, error) {
	var (
		p          Payroll
		ref        EmployeeRef
		allowances []byte
		deductions []byte
	)
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.BasicSalary, &allowances, &deductions,
		&p.TotalSalary, &p.Month, &p.Year, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		&ref.ID, &ref.Name, &ref.Email,
	)
	if err != nil {
		return nil, mapRowErr(err)
	}
	if err := json.Unmarshal(allowances, &p.Allowances); err != nil {
		return nil, fmt.Errorf("decode allowances: %w", err)
	}
	if err := json.Unmarshal(deductions, &p.Deductions); err != nil {
		return nil, fmt.Errorf("decode deductions: %w", err)
	}
	p.Employee = &ref
	return &p, nil
}

// Performance review store -------------------------------------------------

type reviewStore struct{ db *sql.DB }

const reviewColumns = `t.id, t.employee_id, t.reviewer_id, t.period, t.goals, t.achievements, t.improvement_areas, t.rating, coalesce(t.reviewer_comments, ''), coalesce(t.employee_comments, ''), t.acknowledged_at, t.status, t.created_at, t.updated_at`

func (s *reviewStore) Create(ctx context.Context, rev *PerformanceReview) error {
	if rev.ID == "" {
		rev.ID = ids.New()
	}
	goals, err := json.Marshal(rev.Goals)
	if err != nil {
		return err
	}
	achievements, err := json.Marshal(rev.Achievements)
	if err != nil {
		return err
	}
	improvements, err := json.Marshal(rev.ImprovementAreas)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`insert into performance_reviews(id, employee_id, reviewer_id, period, goals, achievements, improvement_areas, rating, reviewer_comments, status)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rev.ID, rev.EmployeeID, rev.ReviewerID, rev.Period, goals, achievements,
		improvements, rev.Rating, rev.ReviewerComments, rev.Status,
	)
	return err
}

func (s *reviewStore) Find(ctx context.Context, id string) (*PerformanceReview, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+reviewColumns+`, e.id, e.name, e.email, r.id, r.name, r.email
		 from performance_reviews t
		 join employees e on e.id = t.employee_id
		 join employees r on r.id = t.reviewer_id
		 where t.id=$1`, id)
	return scanReviewWithReviewer(row)
}

func (s *reviewStore) UpdateStatus(ctx context.Context, id, status, employeeComments string, acknowledgedAt *time.Time) error {
	var ackAt any
	if acknowledgedAt != nil {
		ackAt = *acknowledgedAt
	}
	res, err := s.db.ExecContext(ctx,
		`update performance_reviews set status=$2, employee_comments=$3, acknowledged_at=$4, updated_at=now() where id=$1`,
		id, status, employeeComments, ackAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *reviewStore) List(ctx context.Context, filter ReviewFilter, page Page) ([]*PerformanceReview, error) {
	spec := listSpec{
		table:    "performance_reviews",
		columns:  reviewColumns,
		ownerCol: "employee_id",
	}
	if filter.Status != "" {
		spec.where = append(spec.where, fmt.Sprintf(`t.status=$%d`, len(spec.args)+1))
		spec.args = append(spec.args, filter.Status)
	}
	if filter.Period != "" {
		spec.where = append(spec.where, fmt.Sprintf(`t.period=$%d`, len(spec.args)+1))
		spec.args = append(spec.args, filter.Period)
	}
	q, args := spec.query(page)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*PerformanceReview
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rev)
	}
	return res, rows.Err()
}

func (s *reviewStore) History(ctx context.Context, employeeID, periodYear string) ([]*PerformanceReview, error) {
	q := `select ` + reviewColumns + `, e.id, e.name, e.email
		 from performance_reviews t join employees e on e.id = t.employee_id
		 where t.employee_id=$1`
	args := []any{employeeID}
	if periodYear != "" {
		q += ` and t.period like $2`
		args = append(args, "%"+periodYear+"%")
	}
	q += ` order by t.period desc, t.id desc`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*PerformanceReview
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rev)
	}
	return res, rows.Err()
}

func (s *reviewStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from performance_reviews where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanReview(row rowScanner) (*PerformanceReview, error) {
	var (
		rev          PerformanceReview
		ref          EmployeeRef
		goals        []byte
		achievements []byte
		improvements []byte
		ackAt        sql.NullTime
	)
	err := row.Scan(
		&rev.ID, &rev.EmployeeID, &rev.ReviewerID, &rev.Period,
		&goals, &achievements, &improvements, &rev.Rating,
		&rev.ReviewerComments, &rev.EmployeeComments, &ackAt, &rev.Status,
		&rev.CreatedAt, &rev.UpdatedAt,
		&ref.ID, &ref.Name, &ref.Email,
	)
	if err != nil {
		return nil, mapRowErr(err)
	}
	if err := finishReview(&rev, goals, achievements, improvements, ackAt); err != nil {
		return nil, err
	}
	rev.Employee = &ref
	return &rev, nil
}

func scanReviewWithReviewer(row rowScanner) (*PerformanceReview, error) {
	var (
		rev          PerformanceReview
		empRef       EmployeeRef
		revRef       EmployeeRef
		goals        []byte
		achievements []byte
		improvements []byte
		ackAt        sql.NullTime
	)
	err := row.Scan(
		&rev.ID, &rev.EmployeeID, &rev.ReviewerID, &rev.Period,
		&goals, &achievements, &improvements, &rev.Rating,
		&rev.ReviewerComments, &rev.EmployeeComments, &ackAt, &rev.Status,
		&rev.CreatedAt, &rev.UpdatedAt,
		&empRef.ID, &empRef.Name, &empRef.Email,
		&revRef.ID, &revRef.Name, &revRef.Email,
	)
	if err != nil {
		return nil, mapRowErr(err)
	}
	if err := finishReview(&rev, goals, achievements, improvements, ackAt); err != nil {
		return nil, err
	}
	rev.Employee = &empRef
	rev.Reviewer = &revRef
	return &rev, nil
}

func finishReview(rev *PerformanceReview, goals, achievements, improvements []byte, ackAt sql.NullTime) error {
	if err := json.Unmarshal(goals, &rev.Goals); err != nil {
		return fmt.Errorf("decode goals: %w", err)
	}
	if err := json.Unmarshal(achievements, &rev.Achievements); err != nil {
		return fmt.Errorf("decode achievements: %w", err)
	}
	if err := json.Unmarshal(improvements, &rev.ImprovementAreas); err != nil {
		return fmt.Errorf("decode improvement areas: %w", err)
	}
	if ackAt.Valid {
		t := ackAt.Time
		rev.AcknowledgedAt = &t
	}
	return nil
}
