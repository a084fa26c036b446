package hr

import "time"

// EmployeeRef carries the display fields of a joined employee record.
type EmployeeRef struct {
	ID    string `json:"id"`
	Name  string `json:"emp_name"`
	Email string `json:"email"`
}

// NamedAmount is one payroll line item (allowance or deduction). Amounts
// are minor currency units.
type NamedAmount struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

// Application is one job application moving through the hiring pipeline.
type Application struct {
	ID             string       `json:"id"`
	InterviewerID  string       `json:"interviewer_id"`
	JobID          int64        `json:"job_id"`
	CandidateID    int64        `json:"candidate_id"`
	Stage          string       `json:"current_stage"`
	ResumeURL      string       `json:"resume"`
	CoverLetterURL string       `json:"coverLetter,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	Interviewer    *EmployeeRef `json:"interviewer,omitempty"`
}

// Leave is one leave request owned by the applying employee.
type Leave struct {
	ID            string       `json:"id"`
	EmployeeID    string       `json:"emp_id"`
	Type          string       `json:"leave_type"`
	StartDate     time.Time    `json:"start_date"`
	EndDate       time.Time    `json:"end_date"`
	Paid          bool         `json:"is_paid"`
	HalfDay       bool         `json:"is_halfday"`
	Attendance    int          `json:"attendance"`
	Status        string       `json:"leave_status"`
	AttachmentURL string       `json:"attachments"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	Employee      *EmployeeRef `json:"employee,omitempty"`
}

// Payroll is one pay-period record for an employee.
type Payroll struct {
	ID          string        `json:"id"`
	EmployeeID  string        `json:"emp_id"`
	BasicSalary int64         `json:"basic_salary"`
	Allowances  []NamedAmount `json:"allowances"`
	Deductions  []NamedAmount `json:"deductions"`
	TotalSalary int64         `json:"total_salary"`
	Month       int           `json:"month"`
	Year        int           `json:"year"`
	Status      string        `json:"payment_status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Employee    *EmployeeRef  `json:"employee,omitempty"`
}

// PerformanceReview is one review cycle record for an employee.
type PerformanceReview struct {
	ID               string       `json:"id"`
	EmployeeID       string       `json:"emp_id"`
	ReviewerID       string       `json:"reviewer_id"`
	Period           string       `json:"review_period"`
	Goals            []string     `json:"goals"`
	Achievements     []string     `json:"achievements"`
	ImprovementAreas []string     `json:"areas_of_improvement"`
	Rating           int          `json:"rating"`
	ReviewerComments string       `json:"reviewer_comments,omitempty"`
	EmployeeComments string       `json:"employee_comments,omitempty"`
	AcknowledgedAt   *time.Time   `json:"acknowledgement_date,omitempty"`
	Status           string       `json:"status"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
	Employee         *EmployeeRef `json:"employee,omitempty"`
	Reviewer         *EmployeeRef `json:"reviewer,omitempty"`
}

// Page is a 1-indexed pagination request. Size is clamped by the service.
type Page struct {
	Number int
	Size   int
}

// ApplicationFilter holds equality filters for application listings.
type ApplicationFilter struct {
	Stage string
}

// LeaveFilter holds equality filters for leave listings.
type LeaveFilter struct {
	Status string
	Type   string
}

// PayrollFilter holds equality filters for payroll listings.
type PayrollFilter struct {
	Status string
	Month  int
	Year   int
}

// ReviewFilter holds equality filters for performance review listings.
type ReviewFilter struct {
	Status string
	Period string
}
