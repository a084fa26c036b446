package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"peopledesk.org/internal/audit"
	"peopledesk.org/internal/hr"
)

type generatePayrollRequest struct {
	EmployeeID  string           `json:"emp_id"`
	BasicSalary int64            `json:"basic_salary"`
	Allowances  []hr.NamedAmount `json:"allowances"`
	Deductions  []hr.NamedAmount `json:"deductions"`
	Month       int              `json:"month"`
	Year        int              `json:"year"`
}

func (a *API) handlePayrollCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.generatePayroll(w, r)
	case http.MethodGet:
		a.listPayrolls(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) handlePayrollResource(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/payroll/"), "/")
	if empID, ok := strings.CutPrefix(rest, "employee/"); ok {
		a.payrollHistory(w, r, empID)
		return
	}
	id := resourceID(r.URL.Path, "/v1/payroll/")
	if id == "" {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		p, err := a.hr.GetPayroll(r.Context(), id)
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		respond(w, http.StatusOK, p, "Payroll fetched successfully")
	case http.MethodPatch:
		a.updatePayrollStatus(w, r, id)
	case http.MethodDelete:
		if err := a.hr.DeletePayroll(r.Context(), id); err != nil {
			handleHRError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "hr.payroll.delete", map[string]any{"payroll_id": id})
		respond(w, http.StatusOK, map[string]any{}, "Payroll deleted successfully")
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) generatePayroll(w http.ResponseWriter, r *http.Request) {
	var req generatePayrollRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := a.hr.GeneratePayroll(r.Context(), hr.GeneratePayrollInput{
		EmployeeID:  strings.TrimSpace(req.EmployeeID),
		BasicSalary: req.BasicSalary,
		Allowances:  req.Allowances,
		Deductions:  req.Deductions,
		Month:       req.Month,
		Year:        req.Year,
	})
	if err != nil {
		handleHRError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "hr.payroll.generate", map[string]any{
		"payroll_id":  p.ID,
		"employee_id": req.EmployeeID,
	})
	respond(w, http.StatusCreated, p, "Payroll generated successfully")
}

func (a *API) updatePayrollStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Status string `json:"payment_status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := a.hr.UpdatePayrollStatus(r.Context(), id, strings.TrimSpace(req.Status))
	if err != nil {
		handleHRError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "hr.payroll.status", map[string]any{
		"payroll_id":     id,
		"payment_status": p.Status,
	})
	respond(w, http.StatusOK, p, "Payroll status updated successfully")
}

func (a *API) listPayrolls(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query()
	filter := hr.PayrollFilter{Status: strings.TrimSpace(q.Get("payment_status"))}
	if raw := strings.TrimSpace(q.Get("month")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 12 {
			respondError(w, r, http.StatusBadRequest, "month must be between 1 and 12")
			return
		}
		filter.Month = v
	}
	if raw := strings.TrimSpace(q.Get("year")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			respondError(w, r, http.StatusBadRequest, "year must be a positive integer")
			return
		}
		filter.Year = v
	}
	payrolls, err := a.hr.ListPayrolls(r.Context(), filter, page)
	if err != nil {
		handleHRError(w, r, err)
		return
	}
	respond(w, http.StatusOK, payrolls, "Payrolls fetched successfully")
}

// payrollHistory returns an employee's payroll records, optionally scoped to
// a single year.
func (a *API) payrollHistory(w http.ResponseWriter, r *http.Request, empID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if empID == "" || strings.Contains(empID, "/") {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	year := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("year")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			respondError(w, r, http.StatusBadRequest, "year must be a positive integer")
			return
		}
		year = v
	}
	payrolls, err := a.hr.PayrollHistory(r.Context(), empID, year)
	if err != nil {
		handleHRError(w, r, err)
		return
	}
	respond(w, http.StatusOK, payrolls, "Payroll history fetched successfully")
}
