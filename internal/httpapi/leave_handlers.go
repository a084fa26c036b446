package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"peopledesk.org/internal/audit"
	"peopledesk.org/internal/auth"
	"peopledesk.org/internal/hr"
)

func (a *API) handleLeavesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.applyForLeave(w, r)
	case http.MethodGet:
		a.listLeaves(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) handleLeaveResource(w http.ResponseWriter, r *http.Request) {
	id := resourceID(r.URL.Path, "/v1/leaves/")
	if id == "" {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	if id == "my" {
		a.myLeaves(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		lv, err := a.hr.GetLeave(r.Context(), id)
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		respond(w, http.StatusOK, lv, "Leave fetched successfully")
	case http.MethodPatch:
		a.updateLeaveStatus(w, r, id)
	case http.MethodDelete:
		if err := a.hr.CancelLeave(r.Context(), id); err != nil {
			handleHRError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "hr.leave.cancel", map[string]any{"leave_id": id})
		respond(w, http.StatusOK, map[string]any{}, "Leave cancelled successfully")
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

// applyForLeave accepts a multipart form with the leave fields plus a
// required supporting document.
func (a *API) applyForLeave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, r, http.StatusBadRequest, "multipart form expected")
		return
	}
	start, err := parseDate(r.FormValue("start_date"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := parseDate(r.FormValue("end_date"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}
	attendance, _ := strconv.Atoi(strings.TrimSpace(r.FormValue("attendance")))

	attachmentPath, err := stageFile(r, "attachments")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "attachment upload failed")
		return
	}

	actorID, _ := auth.EmployeeIDFromContext(r.Context())
	lv, err := a.hr.ApplyForLeave(r.Context(), hr.ApplyForLeaveInput{
		Type:           strings.TrimSpace(r.FormValue("leave_type")),
		StartDate:      start,
		EndDate:        end,
		Paid:           parseBool(r.FormValue("is_paid")),
		HalfDay:        parseBool(r.FormValue("is_halfday")),
		Attendance:     attendance,
		AttachmentPath: attachmentPath,
	}, actorID)
	if err != nil {
		handleHRError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "hr.leave.apply", map[string]any{
		"leave_id":    lv.ID,
		"employee_id": actorID,
	})
	respond(w, http.StatusCreated, lv, "Leave applied successfully")
}

func (a *API) updateLeaveStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Status string `json:"leave_status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	lv, err := a.hr.UpdateLeaveStatus(r.Context(), id, strings.TrimSpace(req.Status))
	if err != nil {
		handleHRError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "hr.leave.status", map[string]any{
		"leave_id":     id,
		"leave_status": lv.Status,
	})
	respond(w, http.StatusOK, lv, "Leave status updated successfully")
}

func (a *API) listLeaves(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query()
	filter := hr.LeaveFilter{
		Status: strings.TrimSpace(q.Get("leave_status")),
		Type:   strings.TrimSpace(q.Get("leave_type")),
	}
	leaves, err := a.hr.ListLeaves(r.Context(), filter, page)
	if err != nil {
		handleHRError(w, r, err)
		return
	}
	respond(w, http.StatusOK, leaves, "Leaves fetched successfully")
}

// myLeaves returns the calling employee's leaves, restricted to a calendar
// month only when both year and month query parameters are supplied.
func (a *API) myLeaves(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	empID, ok := auth.EmployeeIDFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	var year, month int
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("year")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			respondError(w, r, http.StatusBadRequest, "year must be a positive integer")
			return
		}
		year = v
	}
	if raw := strings.TrimSpace(q.Get("month")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 12 {
			respondError(w, r, http.StatusBadRequest, "month must be between 1 and 12")
			return
		}
		month = v
	}
	leaves, err := a.hr.EmployeeLeaves(r.Context(), empID, year, month)
	if err != nil {
		handleHRError(w, r, err)
		return
	}
	respond(w, http.StatusOK, leaves, "Leaves fetched successfully")
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(raw))
}

func parseBool(raw string) bool {
	v, _ := strconv.ParseBool(strings.TrimSpace(raw))
	return v
}
