package httpapi

import (
	"net/http"
	"strings"

	"peopledesk.org/internal/audit"
	"peopledesk.org/internal/auth"
	"peopledesk.org/internal/hr"
)

type createReviewRequest struct {
	EmployeeID       string   `json:"emp_id"`
	Period           string   `json:"review_period"`
	Goals            []string `json:"goals"`
	Achievements     []string `json:"achievements"`
	ImprovementAreas []string `json:"improvement_areas"`
	Rating           int      `json:"rating"`
	ReviewerComments string   `json:"reviewer_comments"`
}

func (a *API) handleReviewsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createReview(w, r)
	case http.MethodGet:
		a.listReviews(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) handleReviewResource(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/performance/"), "/")
	if empID, ok := strings.CutPrefix(rest, "employee/"); ok {
		a.reviewHistory(w, r, empID)
		return
	}
	id := resourceID(r.URL.Path, "/v1/performance/")
	if id == "" {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		rev, err := a.hr.GetReview(r.Context(), id)
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		respond(w, http.StatusOK, rev, "Performance review fetched successfully")
	case http.MethodPatch:
		a.updateReviewStatus(w, r, id)
	case http.MethodDelete:
		if err := a.hr.DeleteReview(r.Context(), id); err != nil {
			handleHRError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "hr.review.delete", map[string]any{"review_id": id})
		respond(w, http.StatusOK, map[string]any{}, "Performance review deleted successfully")
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) createReview(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	actorID, _ := auth.EmployeeIDFromContext(r.Context())
	rev, err := a.hr.CreateReview(r.Context(), hr.CreateReviewInput{
		EmployeeID:       strings.TrimSpace(req.EmployeeID),
		Period:           strings.TrimSpace(req.Period),
		Goals:            req.Goals,
		Achievements:     req.Achievements,
		ImprovementAreas: req.ImprovementAreas,
		Rating:           req.Rating,
		ReviewerComments: req.ReviewerComments,
	}, actorID)
	if err != nil {
		handleHRError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "hr.review.create", map[string]any{
		"review_id":   rev.ID,
		"employee_id": req.EmployeeID,
	})
	respond(w, http.StatusCreated, rev, "Performance review created successfully")
}

func (a *API) updateReviewStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Status           string `json:"status"`
		EmployeeComments string `json:"employee_comments"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	rev, err := a.hr.UpdateReviewStatus(r.Context(), id, strings.TrimSpace(req.Status), req.EmployeeComments)
	if err != nil {
		handleHRError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "hr.review.status", map[string]any{
		"review_id": id,
		"status":    rev.Status,
	})
	respond(w, http.StatusOK, rev, "Performance review updated successfully")
}

func (a *API) listReviews(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query()
	filter := hr.ReviewFilter{
		Status: strings.TrimSpace(q.Get("status")),
		Period: strings.TrimSpace(q.Get("review_period")),
	}
	reviews, err := a.hr.ListReviews(r.Context(), filter, page)
	if err != nil {
		handleHRError(w, r, err)
		return
	}
	respond(w, http.StatusOK, reviews, "Performance reviews fetched successfully")
}

// reviewHistory returns an employee's reviews, optionally filtered to the
// periods of a single year.
func (a *API) reviewHistory(w http.ResponseWriter, r *http.Request, empID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if empID == "" || strings.Contains(empID, "/") {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	reviews, err := a.hr.ReviewHistory(r.Context(), empID, strings.TrimSpace(r.URL.Query().Get("year")))
	if err != nil {
		handleHRError(w, r, err)
		return
	}
	respond(w, http.StatusOK, reviews, "Performance reviews fetched successfully")
}
