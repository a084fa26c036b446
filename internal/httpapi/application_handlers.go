package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"peopledesk.org/internal/audit"
	"peopledesk.org/internal/auth"
	"peopledesk.org/internal/hr"
)

func (a *API) handleApplicationsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createApplication(w, r)
	case http.MethodGet:
		a.listApplications(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) handleApplicationResource(w http.ResponseWriter, r *http.Request) {
	id := resourceID(r.URL.Path, "/v1/applications/")
	if id == "" {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		app, err := a.hr.GetApplication(r.Context(), id)
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		respond(w, http.StatusOK, app, "Application fetched successfully")
	case http.MethodPatch:
		a.updateApplicationStage(w, r, id)
	case http.MethodDelete:
		if err := a.hr.DeleteApplication(r.Context(), id); err != nil {
			handleHRError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "hr.application.delete", map[string]any{"application_id": id})
		respond(w, http.StatusOK, map[string]any{}, "Application deleted successfully")
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

// createApplication accepts a multipart form with the posting fields plus a
// required resume file and an optional cover letter.
func (a *API) createApplication(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, r, http.StatusBadRequest, "multipart form expected")
		return
	}
	jobID, _ := strconv.ParseInt(strings.TrimSpace(r.FormValue("job_id")), 10, 64)
	candidateID, _ := strconv.ParseInt(strings.TrimSpace(r.FormValue("candidate_id")), 10, 64)

	resumePath, err := stageFile(r, "resume")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "resume upload failed")
		return
	}
	coverPath, err := stageFile(r, "cover_letter")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "cover letter upload failed")
		return
	}

	actorID, _ := auth.EmployeeIDFromContext(r.Context())
	app, err := a.hr.CreateApplication(r.Context(), hr.CreateApplicationInput{
		JobID:           jobID,
		CandidateID:     candidateID,
		Stage:           strings.TrimSpace(r.FormValue("current_stage")),
		ResumePath:      resumePath,
		CoverLetterPath: coverPath,
	}, actorID)
	if err != nil {
		handleHRError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "hr.application.create", map[string]any{
		"application_id": app.ID,
		"job_id":         app.JobID,
	})
	respond(w, http.StatusCreated, app, "Application submitted successfully")
}

func (a *API) updateApplicationStage(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Stage string `json:"current_stage"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	app, err := a.hr.UpdateApplicationStage(r.Context(), id, strings.TrimSpace(req.Stage))
	if err != nil {
		handleHRError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "hr.application.stage", map[string]any{
		"application_id": id,
		"current_stage":  app.Stage,
	})
	respond(w, http.StatusOK, app, "Application stage updated successfully")
}

func (a *API) listApplications(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	filter := hr.ApplicationFilter{Stage: strings.TrimSpace(r.URL.Query().Get("current_stage"))}
	apps, err := a.hr.ListApplications(r.Context(), filter, page)
	if err != nil {
		handleHRError(w, r, err)
		return
	}
	respond(w, http.StatusOK, apps, "Applications fetched successfully")
}
