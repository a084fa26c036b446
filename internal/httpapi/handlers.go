package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"peopledesk.org/internal/audit"
	"peopledesk.org/internal/auth"
	"peopledesk.org/internal/hr"
	"peopledesk.org/internal/media"
	"peopledesk.org/internal/obs"
)

// ReadyProbe checks service readiness (database ping).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	auth      *auth.Service
	employees auth.EmployeeStore
	hr        *hr.Service
	media     media.Uploader
}

func New(rp ReadyProbe, version string, authSvc *auth.Service, employees auth.EmployeeStore, hrSvc *hr.Service, uploader media.Uploader) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		auth:       authSvc,
		employees:  employees,
		hr:         hrSvc,
		media:      uploader,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth surface
	a.mux.HandleFunc("/v1/employees", a.handleEmployees)
	a.mux.HandleFunc("/v1/employees/register", a.handleRegister)
	a.mux.HandleFunc("/v1/employees/login", a.handleLogin)
	a.mux.HandleFunc("/v1/employees/logout", a.handleLogout)
	a.mux.HandleFunc("/v1/employees/refresh-token", a.handleRefreshToken)
	a.mux.HandleFunc("/v1/employees/change-password", a.handleChangePassword)

	// HR collections
	a.mux.HandleFunc("/v1/applications", a.handleApplicationsCollection)
	a.mux.HandleFunc("/v1/applications/", a.handleApplicationResource)
	a.mux.HandleFunc("/v1/leaves", a.handleLeavesCollection)
	a.mux.HandleFunc("/v1/leaves/", a.handleLeaveResource)
	a.mux.HandleFunc("/v1/payroll", a.handlePayrollCollection)
	a.mux.HandleFunc("/v1/payroll/", a.handlePayrollResource)
	a.mux.HandleFunc("/v1/performance", a.handleReviewsCollection)
	a.mux.HandleFunc("/v1/performance/", a.handleReviewResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "resource not found")
	})

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	h := http.Handler(a.mux)
	h = a.withAuth(h)
	h = MaxBodyBytes(h, 20<<20)
	h = RateLimit(h, 50, 25)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- Probes ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "peopledesk-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "peopledesk-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- Envelope helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// respond writes the uniform success envelope.
func respond(w http.ResponseWriter, code int, data any, message string) {
	writeJSON(w, code, map[string]any{
		"statusCode": code,
		"data":       data,
		"message":    message,
		"success":    true,
	})
}

// respondError writes the uniform error envelope.
func respondError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"statusCode": code,
		"message":    msg,
		"success":    false,
	}
	if rid := audit.RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	respondError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

// handleHRError maps domain failures to the envelope status codes.
func handleHRError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, hr.ErrInvalidInput):
		respondError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, hr.ErrNotFound):
		respondError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, hr.ErrConflict):
		respondError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, auth.ErrInvalidToken):
		respondError(w, r, http.StatusUnauthorized, "unauthorized")
	default:
		respondError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// --- Request helpers ---

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// parsePage reads 1-indexed page/limit query parameters with the usual
// defaults.
func parsePage(r *http.Request) (hr.Page, error) {
	page := hr.Page{Number: 1, Size: 10}
	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return hr.Page{}, errors.New("page must be a positive integer")
		}
		page.Number = v
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 100 {
			return hr.Page{}, errors.New("limit must be between 1 and 100")
		}
		page.Size = v
	}
	return page, nil
}

// resourceID extracts the trailing id of a resource path like
// /v1/leaves/{id}; empty or nested paths yield "".
func resourceID(path, prefix string) string {
	id := strings.TrimPrefix(path, prefix)
	id = strings.Trim(id, "/")
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}
