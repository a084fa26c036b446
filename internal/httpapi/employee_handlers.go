package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"peopledesk.org/internal/audit"
	"peopledesk.org/internal/auth"
)

type loginRequest struct {
	Name     string `json:"emp_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// handleRegister creates an employee from a multipart form carrying the
// identity fields plus a required avatar file.
func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, r, http.StatusBadRequest, "multipart form expected")
		return
	}
	in := auth.RegisterInput{
		Number:      strings.TrimSpace(r.FormValue("emp_id")),
		Name:        strings.TrimSpace(r.FormValue("emp_name")),
		Email:       strings.TrimSpace(r.FormValue("email")),
		Password:    r.FormValue("password"),
		Type:        strings.TrimSpace(r.FormValue("emp_type")),
		Designation: strings.TrimSpace(r.FormValue("emp_designation")),
		Department:  strings.TrimSpace(r.FormValue("emp_dept")),
		Phone:       strings.TrimSpace(r.FormValue("emp_ph")),
	}

	avatarPath, err := stageFile(r, "avatar")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "avatar upload failed")
		return
	}
	if avatarPath == "" {
		respondError(w, r, http.StatusBadRequest, "avatar file is required")
		return
	}
	avatarURL, err := a.media.Upload(r.Context(), avatarPath)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "avatar upload failed")
		return
	}

	emp, err := a.auth.Register(r.Context(), in, avatarURL)
	if err != nil {
		_ = a.media.Delete(r.Context(), avatarURL)
		switch {
		case errors.Is(err, auth.ErrInvalidInput):
			respondError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrAlreadyExists):
			respondError(w, r, http.StatusConflict, "employee with the same name, email or phone already exists")
		default:
			respondError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.employee.register", map[string]any{
		"employee_id": emp.ID,
		"email":       emp.Email,
	})
	respond(w, http.StatusCreated, emp, "The employee has been registered successfully")
}

// handleLogin authenticates by name or email and sets the session cookies.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	nameOrEmail := req.Email
	if nameOrEmail == "" {
		nameOrEmail = req.Name
	}

	pair, emp, err := a.auth.Login(r.Context(), nameOrEmail, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidInput):
			respondError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrUnauthorized):
			respondError(w, r, http.StatusUnauthorized, "invalid credentials")
		default:
			respondError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	setSessionCookies(w, pair)
	_ = audit.LogEvent(r.Context(), "auth.employee.login", map[string]any{
		"employee_id": emp.ID,
	})
	respond(w, http.StatusOK, map[string]any{
		"employee":     emp,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "Logged in successfully")
}

// handleLogout clears the stored refresh token and expires both cookies.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	emp, ok := auth.EmployeeFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := a.auth.Logout(r.Context(), emp.ID); err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	clearSessionCookies(w)
	_ = audit.LogEvent(r.Context(), "auth.employee.logout", map[string]any{
		"employee_id": emp.ID,
	})
	respond(w, http.StatusOK, map[string]any{}, "Logged out successfully")
}

// handleRefreshToken rotates the refresh token taken from the cookie or the
// request body and sets fresh session cookies.
func (a *API) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var token string
	if c, err := r.Cookie(refreshCookieName); err == nil {
		token = strings.TrimSpace(c.Value)
	}
	if token == "" && r.Body != nil {
		var req refreshRequest
		if err := decodeJSON(w, r, &req); err == nil {
			token = strings.TrimSpace(req.RefreshToken)
		}
	}
	if token == "" {
		respondError(w, r, http.StatusUnauthorized, "refresh token is required")
		return
	}

	pair, emp, err := a.auth.Renew(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) || errors.Is(err, auth.ErrInvalidToken) {
			respondError(w, r, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	setSessionCookies(w, pair)
	_ = audit.LogEvent(r.Context(), "auth.employee.refresh", map[string]any{
		"employee_id": emp.ID,
	})
	respond(w, http.StatusOK, map[string]any{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "Access token refreshed")
}

// handleEmployees lists the employee directory.
func (a *API) handleEmployees(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	emps, err := a.auth.Directory(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	respond(w, http.StatusOK, emps, "Employees fetched successfully")
}

// handleChangePassword replaces the caller's password and ends the current
// session: the stored refresh token is cleared and both cookies expired.
func (a *API) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	emp, ok := auth.EmployeeFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.auth.ChangePassword(r.Context(), emp.ID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidInput):
			respondError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrUnauthorized):
			respondError(w, r, http.StatusUnauthorized, "current password is incorrect")
		case errors.Is(err, auth.ErrNotFound):
			respondError(w, r, http.StatusNotFound, "employee not found")
		default:
			respondError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}
	clearSessionCookies(w)
	_ = audit.LogEvent(r.Context(), "auth.employee.change_password", map[string]any{
		"employee_id": emp.ID,
	})
	respond(w, http.StatusOK, map[string]any{}, "Password changed successfully, please log in again")
}
