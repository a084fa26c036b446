package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"peopledesk.org/internal/auth"
)

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", false},
		{"bearer abc.def.ghi", "abc.def.ghi", false},
		{"", "", true},
		{"Basic dXNlcjpwYXNz", "", true},
		{"Bearer ", "", true},
	}
	for _, tc := range cases {
		got, err := extractBearerToken(tc.header)
		if tc.wantErr {
			if err == nil {
				t.Errorf("extractBearerToken(%q): expected error", tc.header)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("extractBearerToken(%q) = %q, %v", tc.header, got, err)
		}
	}
}

func TestExtractAccessTokenPrefersCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/leaves", nil)
	req.AddCookie(&http.Cookie{Name: accessCookieName, Value: "cookie-token"})
	req.Header.Set(authHeader, "Bearer header-token")

	got, err := extractAccessToken(req)
	if err != nil {
		t.Fatalf("extractAccessToken: %v", err)
	}
	if got != "cookie-token" {
		t.Fatalf("expected cookie token, got %q", got)
	}

	// Empty cookie falls through to the header.
	req = httptest.NewRequest(http.MethodGet, "/v1/leaves", nil)
	req.AddCookie(&http.Cookie{Name: accessCookieName, Value: ""})
	req.Header.Set(authHeader, "Bearer header-token")
	got, err = extractAccessToken(req)
	if err != nil || got != "header-token" {
		t.Fatalf("fallback to header failed: %q, %v", got, err)
	}
}

func TestIsPublicPath(t *testing.T) {
	for _, p := range []string{
		"/v1/employees/register",
		"/v1/employees/login",
		"/v1/employees/refresh-token",
		"/healthz",
		"/readyz",
		"/metrics",
		"/v1/info",
	} {
		if !isPublicPath(p) {
			t.Errorf("%s should be public", p)
		}
	}
	for _, p := range []string{
		"/v1/employees/logout",
		"/v1/leaves",
		"/v1/payroll/pr-1",
	} {
		if isPublicPath(p) {
			t.Errorf("%s should require authentication", p)
		}
	}
}

func TestUnroutedPathSkipsAuthentication(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, httptest.NewRequest(http.MethodGet, "/v1/unknown", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if got := decodeEnvelope(t, rr); got.Success || got.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected envelope: %+v", got)
	}
}

func TestWithAuthRejectsUnknownEmployee(t *testing.T) {
	env := newTestEnv(t)
	registerEmployee(t, env)
	access, _ := login(t, env)

	// Remove the employee behind the still-valid token.
	for id := range env.employees.byID {
		delete(env.employees.byID, id)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/leaves", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rr := env.do(t, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestWithAuthAttachesEmployee(t *testing.T) {
	env := newTestEnv(t)
	registerEmployee(t, env)
	access, _ := login(t, env)

	var gotID string
	probe := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		emp, ok := auth.EmployeeFromContext(r.Context())
		if !ok {
			t.Errorf("employee missing from context")
		}
		gotID = emp.ID
		if emp.PasswordHash != "" || emp.RefreshToken != "" {
			t.Errorf("context employee not sanitized")
		}
		w.WriteHeader(http.StatusOK)
	})

	authSvc, err := auth.NewService(env.employees,
		auth.WithAccessSecret("test-access"),
		auth.WithRefreshSecret("test-refresh"),
	)
	if err != nil {
		t.Fatalf("auth.NewService: %v", err)
	}
	wrapped := (&API{auth: authSvc, employees: env.employees}).withAuth(probe)

	req := httptest.NewRequest(http.MethodGet, "/v1/leaves", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if gotID == "" {
		t.Fatalf("employee id not propagated")
	}
}

func TestSessionCookieFlags(t *testing.T) {
	pair := auth.TokenPair{
		AccessToken:      "acc",
		RefreshToken:     "ref",
		AccessExpiresAt:  time.Now().Add(15 * time.Minute),
		RefreshExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}
	rr := httptest.NewRecorder()
	setSessionCookies(rr, pair)

	cookies := rr.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("expected 2 cookies, got %d", len(cookies))
	}
	for _, c := range cookies {
		if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteStrictMode || c.Path != "/" {
			t.Errorf("cookie %s missing hardening flags: %+v", c.Name, c)
		}
	}

	rr = httptest.NewRecorder()
	clearSessionCookies(rr)
	for _, c := range rr.Result().Cookies() {
		if c.Value != "" || c.MaxAge != -1 {
			t.Errorf("cookie %s not expired: %+v", c.Name, c)
		}
	}
}
