package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                             "/",
		"/metrics":                     "/metrics",
		"/v1/applications":             "/v1/applications",
		"/v1/applications/01J5ZX":      "/v1/applications/:id",
		"/v1/leaves/01J5ZX":            "/v1/leaves/:id",
		"/v1/leaves/my":                "/v1/leaves/my",
		"/v1/payroll/01J5ZX":           "/v1/payroll/:id",
		"/v1/payroll/employee/01J5ZX":  "/v1/payroll/employee/:id",
		"/v1/performance/01J5ZX?x=1":   "/v1/performance/:id",
		"/v1/performance/01J5ZX/extra": "/v1/performance/01J5ZX/extra",
		"/v1/employees/login":          "/v1/employees/login",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
