package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"peopledesk.org/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "

	accessCookieName  = "accessToken"
	refreshCookieName = "refreshToken"
)

var publicPaths = []string{
	"/v1/employees/register",
	"/v1/employees/login",
	"/v1/employees/refresh-token",
	"/metrics",
	"/healthz",
	"/readyz",
	"/v1/info",
}

// withAuth resolves the caller's identity from the access token (cookie or
// bearer header), attaches the sanitized employee to the request context and
// rejects everything else with a uniform 401 envelope.
func (a *API) withAuth(next http.Handler) http.Handler {
	if a == nil || a.auth == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		// Paths only the catch-all would serve get its 404 envelope
		// instead of an authentication demand.
		if a.mux != nil {
			if _, pattern := a.mux.Handler(r); pattern == "" || pattern == "/" {
				next.ServeHTTP(w, r)
				return
			}
		}

		token, err := extractAccessToken(r)
		if err != nil {
			respondError(w, r, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := a.auth.VerifyAccess(token)
		if err != nil {
			respondError(w, r, http.StatusUnauthorized, "invalid access token")
			return
		}

		// The stored claim set is the source of truth; email is the unique
		// lookup key it carries.
		emp, err := a.employees.FindByEmail(r.Context(), claims.Email)
		if err != nil {
			if errors.Is(err, auth.ErrNotFound) {
				respondError(w, r, http.StatusUnauthorized, "employee does not exist")
				return
			}
			respondError(w, r, http.StatusInternalServerError, "authentication error")
			return
		}

		ctx := auth.ContextWithEmployee(r.Context(), *emp)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractAccessToken prefers the accessToken cookie, falling back to the
// Authorization bearer header.
func extractAccessToken(r *http.Request) (string, error) {
	if c, err := r.Cookie(accessCookieName); err == nil {
		if token := strings.TrimSpace(c.Value); token != "" {
			return token, nil
		}
	}
	return extractBearerToken(r.Header.Get(authHeader))
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing access token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing access token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}

// setSessionCookies stores the freshly issued pair as HTTP-only secure
// cookies.
func setSessionCookies(w http.ResponseWriter, pair auth.TokenPair) {
	http.SetCookie(w, sessionCookie(accessCookieName, pair.AccessToken, pair.AccessExpiresAt))
	http.SetCookie(w, sessionCookie(refreshCookieName, pair.RefreshToken, pair.RefreshExpiresAt))
}

// clearSessionCookies expires both cookies.
func clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, sessionCookie(accessCookieName, "", time.Unix(0, 0)))
	http.SetCookie(w, sessionCookie(refreshCookieName, "", time.Unix(0, 0)))
}

func sessionCookie(name, value string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
	if value == "" {
		c.MaxAge = -1
	}
	return c
}
