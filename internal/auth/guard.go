package auth

import (
	"crypto/subtle"
	"net/http"

	"churchledger/internal/core"
)

// CSRFField is the form field carrying the CSRF token.
const CSRFField = "csrf_token"

// Guard gates handlers on the caller's role. Deny is called instead of the
// wrapped handler when the check fails; InvalidForm when a state-changing
// request carries a bad CSRF token.
type Guard struct {
	Deny        func(w http.ResponseWriter, r *http.Request)
	InvalidForm func(w http.ResponseWriter, r *http.Request)
}

// Require admits requests from active users whose role is in roles.
// Unsafe methods must also present the session's CSRF token.
func (g *Guard) Require(roles ...core.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r.Context())
			if !ok || !u.Active || !u.Role.In(roles...) {
				g.deny(w, r)
				return
			}
			if !safeMethod(r.Method) {
				if err := r.ParseForm(); err != nil || !ValidCSRF(r) {
					g.invalidForm(w, r)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ValidCSRF compares the submitted token against the session's token.
func ValidCSRF(r *http.Request) bool {
	want := CSRFToken(r.Context())
	if want == "" {
		return false
	}
	got := r.Header.Get("X-CSRF-Token")
	if got == "" {
		got = r.PostFormValue(CSRFField)
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request) {
	if g.Deny != nil {
		g.Deny(w, r)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (g *Guard) invalidForm(w http.ResponseWriter, r *http.Request) {
	if g.InvalidForm != nil {
		g.InvalidForm(w, r)
		return
	}
	http.Error(w, "invalid form submission", http.StatusForbidden)
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
