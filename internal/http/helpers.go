package http

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"churchledger/internal/auth"
	"churchledger/internal/core"
	"churchledger/internal/log"
)

// genericFailure is shown when storage or another dependency fails.
const genericFailure = "Something went wrong. Please try again."

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// validationMessage returns the user-facing message of a validation error.
func validationMessage(err error) (string, bool) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		return verr.Message, true
	}
	return "", false
}

// titleList renders kinds like "Attendance, Giving".
func titleList(kinds []string) string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		r := []rune(k)
		if len(r) > 0 {
			r[0] = unicode.ToUpper(r[0])
		}
		out[i] = string(r)
	}
	return strings.Join(out, ", ")
}

// actor returns the signed-in user. Guarded routes always have one.
func actor(r *http.Request) core.User {
	u, _ := auth.CurrentUser(r.Context())
	return u
}

// serverError logs err and answers with a generic 500.
func serverError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).
		LogError(r.Context(), "Request failed", err, operation, nil)
	InternalServerError(genericFailure).Write(w, r)
}
