package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"backoffice/internal/apperr"
	"backoffice/internal/auth"
	"backoffice/internal/authz"
)

func respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func respondStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// respondError maps the failure kinds to HTTP statuses. Anything not
// wrapped in a known kind is internal: the detail is logged for
// operators, clients get a generic message.
func respondError(w http.ResponseWriter, lg *zap.SugaredLogger, err error) {
	var kind string
	var status int
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		kind, status = "unauthenticated", http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		kind, status = "forbidden", http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		kind, status = "not_found", http.StatusNotFound
	case errors.Is(err, apperr.ErrInvalidPayload):
		kind, status = "invalid_payload", http.StatusBadRequest
	case errors.Is(err, apperr.ErrConflict):
		kind, status = "conflict", http.StatusConflict
	default:
		lg.Errorw("internal error", "error", err)
		respondStatus(w, http.StatusInternalServerError, errorBody{errorDetail{"internal", "internal error"}})
		return
	}
	respondStatus(w, status, errorBody{errorDetail{kind, err.Error()}})
}

// RequireAction gates a route on the pure authorization guard. Used for
// routes whose handlers talk to the database directly; the lifecycle
// and call managers run the guard themselves.
func RequireAction(lg *zap.SugaredLogger, a authz.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := authz.Authorize(auth.FromContext(r.Context()), a); err != nil {
				respondError(w, lg, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
