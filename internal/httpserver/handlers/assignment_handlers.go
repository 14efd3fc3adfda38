package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"backoffice/internal/apperr"
	"backoffice/internal/auth"
	"backoffice/internal/calls"
)

func AssignForCalling(svc *calls.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PropertyIDs []string `json:"property_ids"`
			AgentID     string   `json:"agent_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "invalid json"))
			return
		}
		if err := svc.Assign(r.Context(), auth.FromContext(r.Context()), req.PropertyIDs, req.AgentID); err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{"success": true})
	}
}

func MarkAssignmentCalled(svc *calls.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.MarkCalled(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{"success": true})
	}
}

func MyAssignments(svc *calls.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		as, err := svc.ListMine(r.Context(), auth.FromContext(r.Context()))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, as)
	}
}
