// Package authz is the pure authorization guard: no I/O, no side
// effects, just (principal, action) -> allow or a typed denial.
// Ownership rules that need data (an agent reading history for a
// property they created, an agent resolving their own assignment) are
// enforced by the managers after the row is loaded.
package authz

import (
	"backoffice/internal/apperr"
	"backoffice/internal/auth"
	"backoffice/internal/models"
)

type Action string

const (
	ActionManageReferenceData Action = "reference_data.manage" // districts, categories
	ActionManageBuildings     Action = "buildings.manage"
	ActionCreateProperty      Action = "properties.create"
	ActionArchiveProperty     Action = "properties.archive" // covers restore
	ActionReadHistory         Action = "properties.history"
	ActionAssignCalls         Action = "calls.assign"
	ActionMarkCalled          Action = "calls.mark_called"
	ActionListOwnAssignments  Action = "calls.list_own"
	ActionManageUsers         Action = "users.manage"
	ActionListAgents          Action = "users.list_agents"
	ActionViewStatistics      Action = "statistics.view"
	ActionUploadPhoto         Action = "photos.upload"
)

// Authorize checks the role table. The unauthenticated case is
// reported before any role check fires.
func Authorize(p auth.Principal, a Action) error {
	if p.IsZero() {
		return apperr.ErrUnauthenticated
	}
	switch a {
	case ActionManageReferenceData, ActionManageBuildings,
		ActionArchiveProperty, ActionAssignCalls, ActionViewStatistics:
		if p.Role == models.RoleAdmin || p.Role == models.RoleManager {
			return nil
		}
		return apperr.Wrap(apperr.ErrForbidden, "requires ADMIN or MANAGER role")
	case ActionMarkCalled, ActionListOwnAssignments:
		if p.Role == models.RoleAgent {
			return nil
		}
		return apperr.Wrap(apperr.ErrForbidden, "requires AGENT role")
	case ActionManageUsers:
		if p.Role == models.RoleAdmin {
			return nil
		}
		return apperr.Wrap(apperr.ErrForbidden, "requires ADMIN role")
	case ActionReadHistory:
		// Admins and managers read any history; agents are further
		// restricted to properties they created or are assigned to.
		switch p.Role {
		case models.RoleAdmin, models.RoleManager, models.RoleAgent:
			return nil
		}
		return apperr.Wrap(apperr.ErrForbidden, "history is not available for this role")
	case ActionCreateProperty, ActionListAgents, ActionUploadPhoto:
		return nil // any authenticated principal
	}
	return apperr.Wrapf(apperr.ErrForbidden, "unknown action %q", a)
}
