package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"backoffice/internal/apperr"
	"backoffice/internal/auth"
	"backoffice/internal/models"
)

func TestAuthorizeUnauthenticatedBeforeRoleChecks(t *testing.T) {
	actions := []Action{
		ActionManageReferenceData, ActionManageBuildings, ActionCreateProperty,
		ActionArchiveProperty, ActionReadHistory, ActionAssignCalls,
		ActionMarkCalled, ActionManageUsers, ActionViewStatistics, ActionUploadPhoto,
	}
	for _, a := range actions {
		err := Authorize(auth.Principal{}, a)
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated, "action %s", a)
	}
}

func TestAuthorizeRoleTable(t *testing.T) {
	tests := []struct {
		name   string
		role   string
		action Action
		allow  bool
	}{
		{"admin manages reference data", models.RoleAdmin, ActionManageReferenceData, true},
		{"manager manages reference data", models.RoleManager, ActionManageReferenceData, true},
		{"agent cannot manage reference data", models.RoleAgent, ActionManageReferenceData, false},
		{"agent cannot create building", models.RoleAgent, ActionManageBuildings, false},
		{"manager creates building", models.RoleManager, ActionManageBuildings, true},
		{"manager archives", models.RoleManager, ActionArchiveProperty, true},
		{"agent never archives", models.RoleAgent, ActionArchiveProperty, false},
		{"plain user never archives", models.RoleUser, ActionArchiveProperty, false},
		{"manager assigns calls", models.RoleManager, ActionAssignCalls, true},
		{"agent cannot assign calls", models.RoleAgent, ActionAssignCalls, false},
		{"agent marks called", models.RoleAgent, ActionMarkCalled, true},
		{"manager cannot mark called", models.RoleManager, ActionMarkCalled, false},
		{"admin cannot mark called", models.RoleAdmin, ActionMarkCalled, false},
		{"only admin manages users", models.RoleManager, ActionManageUsers, false},
		{"admin manages users", models.RoleAdmin, ActionManageUsers, true},
		{"agent reads history (ownership checked later)", models.RoleAgent, ActionReadHistory, true},
		{"plain user cannot read history", models.RoleUser, ActionReadHistory, false},
		{"anyone authenticated creates property", models.RoleUser, ActionCreateProperty, true},
		{"anyone authenticated lists agents", models.RoleAgent, ActionListAgents, true},
		{"anyone authenticated uploads photos", models.RoleUser, ActionUploadPhoto, true},
		{"agent cannot view statistics", models.RoleAgent, ActionViewStatistics, false},
		{"admin views statistics", models.RoleAdmin, ActionViewStatistics, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(auth.Principal{ID: "u1", Role: tt.role}, tt.action)
			if tt.allow {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperr.ErrForbidden)
			}
		})
	}
}

func TestAuthorizeUnknownActionDenied(t *testing.T) {
	err := Authorize(auth.Principal{ID: "u1", Role: models.RoleAdmin}, Action("nonsense"))
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
