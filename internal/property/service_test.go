package property

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"backoffice/internal/apperr"
	"backoffice/internal/auth"
	"backoffice/internal/models"
	"backoffice/internal/store/storetest"
)

var (
	manager = auth.Principal{ID: "mgr-1", Role: models.RoleManager}
	agent   = auth.Principal{ID: "agt-1", Role: models.RoleAgent}
)

func newService(t *testing.T) (*Service, *storetest.Mem) {
	t.Helper()
	mem := storetest.New()
	return NewService(mem, zap.NewNop().Sugar()), mem
}

func seedProperty(mem *storetest.Mem, id, createdBy string) {
	mem.Properties[id] = models.Property{ID: id, CategoryID: "cat-1", CreatedByID: createdBy, Status: "ACTIVE"}
}

func TestArchiveThenRestore(t *testing.T) {
	svc, mem := newService(t)
	seedProperty(mem, "p1", "agt-1")

	p, err := svc.Archive(context.Background(), manager, "p1")
	require.NoError(t, err)
	assert.True(t, p.IsArchived)

	p, err = svc.Restore(context.Background(), manager, "p1")
	require.NoError(t, err)
	assert.False(t, p.IsArchived)

	hs, err := svc.History(context.Background(), manager, "p1")
	require.NoError(t, err)
	require.Len(t, hs, 2)
	// Newest first: RESTORED then ARCHIVED.
	assert.Equal(t, models.ActionRestored, hs[0].Action)
	assert.Equal(t, models.ActionArchived, hs[1].Action)
	for _, h := range hs {
		assert.Equal(t, "p1", h.PropertyID)
		assert.Equal(t, manager.ID, h.UserID)
	}
}

func TestArchiveNotFound(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Archive(context.Background(), manager, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestArchiveForbiddenForAgent(t *testing.T) {
	svc, mem := newService(t)
	seedProperty(mem, "p1", "agt-1")
	_, err := svc.Archive(context.Background(), agent, "p1")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.False(t, mem.Properties["p1"].IsArchived)
}

func TestArchiveUnauthenticated(t *testing.T) {
	svc, mem := newService(t)
	seedProperty(mem, "p1", "agt-1")
	_, err := svc.Archive(context.Background(), auth.Principal{}, "p1")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestArchiveRollsBackWhenHistoryFails(t *testing.T) {
	svc, mem := newService(t)
	seedProperty(mem, "p1", "agt-1")
	mem.AppendHistoryErr = errors.New("history write refused")

	_, err := svc.Archive(context.Background(), manager, "p1")
	require.Error(t, err)

	// The flag flip must not survive the failed history write.
	assert.False(t, mem.Properties["p1"].IsArchived)
	assert.Empty(t, mem.History)
}

func TestCreateAppendsCreatedHistory(t *testing.T) {
	svc, mem := newService(t)
	mem.Categories["cat-1"] = models.Category{ID: "cat-1", Name: "2-room"}
	district, building := "d1", "b1"

	p, err := svc.Create(context.Background(), agent, CreateInput{
		CategoryID: "cat-1",
		DistrictID: &district,
		BuildingID: &building,
	})
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", p.Status)
	assert.Equal(t, agent.ID, p.CreatedByID)
	require.NotNil(t, p.AssignedToID)
	assert.Equal(t, agent.ID, *p.AssignedToID)

	require.Len(t, mem.History, 1)
	assert.Equal(t, models.ActionCreated, mem.History[0].Action)
	assert.Equal(t, p.ID, mem.History[0].PropertyID)
}

func TestCreateRollsBackWhenHistoryFails(t *testing.T) {
	svc, mem := newService(t)
	mem.Categories["cat-1"] = models.Category{ID: "cat-1", Name: "2-room"}
	mem.AppendHistoryErr = errors.New("history write refused")
	district, building := "d1", "b1"

	_, err := svc.Create(context.Background(), agent, CreateInput{
		CategoryID: "cat-1", DistrictID: &district, BuildingID: &building,
	})
	require.Error(t, err)
	assert.Empty(t, mem.Properties)
}

func TestCreateValidation(t *testing.T) {
	svc, mem := newService(t)
	mem.Categories["cat-1"] = models.Category{ID: "cat-1", Name: "2-room"}
	mem.Categories["cat-r"] = models.Category{ID: "cat-r", Name: "REALTOR"}

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"missing category", CreateInput{}},
		{"unknown category", CreateInput{CategoryID: "nope"}},
		{"regular listing without address", CreateInput{CategoryID: "cat-1"}},
		{"realtor listing without phone", CreateInput{CategoryID: "cat-r", Status: "ACTIVE"}},
		{"realtor listing without status", CreateInput{CategoryID: "cat-r", Phone: "+777"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), agent, tt.in)
			assert.ErrorIs(t, err, apperr.ErrInvalidPayload)
		})
	}
}

func TestCreateRealtorListingWithoutAddress(t *testing.T) {
	svc, mem := newService(t)
	mem.Categories["cat-r"] = models.Category{ID: "cat-r", Name: "REALTOR"}

	p, err := svc.Create(context.Background(), agent, CreateInput{
		CategoryID: "cat-r", Phone: "+77001234567", Status: "ACTIVE",
	})
	require.NoError(t, err)
	assert.Nil(t, p.DistrictID)
	assert.Nil(t, p.BuildingID)
}

func TestHistoryAccessForAgents(t *testing.T) {
	svc, mem := newService(t)
	assignee := "agt-2"
	mem.Properties["p1"] = models.Property{ID: "p1", CreatedByID: "agt-1", AssignedToID: &assignee}
	mem.History = []models.PropertyHistory{{ID: 1, PropertyID: "p1", UserID: "agt-1", Action: models.ActionCreated}}

	// Creator reads.
	_, err := svc.History(context.Background(), agent, "p1")
	assert.NoError(t, err)

	// Current assignee reads.
	_, err = svc.History(context.Background(), auth.Principal{ID: "agt-2", Role: models.RoleAgent}, "p1")
	assert.NoError(t, err)

	// Unrelated agent is refused.
	_, err = svc.History(context.Background(), auth.Principal{ID: "agt-9", Role: models.RoleAgent}, "p1")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// Managers always read.
	_, err = svc.History(context.Background(), manager, "p1")
	assert.NoError(t, err)
}

func TestHistoryNotFound(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.History(context.Background(), manager, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateAppendsHistory(t *testing.T) {
	svc, mem := newService(t)
	seedProperty(mem, "p1", "agt-1")
	status := "SOLD"

	p, err := svc.Update(context.Background(), agent, "p1", UpdateInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "SOLD", p.Status)
	require.Len(t, mem.History, 1)
	assert.Equal(t, models.ActionUpdated, mem.History[0].Action)
}
