package calls

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
	agent1  = auth.Principal{ID: "agt-1", Role: models.RoleAgent}
	agent2  = auth.Principal{ID: "agt-2", Role: models.RoleAgent}
)

func newService(t *testing.T) (*Service, *storetest.Mem) {
	t.Helper()
	mem := storetest.New()
	return NewService(mem, zap.NewNop().Sugar()), mem
}

func openAssignments(mem *storetest.Mem, propertyID string) []models.CallAssignment {
	var out []models.CallAssignment
	for _, a := range mem.Assignments {
		if a.PropertyID == propertyID {
			out = append(out, a)
		}
	}
	return out
}

func TestAssignCreatesAssignmentAndHistory(t *testing.T) {
	svc, mem := newService(t)

	err := svc.Assign(context.Background(), manager, []string{"p1"}, agent1.ID)
	require.NoError(t, err)

	as := openAssignments(mem, "p1")
	require.Len(t, as, 1)
	assert.Equal(t, agent1.ID, as[0].AgentID)
	assert.False(t, as[0].IsCalled)

	require.Len(t, mem.History, 1)
	assert.Equal(t, models.ActionAssigned, mem.History[0].Action)
	assert.Equal(t, manager.ID, mem.History[0].UserID)
}

func TestAssignIsIdempotentPerProperty(t *testing.T) {
	svc, mem := newService(t)

	require.NoError(t, svc.Assign(context.Background(), manager, []string{"p1"}, agent1.ID))
	// Second assignment for the same property, different agent: the
	// collision is absorbed, the original assignment stays, but a
	// history row is still appended for the attempt.
	require.NoError(t, svc.Assign(context.Background(), manager, []string{"p1"}, agent2.ID))

	as := openAssignments(mem, "p1")
	require.Len(t, as, 1)
	assert.Equal(t, agent1.ID, as[0].AgentID)
	assert.Len(t, mem.History, 2)
}

func TestAssignValidation(t *testing.T) {
	svc, _ := newService(t)

	err := svc.Assign(context.Background(), manager, nil, agent1.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidPayload)

	err = svc.Assign(context.Background(), manager, []string{"p1"}, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidPayload)
}

func TestAssignAuthorization(t *testing.T) {
	svc, _ := newService(t)

	err := svc.Assign(context.Background(), agent1, []string{"p1"}, agent1.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	err = svc.Assign(context.Background(), auth.Principal{}, []string{"p1"}, agent1.ID)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestAssignAbortsBatchOnStoreFailure(t *testing.T) {
	svc, mem := newService(t)
	mem.CreateAssignmentErr = errors.New("insert refused")

	err := svc.Assign(context.Background(), manager, []string{"p1", "p2"}, agent1.ID)
	require.Error(t, err)
	assert.Empty(t, mem.Assignments)
	// The batch aborted before the history phase.
	assert.Empty(t, mem.History)
}

func TestAssignHistoryIsBestEffort(t *testing.T) {
	svc, mem := newService(t)
	mem.AppendHistoryErr = errors.New("history write refused")

	// Assignment creation succeeds even when every history append fails.
	err := svc.Assign(context.Background(), manager, []string{"p1", "p2"}, agent1.ID)
	require.NoError(t, err)
	assert.Len(t, mem.Assignments, 2)
	assert.Empty(t, mem.History)
}

func TestMarkCalledDeletesAssignmentAndAppendsHistory(t *testing.T) {
	svc, mem := newService(t)
	mem.Assignments["a1"] = models.CallAssignment{ID: "a1", PropertyID: "p1", AgentID: agent1.ID}

	require.NoError(t, svc.MarkCalled(context.Background(), agent1, "a1"))

	assert.Empty(t, openAssignments(mem, "p1"))
	require.Len(t, mem.History, 1)
	assert.Equal(t, models.ActionUpdated, mem.History[0].Action)
	assert.Equal(t, "p1", mem.History[0].PropertyID)
	assert.Equal(t, "call confirmed", mem.History[0].Notes)
}

func TestMarkCalledMasksForeignAssignmentAsNotFound(t *testing.T) {
	svc, mem := newService(t)
	mem.Assignments["a1"] = models.CallAssignment{ID: "a1", PropertyID: "p1", AgentID: agent1.ID}

	err := svc.MarkCalled(context.Background(), agent2, "a1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// Nothing changed.
	assert.Len(t, openAssignments(mem, "p1"), 1)
	assert.Empty(t, mem.History)
}

func TestMarkCalledMissingAssignment(t *testing.T) {
	svc, _ := newService(t)
	err := svc.MarkCalled(context.Background(), agent1, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMarkCalledRequiresAgentRole(t *testing.T) {
	svc, mem := newService(t)
	mem.Assignments["a1"] = models.CallAssignment{ID: "a1", PropertyID: "p1", AgentID: agent1.ID}

	err := svc.MarkCalled(context.Background(), manager, "a1")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestMarkCalledIsAtomic(t *testing.T) {
	svc, mem := newService(t)
	mem.Assignments["a1"] = models.CallAssignment{ID: "a1", PropertyID: "p1", AgentID: agent1.ID}
	mem.AppendHistoryErr = errors.New("history write refused")

	err := svc.MarkCalled(context.Background(), agent1, "a1")
	require.Error(t, err)

	// The pending marker must survive a failed history write.
	assert.Len(t, openAssignments(mem, "p1"), 1)
	assert.Empty(t, mem.History)
}

func TestMarkCalledLostDeleteRaceLeavesNoHistory(t *testing.T) {
	svc, mem := newService(t)
	mem.Assignments["a1"] = models.CallAssignment{ID: "a1", PropertyID: "p1", AgentID: agent1.ID}
	// The row disappears between the in-transaction read and the delete,
	// as when two requests from the same agent resolve it at once.
	mem.DeleteAssignmentMiss = true

	err := svc.MarkCalled(context.Background(), agent1, "a1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// The losing request must not leave a second confirmation behind.
	assert.Empty(t, mem.History)
}

func TestListMine(t *testing.T) {
	svc, mem := newService(t)
	mem.Assignments["a1"] = models.CallAssignment{ID: "a1", PropertyID: "p1", AgentID: agent1.ID}
	mem.Assignments["a2"] = models.CallAssignment{ID: "a2", PropertyID: "p2", AgentID: agent2.ID}

	as, err := svc.ListMine(context.Background(), agent1)
	require.NoError(t, err)
	require.Len(t, as, 1)
	assert.Equal(t, "p1", as[0].PropertyID)

	_, err = svc.ListMine(context.Background(), manager)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
