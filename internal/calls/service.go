// Package calls owns the call-assignment workflow: managers batch-
// assign properties to an agent for phone follow-up, the agent resolves
// each assignment. An open assignment row is the pending-task marker;
// at most one exists per property, enforced by the store's unique
// constraint rather than application-level locking.
package calls

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"backoffice/internal/apperr"
	"backoffice/internal/auth"
	"backoffice/internal/authz"
	"backoffice/internal/models"
	"backoffice/internal/store"
)

type Service struct {
	store store.Store
	lg    *zap.SugaredLogger
}

func NewService(st store.Store, lg *zap.SugaredLogger) *Service {
	return &Service{store: st, lg: lg}
}

// Assign creates one open assignment per property for the agent. A
// property that already has an open assignment is absorbed silently:
// the batch is an administrative action meant to be safely repeatable,
// so partial overlap is the expected common case, not an error. Any
// other creation failure aborts the batch. History rows are appended
// afterwards, best-effort per property; history is a log, not a ledger
// requiring all-or-nothing across the batch.
func (s *Service) Assign(ctx context.Context, actor auth.Principal, propertyIDs []string, agentID string) error {
	if err := authz.Authorize(actor, authz.ActionAssignCalls); err != nil {
		return err
	}
	if len(propertyIDs) == 0 || agentID == "" {
		return apperr.Wrap(apperr.ErrInvalidPayload, "property ids and agent id are required")
	}
	for _, pid := range propertyIDs {
		created, err := s.store.CreateAssignmentIfAbsent(ctx, &models.CallAssignment{
			PropertyID: pid,
			AgentID:    agentID,
		})
		if err != nil {
			s.lg.Errorw("call assignment create failed", "property_id", pid, "agent_id", agentID, "error", err)
			return err
		}
		if !created {
			s.lg.Debugw("property already assigned for calling", "property_id", pid)
		}
	}
	for _, pid := range propertyIDs {
		h := &models.PropertyHistory{
			PropertyID: pid,
			UserID:     actor.ID,
			Action:     models.ActionAssigned,
			Notes:      fmt.Sprintf("assigned for calling to agent %s", agentID),
		}
		if err := s.store.AppendHistory(ctx, h); err != nil {
			s.lg.Warnw("assignment history append failed", "property_id", pid, "error", err)
		}
	}
	return nil
}

// MarkCalled resolves an assignment: a "call confirmed" history row is
// appended and the pending marker deleted, in one transaction. An
// assignment that does not exist and one owned by a different agent
// both report NotFound, so an agent cannot enumerate other agents'
// assignments.
func (s *Service) MarkCalled(ctx context.Context, actor auth.Principal, assignmentID string) error {
	if err := authz.Authorize(actor, authz.ActionMarkCalled); err != nil {
		return err
	}
	err := s.store.InTx(ctx, func(tx store.Store) error {
		a, err := tx.GetAssignment(ctx, assignmentID)
		if err != nil {
			return err
		}
		if a.AgentID != actor.ID {
			return apperr.ErrNotFound
		}
		if err := tx.AppendHistory(ctx, &models.PropertyHistory{
			PropertyID: a.PropertyID,
			UserID:     actor.ID,
			Action:     models.ActionUpdated,
			Notes:      "call confirmed",
		}); err != nil {
			return err
		}
		deleted, err := tx.DeleteAssignment(ctx, assignmentID)
		if err != nil {
			return err
		}
		if !deleted {
			// Another resolution won the race; roll the history row back
			// so the call is confirmed exactly once.
			return apperr.ErrNotFound
		}
		return nil
	})
	if err != nil && !apperr.IsNotFound(err) {
		s.lg.Errorw("mark called failed", "assignment_id", assignmentID, "error", err)
	}
	return err
}

// ListMine returns the agent's open assignments.
func (s *Service) ListMine(ctx context.Context, actor auth.Principal) ([]models.CallAssignment, error) {
	if err := authz.Authorize(actor, authz.ActionListOwnAssignments); err != nil {
		return nil, err
	}
	return s.store.ListAgentAssignments(ctx, actor.ID)
}
