// Package store is the persistence boundary for the lifecycle and
// call-assignment managers. InTx is the only serialization mechanism
// the managers rely on: every write-two-tables sequence runs inside it.
package store

import (
	"context"

	"backoffice/internal/models"
)

type Store interface {
	// InTx runs fn against a Store bound to one database transaction.
	// All writes inside fn commit together or not at all.
	InTx(ctx context.Context, fn func(Store) error) error

	GetCategory(ctx context.Context, id string) (*models.Category, error)

	CountAdmins(ctx context.Context) (int64, error)
	CreateUser(ctx context.Context, u *models.User) error

	// RevokeSession stamps the session revoked. Returns false when no
	// session with that JTI exists.
	RevokeSession(ctx context.Context, jti string) (bool, error)

	GetProperty(ctx context.Context, id string) (*models.Property, error)
	CreateProperty(ctx context.Context, p *models.Property) error
	SaveProperty(ctx context.Context, p *models.Property) error
	SetPropertyArchived(ctx context.Context, id string, archived bool) (*models.Property, error)

	AppendHistory(ctx context.Context, h *models.PropertyHistory) error
	ListHistory(ctx context.Context, propertyID string) ([]models.PropertyHistory, error)

	GetAssignment(ctx context.Context, id string) (*models.CallAssignment, error)
	// CreateAssignmentIfAbsent inserts the assignment unless one already
	// exists for the property. Returns false with a nil error when the
	// unique constraint on property_id collides; the caller decides
	// whether that is an error.
	CreateAssignmentIfAbsent(ctx context.Context, a *models.CallAssignment) (created bool, err error)
	// DeleteAssignment removes the assignment row. Returns false when the
	// row was already gone, so callers racing over the same assignment
	// can detect the loss and roll back.
	DeleteAssignment(ctx context.Context, id string) (deleted bool, err error)
	ListAgentAssignments(ctx context.Context, agentID string) ([]models.CallAssignment, error)
}
