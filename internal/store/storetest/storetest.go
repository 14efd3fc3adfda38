// Package storetest provides an in-memory store.Store for manager
// unit tests. InTx snapshots state and restores it when the unit of
// work fails, so atomicity assertions hold without a database.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"backoffice/internal/apperr"
	"backoffice/internal/models"
	"backoffice/internal/store"
)

type Mem struct {
	mu sync.Mutex

	Categories  map[string]models.Category
	Properties  map[string]models.Property
	Users       map[string]models.User
	Assignments map[string]models.CallAssignment
	Sessions    map[string]models.Session
	History     []models.PropertyHistory

	nextHistoryID int64
	nextID        int

	// Failure injection.
	AppendHistoryErr    error
	CreateAssignmentErr error
	RevokeSessionErr    error
	// DeleteAssignmentMiss makes DeleteAssignment report zero rows
	// removed, as if a concurrent caller got to the row first.
	DeleteAssignmentMiss bool
}

var _ store.Store = (*Mem)(nil)

func New() *Mem {
	return &Mem{
		Categories:  map[string]models.Category{},
		Properties:  map[string]models.Property{},
		Users:       map[string]models.User{},
		Assignments: map[string]models.CallAssignment{},
		Sessions:    map[string]models.Session{},
	}
}

func (m *Mem) genID() string {
	m.nextID++
	return fmt.Sprintf("mem-%d", m.nextID)
}

func (m *Mem) InTx(ctx context.Context, fn func(store.Store) error) error {
	m.mu.Lock()
	props := cloneMap(m.Properties)
	assigns := cloneMap(m.Assignments)
	hist := append([]models.PropertyHistory(nil), m.History...)
	nextHist := m.nextHistoryID
	m.mu.Unlock()

	err := fn(m)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.Properties = props
		m.Assignments = assigns
		m.History = hist
		m.nextHistoryID = nextHist
	}
	return err
}

func (m *Mem) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Categories[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &c, nil
}

func (m *Mem) CountAdmins(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.Users {
		if u.Role == models.RoleAdmin && u.IsActive {
			n++
		}
	}
	return n, nil
}

func (m *Mem) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Users {
		if existing.Email == u.Email {
			return apperr.Wrap(apperr.ErrConflict, "user with this email already exists")
		}
	}
	if u.ID == "" {
		u.ID = m.genID()
	}
	m.Users[u.ID] = *u
	return nil
}

func (m *Mem) RevokeSession(ctx context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RevokeSessionErr != nil {
		return false, m.RevokeSessionErr
	}
	s, ok := m.Sessions[jti]
	if !ok {
		return false, nil
	}
	now := time.Now()
	s.RevokedAt = &now
	m.Sessions[jti] = s
	return true, nil
}

func (m *Mem) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Properties[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &p, nil
}

func (m *Mem) CreateProperty(ctx context.Context, p *models.Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = m.genID()
	}
	m.Properties[p.ID] = *p
	return nil
}

func (m *Mem) SaveProperty(ctx context.Context, p *models.Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Properties[p.ID] = *p
	return nil
}

func (m *Mem) SetPropertyArchived(ctx context.Context, id string, archived bool) (*models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Properties[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	p.IsArchived = archived
	m.Properties[id] = p
	return &p, nil
}

func (m *Mem) AppendHistory(ctx context.Context, h *models.PropertyHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendHistoryErr != nil {
		return m.AppendHistoryErr
	}
	m.nextHistoryID++
	h.ID = m.nextHistoryID
	if u, ok := m.Users[h.UserID]; ok {
		h.User = &models.User{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	m.History = append(m.History, *h)
	return nil
}

func (m *Mem) ListHistory(ctx context.Context, propertyID string) ([]models.PropertyHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PropertyHistory
	for i := len(m.History) - 1; i >= 0; i-- { // newest first
		if m.History[i].PropertyID == propertyID {
			out = append(out, m.History[i])
		}
	}
	return out, nil
}

func (m *Mem) GetAssignment(ctx context.Context, id string) (*models.CallAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Assignments[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &a, nil
}

func (m *Mem) CreateAssignmentIfAbsent(ctx context.Context, a *models.CallAssignment) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateAssignmentErr != nil {
		return false, m.CreateAssignmentErr
	}
	for _, existing := range m.Assignments {
		if existing.PropertyID == a.PropertyID {
			return false, nil
		}
	}
	if a.ID == "" {
		a.ID = m.genID()
	}
	m.Assignments[a.ID] = *a
	return true, nil
}

func (m *Mem) DeleteAssignment(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteAssignmentMiss {
		return false, nil
	}
	if _, ok := m.Assignments[id]; !ok {
		return false, nil
	}
	delete(m.Assignments, id)
	return true, nil
}

func (m *Mem) ListAgentAssignments(ctx context.Context, agentID string) ([]models.CallAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CallAssignment
	for _, a := range m.Assignments {
		if a.AgentID == agentID && !a.IsCalled {
			out = append(out, a)
		}
	}
	return out, nil
}

func cloneMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
