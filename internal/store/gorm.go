package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"backoffice/internal/apperr"
	"backoffice/internal/models"
)

type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) InTx(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Gorm{db: tx})
	})
}

func (s *Gorm) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Gorm) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND is_active = true", models.RoleAdmin).
		Count(&n).Error
	return n, err
}

func (s *Gorm) CreateUser(ctx context.Context, u *models.User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if IsUniqueViolation(err) {
			return apperr.Wrap(apperr.ErrConflict, "user with this email already exists")
		}
		return err
	}
	return nil
}

func (s *Gorm) RevokeSession(ctx context.Context, jti string) (bool, error) {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.Session{}).
		Where("jti = ?", jti).
		Update("revoked_at", &now)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Gorm) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	var p models.Property
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Gorm) CreateProperty(ctx context.Context, p *models.Property) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *Gorm) SaveProperty(ctx context.Context, p *models.Property) error {
	return s.db.WithContext(ctx).Save(p).Error
}

func (s *Gorm) SetPropertyArchived(ctx context.Context, id string, archived bool) (*models.Property, error) {
	var p models.Property
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	p.IsArchived = archived
	if err := s.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Gorm) AppendHistory(ctx context.Context, h *models.PropertyHistory) error {
	return s.db.WithContext(ctx).Create(h).Error
}

func (s *Gorm) ListHistory(ctx context.Context, propertyID string) ([]models.PropertyHistory, error) {
	var hs []models.PropertyHistory
	err := s.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email") }).
		Where("property_id = ?", propertyID).
		Order("created_at desc").
		Find(&hs).Error
	return hs, err
}

func (s *Gorm) GetAssignment(ctx context.Context, id string) (*models.CallAssignment, error) {
	var a models.CallAssignment
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *Gorm) CreateAssignmentIfAbsent(ctx context.Context, a *models.CallAssignment) (bool, error) {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		if IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Gorm) DeleteAssignment(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&models.CallAssignment{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Gorm) ListAgentAssignments(ctx context.Context, agentID string) ([]models.CallAssignment, error) {
	var as []models.CallAssignment
	err := s.db.WithContext(ctx).
		Where("agent_id = ? AND is_called = false", agentID).
		Order("created_at desc").
		Find(&as).Error
	return as, err
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	return err
}

// IsUniqueViolation reports whether err is a unique constraint
// violation, either as translated by gorm or as a raw postgres 23505.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
