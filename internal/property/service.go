// Package property owns the property lifecycle: creation, the
// Active/Archived state machine, and the audit trail. Every state
// transition appends exactly one history row in the same transaction
// as the state change.
package property

import (
	"context"
	"strings"

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

type CreateInput struct {
	CategoryID    string   `json:"category_id"`
	DistrictID    *string  `json:"district_id,omitempty"`
	BuildingID    *string  `json:"building_id,omitempty"`
	Apartment     string   `json:"apartment,omitempty"`
	Floor         *int     `json:"floor,omitempty"`
	TotalArea     *float64 `json:"total_area,omitempty"`
	LivingArea    *float64 `json:"living_area,omitempty"`
	KitchenArea   *float64 `json:"kitchen_area,omitempty"`
	Rooms         *int     `json:"rooms,omitempty"`
	CeilingHeight *float64 `json:"ceiling_height,omitempty"`
	Balcony       bool     `json:"balcony,omitempty"`
	Loggia        bool     `json:"loggia,omitempty"`
	Renovation    string   `json:"renovation,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	Source        string   `json:"source,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	PricePerSqm   *float64 `json:"price_per_sqm,omitempty"`
	Status        string   `json:"status,omitempty"`
	Description   string   `json:"description,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

// Create validates per category and inserts the property together with
// its CREATED history row. The creator starts as the assignee.
func (s *Service) Create(ctx context.Context, actor auth.Principal, in CreateInput) (*models.Property, error) {
	if err := authz.Authorize(actor, authz.ActionCreateProperty); err != nil {
		return nil, err
	}
	if in.CategoryID == "" {
		return nil, apperr.Wrap(apperr.ErrInvalidPayload, "category is required")
	}
	cat, err := s.store.GetCategory(ctx, in.CategoryID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Wrap(apperr.ErrInvalidPayload, "category does not exist")
		}
		return nil, err
	}

	// Realtor listings come from cold calls: a phone and a status are
	// all we have, there is no address yet.
	if strings.EqualFold(cat.Name, models.CategoryRealtor) {
		if in.Phone == "" || in.Status == "" {
			return nil, apperr.Wrap(apperr.ErrInvalidPayload, "phone and status are required for realtor listings")
		}
	} else if in.DistrictID == nil || in.BuildingID == nil {
		return nil, apperr.Wrap(apperr.ErrInvalidPayload, "category, district and building are required")
	}

	status := in.Status
	if status == "" {
		status = "ACTIVE"
	}
	actorID := actor.ID
	p := &models.Property{
		CategoryID:    in.CategoryID,
		DistrictID:    in.DistrictID,
		BuildingID:    in.BuildingID,
		Apartment:     in.Apartment,
		Floor:         in.Floor,
		TotalArea:     in.TotalArea,
		LivingArea:    in.LivingArea,
		KitchenArea:   in.KitchenArea,
		Rooms:         in.Rooms,
		CeilingHeight: in.CeilingHeight,
		Balcony:       in.Balcony,
		Loggia:        in.Loggia,
		Renovation:    in.Renovation,
		Phone:         in.Phone,
		Source:        in.Source,
		Price:         in.Price,
		PricePerSqm:   in.PricePerSqm,
		Status:        status,
		Description:   in.Description,
		Notes:         in.Notes,
		CreatedByID:   actor.ID,
		AssignedToID:  &actorID,
	}
	err = s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.CreateProperty(ctx, p); err != nil {
			return err
		}
		return tx.AppendHistory(ctx, &models.PropertyHistory{
			PropertyID: p.ID,
			UserID:     actor.ID,
			Action:     models.ActionCreated,
			Notes:      "property recorded",
		})
	})
	if err != nil {
		s.lg.Errorw("property create failed", "error", err)
		return nil, err
	}
	return p, nil
}

// Archive moves the property to the Archived state. The flag flip and
// the ARCHIVED history row commit together or not at all.
func (s *Service) Archive(ctx context.Context, actor auth.Principal, id string) (*models.Property, error) {
	return s.setArchived(ctx, actor, id, true, models.ActionArchived)
}

// Restore is the only transition out of Archived.
func (s *Service) Restore(ctx context.Context, actor auth.Principal, id string) (*models.Property, error) {
	return s.setArchived(ctx, actor, id, false, models.ActionRestored)
}

func (s *Service) setArchived(ctx context.Context, actor auth.Principal, id string, archived bool, action string) (*models.Property, error) {
	if err := authz.Authorize(actor, authz.ActionArchiveProperty); err != nil {
		return nil, err
	}
	var out *models.Property
	err := s.store.InTx(ctx, func(tx store.Store) error {
		p, err := tx.SetPropertyArchived(ctx, id, archived)
		if err != nil {
			return err
		}
		out = p
		return tx.AppendHistory(ctx, &models.PropertyHistory{
			PropertyID: id,
			UserID:     actor.ID,
			Action:     action,
		})
	})
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, err
		}
		s.lg.Errorw("property state change failed", "property_id", id, "action", action, "error", err)
		return nil, err
	}
	return out, nil
}

type UpdateInput struct {
	Apartment     *string  `json:"apartment,omitempty"`
	Floor         *int     `json:"floor,omitempty"`
	TotalArea     *float64 `json:"total_area,omitempty"`
	LivingArea    *float64 `json:"living_area,omitempty"`
	KitchenArea   *float64 `json:"kitchen_area,omitempty"`
	Rooms         *int     `json:"rooms,omitempty"`
	CeilingHeight *float64 `json:"ceiling_height,omitempty"`
	Balcony       *bool    `json:"balcony,omitempty"`
	Loggia        *bool    `json:"loggia,omitempty"`
	Renovation    *string  `json:"renovation,omitempty"`
	Phone         *string  `json:"phone,omitempty"`
	Source        *string  `json:"source,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	PricePerSqm   *float64 `json:"price_per_sqm,omitempty"`
	Status        *string  `json:"status,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
	AssignedToID  *string  `json:"assigned_to_id,omitempty"`
}

// Update patches the property and appends an UPDATED history row in
// the same transaction.
func (s *Service) Update(ctx context.Context, actor auth.Principal, id string, in UpdateInput) (*models.Property, error) {
	if actor.IsZero() {
		return nil, apperr.ErrUnauthenticated
	}
	var out *models.Property
	err := s.store.InTx(ctx, func(tx store.Store) error {
		p, err := tx.GetProperty(ctx, id)
		if err != nil {
			return err
		}
		applyPatch(p, in)
		if err := tx.SaveProperty(ctx, p); err != nil {
			return err
		}
		out = p
		return tx.AppendHistory(ctx, &models.PropertyHistory{
			PropertyID: id,
			UserID:     actor.ID,
			Action:     models.ActionUpdated,
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func applyPatch(p *models.Property, in UpdateInput) {
	if in.Apartment != nil {
		p.Apartment = *in.Apartment
	}
	if in.Floor != nil {
		p.Floor = in.Floor
	}
	if in.TotalArea != nil {
		p.TotalArea = in.TotalArea
	}
	if in.LivingArea != nil {
		p.LivingArea = in.LivingArea
	}
	if in.KitchenArea != nil {
		p.KitchenArea = in.KitchenArea
	}
	if in.Rooms != nil {
		p.Rooms = in.Rooms
	}
	if in.CeilingHeight != nil {
		p.CeilingHeight = in.CeilingHeight
	}
	if in.Balcony != nil {
		p.Balcony = *in.Balcony
	}
	if in.Loggia != nil {
		p.Loggia = *in.Loggia
	}
	if in.Renovation != nil {
		p.Renovation = *in.Renovation
	}
	if in.Phone != nil {
		p.Phone = *in.Phone
	}
	if in.Source != nil {
		p.Source = *in.Source
	}
	if in.Price != nil {
		p.Price = in.Price
	}
	if in.PricePerSqm != nil {
		p.PricePerSqm = in.PricePerSqm
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Notes != nil {
		p.Notes = *in.Notes
	}
	if in.AssignedToID != nil {
		p.AssignedToID = in.AssignedToID
	}
}

// Get returns one property. Any authenticated principal may read.
func (s *Service) Get(ctx context.Context, actor auth.Principal, id string) (*models.Property, error) {
	if actor.IsZero() {
		return nil, apperr.ErrUnauthenticated
	}
	return s.store.GetProperty(ctx, id)
}

// History returns the audit trail newest-first. Agents may only read
// history for properties they created or are currently assigned to.
func (s *Service) History(ctx context.Context, actor auth.Principal, propertyID string) ([]models.PropertyHistory, error) {
	if err := authz.Authorize(actor, authz.ActionReadHistory); err != nil {
		return nil, err
	}
	p, err := s.store.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleAgent &&
		p.CreatedByID != actor.ID &&
		(p.AssignedToID == nil || *p.AssignedToID != actor.ID) {
		return nil, apperr.Wrap(apperr.ErrForbidden, "history access is limited to the creator or assignee")
	}
	return s.store.ListHistory(ctx, propertyID)
}
