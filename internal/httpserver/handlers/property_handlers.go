package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"backoffice/internal/apperr"
	"backoffice/internal/auth"
	"backoffice/internal/models"
	"backoffice/internal/property"
)

func csvParam(q map[string][]string, key string) []string {
	vals, ok := q[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	var out []string
	for _, part := range strings.Split(vals[0], ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func rangeParam(raw string) (min, max *float64) {
	parts := strings.SplitN(raw, ",", 2)
	if v, err := strconv.ParseFloat(parts[0], 64); err == nil {
		min = &v
	}
	if len(parts) == 2 {
		if v, err := strconv.ParseFloat(parts[1], 64); err == nil {
			max = &v
		}
	}
	return
}

func propertyPreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Category").
		Preload("District").
		Preload("Building").
		Preload("Photos").
		Preload("CreatedBy", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email") }).
		Preload("AssignedTo", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email") })
}

// ListProperties is the main board query: filters, pagination, and for
// agents a pinned section. Properties the agent still owes a call for
// are returned first and excluded from the page body.
func ListProperties(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := auth.FromContext(r.Context())
		q := r.URL.Query()

		page, _ := strconv.Atoi(q.Get("page"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(q.Get("limit"))
		if limit < 1 || limit > 200 {
			limit = 50
		}
		includeArchived := q.Get("include_archived") == "true"

		filter := func(tx *gorm.DB) *gorm.DB {
			tx = tx.Where("properties.is_archived = ?", includeArchived)
			if ids := csvParam(q, "category"); ids != nil {
				tx = tx.Where("properties.category_id IN ?", ids)
			}
			if ids := csvParam(q, "district"); ids != nil {
				tx = tx.Where("properties.district_id IN ?", ids)
			}
			if sts := csvParam(q, "status"); sts != nil {
				tx = tx.Where("properties.status IN ?", sts)
			}
			if v := q.Get("price"); v != "" {
				min, max := rangeParam(v)
				if min != nil {
					tx = tx.Where("properties.price >= ?", *min)
				}
				if max != nil {
					tx = tx.Where("properties.price <= ?", *max)
				}
			}
			if v := q.Get("total_area"); v != "" {
				min, max := rangeParam(v)
				if min != nil {
					tx = tx.Where("properties.total_area >= ?", *min)
				}
				if max != nil {
					tx = tx.Where("properties.total_area <= ?", *max)
				}
			}
			if v := q.Get("floor"); v != "" {
				min, max := rangeParam(v)
				if min != nil {
					tx = tx.Where("properties.floor >= ?", int(*min))
				}
				if max != nil {
					tx = tx.Where("properties.floor <= ?", int(*max))
				}
			}
			needBuilding := false
			buildingCond := func(cond string, args ...any) {
				if !needBuilding {
					tx = tx.Joins("LEFT JOIN buildings ON buildings.id = properties.building_id")
					needBuilding = true
				}
				tx = tx.Where(cond, args...)
			}
			if v := q.Get("year_built"); v != "" {
				min, max := rangeParam(v)
				if min != nil {
					buildingCond("buildings.year_built >= ?", int(*min))
				}
				if max != nil {
					buildingCond("buildings.year_built <= ?", int(*max))
				}
			}
			if v := strings.TrimSpace(q.Get("street")); v != "" {
				buildingCond("buildings.street ILIKE ?", "%"+v+"%")
			}
			if v := strings.TrimSpace(q.Get("house_number")); v != "" {
				buildingCond("buildings.house_number ILIKE ?", "%"+v+"%")
			}
			if mats := csvParam(q, "wall_material"); mats != nil {
				buildingCond("buildings.wall_material IN ?", mats)
			}
			if v := strings.TrimSpace(q.Get("phone")); v != "" {
				tx = tx.Where("properties.phone LIKE ?", "%"+v+"%")
			}
			if v := strings.TrimSpace(q.Get("source")); v != "" {
				tx = tx.Where("properties.source ILIKE ?", "%"+v+"%")
			}
			if v := strings.TrimSpace(q.Get("description")); v != "" {
				tx = tx.Where("properties.description ILIKE ?", "%"+v+"%")
			}
			return tx
		}

		// Pinned section for agents: open call assignments come first.
		var pinned []models.Property
		var pinnedIDs []string
		if p.Role == models.RoleAgent {
			err := propertyPreloads(filter(db.Model(&models.Property{}))).
				Joins("JOIN call_assignments ON call_assignments.property_id = properties.id").
				Where("call_assignments.agent_id = ? AND call_assignments.is_called = false", p.ID).
				Order("properties.created_at desc").
				Find(&pinned).Error
			if err != nil {
				respondError(w, lg, err)
				return
			}
			for i := range pinned {
				pinnedIDs = append(pinnedIDs, pinned[i].ID)
			}
		}

		base := filter(db.Model(&models.Property{}))
		if len(pinnedIDs) > 0 {
			base = base.Where("properties.id NOT IN ?", pinnedIDs)
		}
		var total int64
		if err := base.Count(&total).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		var items []models.Property
		err := propertyPreloads(base).
			Order("properties.created_at desc").
			Offset((page - 1) * limit).
			Limit(limit).
			Find(&items).Error
		if err != nil {
			respondError(w, lg, err)
			return
		}

		combined := make([]models.Property, 0, len(pinned)+len(items))
		combined = append(combined, pinned...)
		combined = append(combined, items...)
		respondJSON(w, map[string]any{
			"properties":   combined,
			"total_pages":  (total + int64(limit) - 1) / int64(limit),
			"current_page": page,
		})
	}
}

func CreateProperty(svc *property.Service, db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			property.CreateInput
			Photos []struct {
				Filename string `json:"filename"`
				URL      string `json:"url"`
			} `json:"photos,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "invalid json"))
			return
		}
		p, err := svc.Create(r.Context(), auth.FromContext(r.Context()), req.CreateInput)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		for i, ph := range req.Photos {
			rec := models.PropertyPhoto{
				PropertyID: p.ID,
				Filename:   ph.Filename,
				URL:        ph.URL,
				SortOrder:  i,
			}
			if err := db.Create(&rec).Error; err != nil {
				lg.Warnw("photo record create failed", "property_id", p.ID, "error", err)
				continue
			}
			p.Photos = append(p.Photos, rec)
		}
		respondStatus(w, http.StatusCreated, p)
	}
}

func GetProperty(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var p models.Property
		if err := propertyPreloads(db).First(&p, "properties.id = ?", id).Error; err != nil {
			respondError(w, lg, apperr.ErrNotFound)
			return
		}
		respondJSON(w, p)
	}
}

func UpdateProperty(svc *property.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in property.UpdateInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "invalid json"))
			return
		}
		p, err := svc.Update(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"), in)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, p)
	}
}

func ArchiveProperty(svc *property.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Archive(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, p)
	}
}

func RestoreProperty(svc *property.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Restore(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, p)
	}
}

func PropertyHistory(svc *property.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hs, err := svc.History(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, hs)
	}
}
