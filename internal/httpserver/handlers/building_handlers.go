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
	"backoffice/internal/models"
)

// ListBuildings returns active buildings with filters and pagination.
// Readable by any authenticated principal: agents need address lookup
// when recording a property.
func ListBuildings(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(q.Get("limit"))
		if limit < 1 || limit > 100 {
			limit = 20
		}

		tx := db.Model(&models.Building{}).Where("is_active = true")
		if v := q.Get("district_id"); v != "" {
			tx = tx.Where("district_id = ?", v)
		}
		if v := q.Get("year_built"); v != "" {
			if y, err := strconv.Atoi(v); err == nil {
				tx = tx.Where("year_built = ?", y)
			}
		}
		if v := q.Get("wall_material"); v != "" {
			tx = tx.Where("wall_material = ?", v)
		}
		if v := q.Get("total_floors"); v != "" {
			if f, err := strconv.Atoi(v); err == nil {
				tx = tx.Where("total_floors = ?", f)
			}
		}
		if v := q.Get("layout"); v != "" {
			tx = tx.Where("layout = ?", v)
		}
		if v := strings.TrimSpace(q.Get("search")); v != "" {
			like := "%" + v + "%"
			tx = tx.Where("full_address ILIKE ? OR street ILIKE ? OR house_number ILIKE ?", like, like, like)
		}

		var total int64
		if err := tx.Count(&total).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		var buildings []models.Building
		err := tx.Preload("District").
			Order("created_at desc").
			Offset((page - 1) * limit).
			Limit(limit).
			Find(&buildings).Error
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{
			"buildings": buildings,
			"pagination": map[string]any{
				"page": page, "limit": limit, "total": total,
				"pages": (total + int64(limit) - 1) / int64(limit),
			},
		})
	}
}

type buildingReq struct {
	DistrictID   string  `json:"district_id"`
	Street       string  `json:"street"`
	HouseNumber  string  `json:"house_number"`
	YearBuilt    *int    `json:"year_built"`
	WallMaterial *string `json:"wall_material"`
	Layout       *string `json:"layout"`
	TotalFloors  *int    `json:"total_floors"`
	HasElevator  *bool   `json:"has_elevator"`
	HeatingType  *string `json:"heating_type"`
}

func CreateBuilding(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req buildingReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "invalid json"))
			return
		}
		req.Street = strings.TrimSpace(req.Street)
		req.HouseNumber = strings.TrimSpace(req.HouseNumber)
		if req.DistrictID == "" || req.Street == "" || req.HouseNumber == "" {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "district, street and house number are required"))
			return
		}
		var district models.District
		if err := db.First(&district, "id = ?", req.DistrictID).Error; err != nil {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "district does not exist"))
			return
		}
		b := models.Building{
			DistrictID:  req.DistrictID,
			Street:      req.Street,
			HouseNumber: req.HouseNumber,
			FullAddress: req.Street + ", " + req.HouseNumber,
			YearBuilt:   req.YearBuilt,
			TotalFloors: req.TotalFloors,
			IsActive:    true,
		}
		if req.WallMaterial != nil {
			b.WallMaterial = *req.WallMaterial
		}
		if req.Layout != nil {
			b.Layout = *req.Layout
		}
		if req.HasElevator != nil {
			b.HasElevator = *req.HasElevator
		}
		if req.HeatingType != nil {
			b.HeatingType = *req.HeatingType
		}
		if err := db.Create(&b).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondStatus(w, http.StatusCreated, b)
	}
}

func UpdateBuilding(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req buildingReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "invalid json"))
			return
		}
		var b models.Building
		if err := db.First(&b, "id = ?", id).Error; err != nil {
			respondError(w, lg, apperr.ErrNotFound)
			return
		}
		if req.DistrictID != "" {
			var district models.District
			if err := db.First(&district, "id = ?", req.DistrictID).Error; err != nil {
				respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "district does not exist"))
				return
			}
			b.DistrictID = req.DistrictID
		}
		if s := strings.TrimSpace(req.Street); s != "" {
			b.Street = s
		}
		if n := strings.TrimSpace(req.HouseNumber); n != "" {
			b.HouseNumber = n
		}
		b.FullAddress = b.Street + ", " + b.HouseNumber
		if req.YearBuilt != nil {
			b.YearBuilt = req.YearBuilt
		}
		if req.WallMaterial != nil {
			b.WallMaterial = *req.WallMaterial
		}
		if req.Layout != nil {
			b.Layout = *req.Layout
		}
		if req.TotalFloors != nil {
			b.TotalFloors = req.TotalFloors
		}
		if req.HasElevator != nil {
			b.HasElevator = *req.HasElevator
		}
		if req.HeatingType != nil {
			b.HeatingType = *req.HeatingType
		}
		if err := db.Save(&b).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, b)
	}
}

// SuggestAddresses backs the address autocomplete in the property form.
func SuggestAddresses(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			respondJSON(w, []models.Building{})
			return
		}
		var buildings []models.Building
		err := db.Where("is_active = true AND full_address ILIKE ?", "%"+query+"%").
			Preload("District").
			Order("full_address asc").
			Limit(10).
			Find(&buildings).Error
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, buildings)
	}
}
