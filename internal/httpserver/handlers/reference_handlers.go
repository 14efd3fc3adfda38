package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"backoffice/internal/apperr"
	"backoffice/internal/models"
)

// Reference data: districts and categories. Flat lookup lists with an
// active flag; creation is gated on ADMIN/MANAGER at the router.

func ListDistricts(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ds []models.District
		if err := db.Where("is_active = true").Order("name asc").Find(&ds).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, ds)
	}
}

func CreateDistrict(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "invalid json"))
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "name is required"))
			return
		}
		d := models.District{Name: strings.TrimSpace(req.Name), Description: req.Description, IsActive: true}
		if err := db.Create(&d).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondStatus(w, http.StatusCreated, d)
	}
}

func ListCategories(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cs []models.Category
		if err := db.Where("is_active = true").Order("name asc").Find(&cs).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, cs)
	}
}

func CreateCategory(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "invalid json"))
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "name is required"))
			return
		}
		c := models.Category{Name: strings.TrimSpace(req.Name), Description: req.Description, IsActive: true}
		if err := db.Create(&c).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondStatus(w, http.StatusCreated, c)
	}
}
