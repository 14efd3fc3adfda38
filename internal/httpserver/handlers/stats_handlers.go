package handlers

import (
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"backoffice/internal/models"
)

type bucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// Statistics summarizes the board for managers: stock counts, status
// and reference-data breakdowns, and outstanding call work.
func Statistics(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var active, archived, openCalls int64
		if err := db.Model(&models.Property{}).Where("is_archived = false").Count(&active).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		if err := db.Model(&models.Property{}).Where("is_archived = true").Count(&archived).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		if err := db.Model(&models.CallAssignment{}).Where("is_called = false").Count(&openCalls).Error; err != nil {
			respondError(w, lg, err)
			return
		}

		var byStatus []bucket
		if err := db.Model(&models.Property{}).
			Select("status as key, count(*) as count").
			Where("is_archived = false").
			Group("status").
			Scan(&byStatus).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		var byDistrict []bucket
		if err := db.Model(&models.Property{}).
			Select("districts.name as key, count(*) as count").
			Joins("JOIN districts ON districts.id = properties.district_id").
			Where("properties.is_archived = false").
			Group("districts.name").
			Scan(&byDistrict).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		var byCategory []bucket
		if err := db.Model(&models.Property{}).
			Select("categories.name as key, count(*) as count").
			Joins("JOIN categories ON categories.id = properties.category_id").
			Where("properties.is_archived = false").
			Group("categories.name").
			Scan(&byCategory).Error; err != nil {
			respondError(w, lg, err)
			return
		}

		respondJSON(w, map[string]any{
			"active_properties":     active,
			"archived_properties":   archived,
			"open_call_assignments": openCalls,
			"by_status":             byStatus,
			"by_district":           byDistrict,
			"by_category":           byCategory,
		})
	}
}
