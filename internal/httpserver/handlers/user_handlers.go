package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"backoffice/internal/apperr"
	"backoffice/internal/auth"
	"backoffice/internal/authz"
	"backoffice/internal/models"
	"backoffice/internal/store"
)

// BootstrapAdmin creates the first administrator account. It is the
// only unauthenticated write in the system and works exactly once:
// as soon as any ADMIN exists the endpoint refuses.
func BootstrapAdmin(st store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Name     string `json:"name"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "invalid json"))
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || req.Name == "" || req.Password == "" {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "email, name and password are required"))
			return
		}
		admins, err := st.CountAdmins(r.Context())
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if admins > 0 {
			respondError(w, lg, apperr.Wrap(apperr.ErrForbidden, "an administrator already exists"))
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		u := models.User{
			Email:        req.Email,
			Name:         req.Name,
			Role:         models.RoleAdmin,
			PasswordHash: &hash,
			IsActive:     true,
		}
		if err := st.CreateUser(r.Context(), &u); err != nil {
			respondError(w, lg, err)
			return
		}
		lg.Infow("bootstrap administrator created", "email", u.Email)
		respondStatus(w, http.StatusCreated, u)
	}
}

// ListUsers returns all accounts for administrators. Any authenticated
// principal may list agents (?role=AGENT) to populate assignment pickers.
func ListUsers(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := auth.FromContext(r.Context())
		role := r.URL.Query().Get("role")
		action := authz.ActionManageUsers
		if role == models.RoleAgent {
			action = authz.ActionListAgents
		}
		if err := authz.Authorize(p, action); err != nil {
			respondError(w, lg, err)
			return
		}
		q := db.Order("created_at desc")
		if role != "" {
			q = q.Where("role = ?", role)
		}
		var users []models.User
		if err := q.Find(&users).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, users)
	}
}

func CreateUser(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Name     string `json:"name"`
			Role     string `json:"role"`
			Password string `json:"password"` // optional: without it the account cannot log in
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "invalid json"))
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || req.Name == "" || req.Role == "" {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "email, name and role are required"))
			return
		}
		u := models.User{Email: req.Email, Name: req.Name, Role: req.Role, IsActive: true}
		if req.Password != "" {
			hash, err := auth.HashPassword(req.Password)
			if err != nil {
				respondError(w, lg, err)
				return
			}
			u.PasswordHash = &hash
		}
		// The unique index on email is the duplicate check; a pre-count
		// would race with concurrent creates anyway.
		if err := db.Create(&u).Error; err != nil {
			if store.IsUniqueViolation(err) {
				respondError(w, lg, apperr.Wrap(apperr.ErrConflict, "user with this email already exists"))
				return
			}
			respondError(w, lg, err)
			return
		}
		respondStatus(w, http.StatusCreated, u)
	}
}

func UpdateUser(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := auth.FromContext(r.Context())
		id := chi.URLParam(r, "id")
		var req struct {
			Name     *string `json:"name"`
			Role     *string `json:"role"`
			IsActive *bool   `json:"is_active"`
			Password *string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "invalid json"))
			return
		}
		if id == p.ID && req.IsActive != nil && !*req.IsActive {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "cannot deactivate your own account"))
			return
		}
		var u models.User
		if err := db.First(&u, "id = ?", id).Error; err != nil {
			respondError(w, lg, apperr.ErrNotFound)
			return
		}
		if req.Name != nil {
			u.Name = *req.Name
		}
		if req.Role != nil {
			u.Role = *req.Role
		}
		if req.IsActive != nil {
			u.IsActive = *req.IsActive
		}
		if req.Password != nil && *req.Password != "" {
			hash, err := auth.HashPassword(*req.Password)
			if err != nil {
				respondError(w, lg, err)
				return
			}
			u.PasswordHash = &hash
		}
		if err := db.Save(&u).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, u)
	}
}

// DeactivateUser is the delete semantic for accounts: users are never
// hard-deleted because properties and history reference them.
func DeactivateUser(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := auth.FromContext(r.Context())
		id := chi.URLParam(r, "id")
		if id == p.ID {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "cannot deactivate your own account"))
			return
		}
		res := db.Model(&models.User{}).Where("id = ?", id).Update("is_active", false)
		if res.Error != nil {
			respondError(w, lg, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			respondError(w, lg, apperr.ErrNotFound)
			return
		}
		respondJSON(w, map[string]any{"deactivated": true})
	}
}
