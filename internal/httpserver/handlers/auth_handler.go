package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"backoffice/internal/apperr"
	"backoffice/internal/auth"
	"backoffice/internal/config"
	"backoffice/internal/models"
	"backoffice/internal/store"
)

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(db *gorm.DB, lg *zap.SugaredLogger, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, lg, apperr.Wrap(apperr.ErrInvalidPayload, "invalid json"))
			return
		}
		var u models.User
		err := db.First(&u, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(req.Email))).Error
		if err != nil || !u.IsActive || u.PasswordHash == nil {
			respondError(w, lg, apperr.Wrap(apperr.ErrUnauthenticated, "invalid credentials"))
			return
		}
		if err := auth.CheckPassword(*u.PasswordHash, req.Password); err != nil {
			respondError(w, lg, apperr.Wrap(apperr.ErrUnauthenticated, "invalid credentials"))
			return
		}
		jti := uuid.NewString()
		sess := models.Session{
			JTI:       jti,
			UserID:    u.ID,
			ExpiresAt: time.Now().Add(cfg.JWTTTL),
			CreatedAt: time.Now(),
		}
		if err := db.Create(&sess).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		tok, err := auth.Sign(cfg.JWTSecret, u.ID, u.Role, jti, cfg.JWTTTL)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		now := time.Now()
		_ = db.Model(&u).Update("last_login_at", &now).Error
		respondJSON(w, map[string]any{
			"token": tok,
			"user": map[string]any{
				"id": u.ID, "email": u.Email, "name": u.Name, "role": u.Role,
			},
		})
	}
}

// Logout revokes the session behind the presented token. The token
// itself stays cryptographically valid until expiry; the middleware
// rejects it because the session row is revoked.
func Logout(st store.Store, lg *zap.SugaredLogger, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		claims, err := auth.Verify(cfg.JWTSecret, raw)
		if err != nil || claims.JWTID == "" {
			respondError(w, lg, apperr.ErrUnauthenticated)
			return
		}
		revoked, err := st.RevokeSession(r.Context(), claims.JWTID)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if !revoked {
			respondError(w, lg, apperr.Wrap(apperr.ErrUnauthenticated, "session not found"))
			return
		}
		respondJSON(w, map[string]any{"revoked": true})
	}
}

func Me(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := auth.FromContext(r.Context())
		var u models.User
		if err := db.First(&u, "id = ?", p.ID).Error; err != nil {
			respondError(w, lg, apperr.ErrNotFound)
			return
		}
		respondJSON(w, u)
	}
}
