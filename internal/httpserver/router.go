package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"backoffice/internal/auth"
	"backoffice/internal/authz"
	"backoffice/internal/blob"
	"backoffice/internal/calls"
	"backoffice/internal/config"
	"backoffice/internal/httpserver/handlers"
	"backoffice/internal/property"
	"backoffice/internal/store"
)

type Deps struct {
	DB         *gorm.DB
	Store      store.Store
	Logger     *zap.SugaredLogger
	Config     config.Config
	Properties *property.Service
	Calls      *calls.Service
	Blobs      blob.Store
}

func NewRouter(d Deps) http.Handler {
	db, lg, cfg := d.DB, d.Logger, d.Config

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Post("/v1/auth/login", handlers.Login(db, lg, cfg))
	r.Post("/v1/admin/bootstrap", handlers.BootstrapAdmin(d.Store, lg))

	r.Group(func(protected chi.Router) {
		protected.Use(auth.JWTAuth(db, cfg.JWTSecret))

		protected.Post("/v1/auth/logout", handlers.Logout(d.Store, lg, cfg))
		protected.Get("/v1/me", handlers.Me(db, lg))

		protected.Get("/v1/districts", handlers.ListDistricts(db, lg))
		protected.Get("/v1/categories", handlers.ListCategories(db, lg))
		protected.Group(func(ref chi.Router) {
			ref.Use(handlers.RequireAction(lg, authz.ActionManageReferenceData))
			ref.Post("/v1/districts", handlers.CreateDistrict(db, lg))
			ref.Post("/v1/categories", handlers.CreateCategory(db, lg))
		})

		protected.Get("/v1/buildings", handlers.ListBuildings(db, lg))
		protected.Get("/v1/addresses", handlers.SuggestAddresses(db, lg))
		protected.Group(func(bld chi.Router) {
			bld.Use(handlers.RequireAction(lg, authz.ActionManageBuildings))
			bld.Post("/v1/buildings", handlers.CreateBuilding(db, lg))
			bld.Patch("/v1/buildings/{id}", handlers.UpdateBuilding(db, lg))
		})

		protected.Get("/v1/properties", handlers.ListProperties(db, lg))
		protected.Post("/v1/properties", handlers.CreateProperty(d.Properties, db, lg))
		protected.Get("/v1/properties/{id}", handlers.GetProperty(db, lg))
		protected.Patch("/v1/properties/{id}", handlers.UpdateProperty(d.Properties, lg))
		protected.Post("/v1/properties/{id}/archive", handlers.ArchiveProperty(d.Properties, lg))
		protected.Post("/v1/properties/{id}/restore", handlers.RestoreProperty(d.Properties, lg))
		protected.Get("/v1/properties/{id}/history", handlers.PropertyHistory(d.Properties, lg))

		protected.Post("/v1/call-assignments", handlers.AssignForCalling(d.Calls, lg))
		protected.Get("/v1/call-assignments", handlers.MyAssignments(d.Calls, lg))
		protected.Put("/v1/call-assignments/{id}", handlers.MarkAssignmentCalled(d.Calls, lg))

		protected.Get("/v1/users", handlers.ListUsers(db, lg))
		protected.Group(func(admin chi.Router) {
			admin.Use(handlers.RequireAction(lg, authz.ActionManageUsers))
			admin.Post("/v1/users", handlers.CreateUser(db, lg))
			admin.Patch("/v1/users/{id}", handlers.UpdateUser(db, lg))
			admin.Delete("/v1/users/{id}", handlers.DeactivateUser(db, lg))
		})

		protected.Post("/v1/photos", handlers.UploadPhoto(d.Blobs, lg))

		protected.With(handlers.RequireAction(lg, authz.ActionViewStatistics)).
			Get("/v1/statistics", handlers.Statistics(db, lg))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
