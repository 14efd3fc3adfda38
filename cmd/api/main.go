package main

import (
	"context"
	"log"
	"net/http"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"backoffice/internal/blob"
	"backoffice/internal/calls"
	"backoffice/internal/config"
	"backoffice/internal/httpserver"
	"backoffice/internal/logger"
	"backoffice/internal/models"
	"backoffice/internal/property"
	"backoffice/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}
	lg := logger.New(cfg.LogLevel)
	defer lg.Sync()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.District{},
		&models.Building{},
		&models.Category{},
		&models.Property{},
		&models.PropertyPhoto{},
		&models.PropertyHistory{},
		&models.CallAssignment{},
		&models.Session{},
	); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}

	blobs, err := blob.NewS3(context.Background(), cfg.S3)
	if err != nil {
		lg.Fatalw("blob store init failed", "error", err)
	}

	st := store.NewGorm(db)
	router := httpserver.NewRouter(httpserver.Deps{
		DB:         db,
		Store:      st,
		Logger:     lg,
		Config:     cfg,
		Properties: property.NewService(st, lg),
		Calls:      calls.NewService(st, lg),
		Blobs:      blobs,
	})

	lg.Infow("listening", "port", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		lg.Fatalw("server stopped", "error", err)
	}
}
