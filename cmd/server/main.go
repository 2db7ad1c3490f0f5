package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/tranaskommun/tranas-forms/internal/api"
	"github.com/tranaskommun/tranas-forms/internal/api/handlers"
	"github.com/tranaskommun/tranas-forms/internal/config"
	"github.com/tranaskommun/tranas-forms/internal/mail"
	"github.com/tranaskommun/tranas-forms/internal/repositories"
	"github.com/tranaskommun/tranas-forms/internal/service"
	"github.com/tranaskommun/tranas-forms/internal/storage"
)

func main() {
	cfg := config.Envs

	// Connect to database
	repositories.ConnectDatabase()
	formsRepo := repositories.NewFormRepository(repositories.DB)
	subsRepo := repositories.NewSubmissionRepository(repositories.DB)

	var store storage.Storage
	switch cfg.Upload.Backend {
	case "s3":
		store = storage.NewS3Storage(cfg.S3)
		log.Println("Using S3 upload storage")
	default:
		store = storage.NewDiskStorage(cfg.Upload.Dir, cfg.Upload.PublicBaseURL)
		log.Println("Using disk upload storage in", cfg.Upload.Dir)
	}

	mailer, err := mail.NewSMTPMailer(cfg.SMTP)
	if err != nil {
		log.Fatalf("Could not configure mail transport: %v", err)
	}

	issuer := service.NewFormTokenIssuer(cfg.JWTSecret, time.Duration(cfg.FormTokenTTLHours)*time.Hour)
	svc := service.NewSubmissionService(
		formsRepo, subsRepo, store, mailer, issuer,
		cfg.DefaultRecipient, cfg.AdminEmail,
	)

	router := api.SetupRouter(cfg, api.Handlers{
		Submissions: handlers.NewSubmissionHandler(svc, cfg.Upload.MaxUploadMB),
		Forms:       handlers.NewFormHandler(formsRepo, issuer),
		Admin:       handlers.NewAdminHandler(formsRepo, subsRepo),
		Auth:        handlers.NewAuthHandler(cfg.AdminPasswordHash, cfg.JWTSecret, cfg.Environment == "production"),
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
		// Timeouts prevent resource exhaustion from slow clients; writes
		// stay generous because a submission waits on SMTP.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Starting Tranås Forms server on port: %s", cfg.Port)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on port %s: %v", cfg.Port, err)
	}
}
