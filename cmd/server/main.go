package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/underneath-app/underneath/internal/api"
	"github.com/underneath-app/underneath/internal/config"
	"github.com/underneath-app/underneath/internal/mailer"
	"github.com/underneath-app/underneath/internal/notify"
	"github.com/underneath-app/underneath/internal/repository/postgres"
	"github.com/underneath-app/underneath/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Initialize notification hub
	hub := notify.NewHub()
	go hub.Run()

	// Initialize mailer
	var mail mailer.Mailer = mailer.LogMailer{}
	if cfg.MailAPIURL != "" && cfg.MailAPIKey != "" {
		mail = mailer.NewClient(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFromAddress, cfg.MailFromName)
	}

	// Initialize services
	services := service.NewServices(repos, cfg, mail, hub)

	// Initialize router
	router := api.NewRouter(services, hub, cfg)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Println("Server stopped")
}
