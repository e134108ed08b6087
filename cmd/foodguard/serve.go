package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foodguard/backend/config"
	httpDelivery "github.com/foodguard/backend/internal/delivery/http"
	"github.com/foodguard/backend/internal/domain"
	"github.com/foodguard/backend/internal/infrastructure/barcode"
	"github.com/foodguard/backend/internal/infrastructure/sqlite"
	"github.com/foodguard/backend/internal/infrastructure/upload"
	"github.com/foodguard/backend/internal/usecase"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, _ []string) {
			// the server has no data output, so logs go to stdout
			log.SetOutput(cmd.OutOrStdout())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log.Printf("Starting FoodGuard Backend v%s", version)
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	products, cleanup, err := newProductService(cfg)
	if err != nil {
		return err
	}
	defer cleanup.Close()

	userStore, err := sqlite.NewUserStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer userStore.Close()
	log.Printf("User store: %s", cfg.Database.Path)

	tempStore, err := upload.NewTempStore(cfg.Upload.Dir, cfg.Upload.AllowedExtensions)
	if err != nil {
		return err
	}
	log.Printf("Uploads: %s (%v)", tempStore.Dir(), cfg.Upload.AllowedExtensions)

	decoder := barcode.NewDecoder()
	decoder.SetDebug(cfg.Server.Environment == "development")
	decoder.SetMaxPixels(cfg.Upload.MaxPixels)

	// Initialize usecase layer
	users := usecase.NewUserService(userStore, domain.Suggestions{
		Allergies:        cfg.Suggestions.Allergies,
		HealthConditions: cfg.Suggestions.HealthConditions,
	})
	scans := usecase.NewScanService(tempStore, decoder, products, usecase.NewSafetyMatcher(usecase.SafetyMatcherConfig{
		EnableDebugLogging: cfg.Server.Environment == "development",
	}))

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(users, scans, products, cfg.Server.MaxUploadBytes)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, httpDelivery.UserMiddleware(users))

	// Start server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
