// @title           Interior Design Backend API
// @version         1.0.0
// @description     Backend API for restyling room photos with Gemini. It handles project creation, background style generation, refinement previews with version history, design stories, chat and favorites.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"interior-design-backend/internal/config"
	"interior-design-backend/internal/database"
	"interior-design-backend/internal/gateway"
	"interior-design-backend/internal/handlers"
	"interior-design-backend/internal/logging"
	"interior-design-backend/internal/services"
	"interior-design-backend/internal/store"
	"interior-design-backend/internal/supabase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logging.New(cfg.LogLevel, os.Stdout)

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Snapshot storage: Postgres when configured, otherwise process memory
	var kv store.KV = store.NewMemoryStore()
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set; projects are kept in memory and lost on restart")
	} else {
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := database.NewMigrator(db, log).Run(ctx); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Info("Migrations completed successfully")
		kv = store.NewPostgresStore(db)
	}

	opts := services.Options{
		StyleConcurrency: cfg.StyleConcurrency,
		PreviewTTL:       cfg.PreviewTTL,
		Logger:           log,
	}

	// Image storage
	if cfg.StorageEnabled() {
		supabaseClient, err := supabase.NewClient(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize Supabase client: %v", err)
		}
		opts.Images = supabaseClient.Images()
	} else {
		log.Warn("Supabase storage not configured; image bytes are stored inline")
	}

	// Gemini
	provider, err := gateway.NewGenAIProvider(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}
	policy := gateway.DefaultPolicy()
	policy.MaxAttempts = cfg.GenerationAttempts
	gen := gateway.New(provider, gateway.Options{
		Models: gateway.ModelSet{
			Fast:      cfg.FastModel,
			Pro:       cfg.ProModel,
			Image:     cfg.ImageModel,
			ImageEdit: cfg.ImageEditModel,
			Chat:      cfg.ChatModel,
		},
		Policy:         policy,
		Timeout:        cfg.RequestTimeout,
		ThinkingBudget: int32(cfg.ThinkingBudget),
		Logger:         log,
	})

	designs := services.NewDesignService(gen, store.NewSnapshots(kv), opts)

	router := handlers.NewRouter(cfg, designs, log)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown failed: %v", err)
	}
	designs.Close()
}
