package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kulkan/promptiq/internal/api"
	"github.com/kulkan/promptiq/internal/config"
	"github.com/kulkan/promptiq/internal/evaluation"
	"github.com/kulkan/promptiq/internal/gemini"
	"github.com/kulkan/promptiq/internal/logger"
	"github.com/kulkan/promptiq/internal/payment"
	"github.com/kulkan/promptiq/internal/usage"
)

// customRecovery is a middleware that recovers from panics and handles http.ErrAbortHandler gracefully.
func customRecovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				if recovered == http.ErrAbortHandler {
					log.Warn("Client connection aborted", "path", c.Request.URL.Path)
					c.Abort()
					return
				}

				log.Error("Panic recovered",
					"error", recovered,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":   "ServerError",
					"message": "An error occurred while evaluating the prompt.",
				})
			}
		}()
		c.Next()
	}
}

func newUsageStore(ctx context.Context, cfg config.UsageConfig) (usage.Store, error) {
	switch cfg.Store {
	case "redis":
		return usage.NewRedisStore(ctx, cfg.RedisURL)
	default:
		return usage.NewMemoryStore(), nil
	}
}

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, warning, err := config.LoadConfig("config.yaml")
	if err != nil {
		// Use a temporary logger for startup errors
		slog.Error("Error loading configuration", "error", err)
		os.Exit(1)
	}

	// Setup logger
	log := logger.New(cfg.Debug)
	log.Info("Logger initialized", "debug_mode", cfg.Debug)
	if warning != "" {
		log.Warn(warning)
	}

	// Usage gate store
	store, err := newUsageStore(ctx, cfg.Usage)
	if err != nil {
		log.Error("Error initializing usage store", "error", err)
		os.Exit(1)
	}
	log.Info("Usage store initialized", "type", cfg.Usage.Store)

	// Gemini completion client
	completer, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
	if err != nil {
		log.Error("Error creating Gemini client", "error", err)
		os.Exit(1)
	}

	pipeline := evaluation.NewPipeline(completer, log, time.Duration(cfg.Gemini.TimeoutSeconds)*time.Second)

	payments := payment.NewService(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, cfg.Stripe.PriceCents, log)
	if !payments.Configured() {
		log.Warn("Stripe is not configured; checkout and webhook endpoints will return 503")
	}

	// Create a Gin router
	router := gin.New()
	// Use our custom recovery middleware instead of the default one.
	router.Use(customRecovery(log))

	// If debug mode is enabled, add the logger middleware
	if cfg.Debug {
		// This uses the default gin logger, which is fine for development.
		router.Use(gin.Logger())
	}

	api.SetupRoutes(router, api.NewHandler(pipeline, store, payments, log))

	// Create and start the main server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := completer.Close(); err != nil {
		log.Warn("Failed to close Gemini client", "error", err)
	}
	if err := store.Close(); err != nil {
		log.Warn("Failed to close usage store", "error", err)
	}

	log.Info("Server exiting")
}
