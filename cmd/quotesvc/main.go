package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finbridge/quote-service/internal/application"
	"github.com/finbridge/quote-service/internal/infrastructure/config"
	"github.com/finbridge/quote-service/internal/infrastructure/marketdata/yahoo"
	httpHandler "github.com/finbridge/quote-service/internal/interfaces/http"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// setupLogger configures and returns a structured logger with source information
func setupLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, opts))
	slog.SetDefault(logger)
	return logger
}

// createQuoteProvider creates the Yahoo Finance client from configuration
func createQuoteProvider(cfg *config.Config) *yahoo.Client {
	client := yahoo.NewClientWithHTTPClient(&http.Client{
		Timeout: cfg.HTTPTimeout,
	})
	client.SetBaseURLs(cfg.ChartBaseURL, cfg.SearchBaseURL)
	return client
}

// buildServer creates and configures the HTTP server with all routes and handlers
func buildServer(cfg *config.Config, quoteService *application.QuoteService) *http.Server {
	router := gin.Default()
	handler := httpHandler.NewHandler(quoteService)
	httpHandler.SetupRoutes(router, handler)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server
}

// run contains the main application logic without os.Exit calls
// This makes it testeable
func run() error {
	setupLogger()

	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	provider := createQuoteProvider(cfg)
	quoteService := application.NewQuoteService(provider, cfg.BatchConcurrency)

	server := buildServer(cfg, quoteService)

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "host", cfg.ServerHost, "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	// Wait for termination signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
		slog.Info("Received shutdown signal")
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	slog.Info("Server exited gracefully")
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("Application error", "error", err)
		os.Exit(1)
	}
}
