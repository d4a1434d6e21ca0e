package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/socialdoc/flock/internal/config"
	"github.com/socialdoc/flock/internal/content"
	"github.com/socialdoc/flock/internal/docstore"
	"github.com/socialdoc/flock/internal/logging"
	"github.com/socialdoc/flock/internal/relationship"
	"github.com/socialdoc/flock/internal/sentiment"
	"github.com/socialdoc/flock/internal/server"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupStore(cfg *config.Config) docstore.Store {
	if cfg.MongoURL == "" {
		slog.Warn("MONGO_URL not set, using in-memory store; data is lost on restart")
		return docstore.NewMemory()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := docstore.NewMongo(ctx, cfg.MongoURL, cfg.MongoDatabase, cfg.StoreTimeout)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	return store
}

func setupRates(cfg *config.Config) *sentiment.Rates {
	rates, err := sentiment.LoadRates(cfg.RatesFile)
	if err != nil {
		slog.Error("Failed to load classifier rates", "error", err, "path", cfg.RatesFile)
		os.Exit(1)
	}
	if cfg.RatesFile == "" {
		slog.Info("No rates file configured, quantify returns raw histograms")
	}
	return rates
}

func runGracefulShutdown(srv *server.Server, cancel context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		cancel()
		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	store := setupStore(cfg)
	rates := setupRates(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	classifier := sentiment.NewLexiconClassifier()
	quantifier := sentiment.NewQuantifier(store, rates, cfg.QuantifyCacheTTL, clock)
	quantifier.StartCacheEviction(ctx, time.Minute)

	contents := content.NewEngine(store, classifier, clock)
	relationships := relationship.NewEngine(store, contents, clock)

	srv := server.NewServer(cfg, relationships, contents, classifier, quantifier, store)

	done := runGracefulShutdown(srv, cancel)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
