// Package main provides the entry point for the Solace server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/solace-ai/solace/internal/auth"
	"github.com/solace-ai/solace/internal/chat"
	"github.com/solace-ai/solace/internal/config"
	"github.com/solace-ai/solace/internal/event"
	"github.com/solace-ai/solace/internal/logging"
	"github.com/solace-ai/solace/internal/mood"
	"github.com/solace-ai/solace/internal/provider"
	"github.com/solace-ai/solace/internal/server"
	"github.com/solace-ai/solace/internal/storage"
)

var (
	port      = flag.Int("port", 0, "Server port (overrides config)")
	directory = flag.String("directory", "", "Config directory")
	version   = flag.Bool("version", false, "Print version and exit")
)

const Version = "0.1.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("solace-server %s\n", Version)
		os.Exit(0)
	}

	// Optional .env for local development
	godotenv.Load()

	cfg, err := config.Load(*directory)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logging.Info().Str("version", Version).Msg("starting solace server")

	identity, err := auth.NewJWTIdentity(cfg.JWTSecret)
	if err != nil {
		logging.Fatal().Err(err).Msg("identity configuration")
	}

	ctx := context.Background()
	registry, err := provider.Initialize(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("provider initialization")
	}
	model, err := registry.Default()
	if err != nil {
		logging.Fatal().Err(err).Msg("no usable model provider")
	}
	logging.Info().Str("provider", model.ID()).Msg("model provider ready")

	store := storage.New(cfg.DataDir)
	bus := event.NewBus()
	defer bus.Close()
	notifier := event.NewNotifier(bus)

	chatService := chat.NewService(
		chat.NewFileStore(store),
		model,
		chat.NewDetector(rand.New(rand.NewSource(time.Now().UnixNano()))),
		notifier,
	)
	moodService := mood.NewService(store, notifier)

	serverConfig := server.DefaultConfig()
	serverConfig.Port = cfg.Port
	serverConfig.EnableCORS = cfg.EnableCORS

	srv := server.New(serverConfig, identity, chatService, moodService, bus)

	go func() {
		logging.Info().Int("port", cfg.Port).Msg("server listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("server shutdown")
	}

	logging.Info().Msg("server stopped")
}
