// Package main is the entry point for the voice-order service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/mrdaebak/voice-order-gateway/internal/catalog"
	"github.com/mrdaebak/voice-order-gateway/internal/config"
	"github.com/mrdaebak/voice-order-gateway/internal/conversation"
	"github.com/mrdaebak/voice-order-gateway/internal/httpapi"
	"github.com/mrdaebak/voice-order-gateway/internal/llm"
	"github.com/mrdaebak/voice-order-gateway/internal/monitoring"
	"github.com/mrdaebak/voice-order-gateway/internal/orders"
	"github.com/mrdaebak/voice-order-gateway/internal/service"
	"github.com/mrdaebak/voice-order-gateway/internal/stt"
)

func main() {
	// .env is optional; the config file references env vars.
	_ = godotenv.Load()

	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	monitoring.Global(cfg.Monitoring)

	cat := catalog.Load(cfg.Catalog.DataDir, cfg.Conversation.AssumedDate)
	languages := conversation.Load(cfg.Conversation.LanguagesPath)

	store, err := orders.NewStore(cfg.Orders)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open order store")
	}
	defer store.Close()

	sanitizer := llm.NewSanitizer(cat.BasePrompt())
	router := llm.NewRouter(cfg.LLM, sanitizer)
	svc := service.New(router, store, cat, languages, cfg.Conversation.AssumedDate, cfg.LLM.ContextWindow)
	sttClient := stt.NewClient(cfg.LLM.Hosted.APIKey, cfg.STT.Model, "")

	handlers := httpapi.NewHandlers(svc, sttClient)
	engine := httpapi.NewEngine(handlers, cfg.Server.AllowedOrigins())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("provider", cfg.LLM.Provider).
			Str("store", cfg.Orders.Store).
			Msg("voice-order service listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
