// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"brainz-training/internal/config"
	"brainz-training/internal/domain/ports/adapter"
	"brainz-training/internal/domain/ports/repository"
	aiAdapters "brainz-training/internal/infra/adapters/ai"
	"brainz-training/internal/infra/authclient"
	"brainz-training/internal/infra/logging"
	"brainz-training/internal/infra/metrics"
	"brainz-training/internal/infra/security"
	"brainz-training/internal/infra/storage"
	"brainz-training/internal/infra/web"
	"brainz-training/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (no reply delay, no session gate)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Runtime.Dev {
		log.Printf("[DEV MODE] Enabled")
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Encryption (optional) ----
	var encSvc *security.EncryptionService
	if cfg.Security.EncryptionKey != "" {
		encSvc, err = security.NewEncryptionService(cfg.Security.EncryptionKey)
		if err != nil {
			log.Fatalf("encryption: %v", err)
		}
	}
	codec := storage.NewCodec(encSvc)

	// ---- Chat archive ----
	var archive repository.ChatArchive
	switch strings.ToLower(cfg.Storage.Backend) {
	case "sqlite":
		sq, err := storage.NewSQLiteArchive(cfg.Storage.Dir, codec, logger)
		if err != nil {
			log.Fatalf("sqlite archive: %v", err)
		}
		defer sq.Close()
		archive = sq
	case "redis":
		rd, err := storage.NewRedisArchive(ctx, &cfg.Redis, codec, logger)
		if err != nil {
			log.Fatalf("redis archive: %v", err)
		}
		defer rd.Close()
		archive = rd
	default:
		archive = storage.NewFileArchive(cfg.Storage.Dir, codec, logger)
	}
	logger.Info().Str("backend", cfg.Storage.Backend).Str("dir", cfg.Storage.Dir).Msg("chat archive ready")

	// ---- Reply adapter (OpenAI -> Gemini -> simulated) ----
	var replier adapter.ReplyAdapter
	if cfg.AI.OpenAIKey != "" {
		replier, err = aiAdapters.NewOpenAIReplier(cfg.AI.OpenAIKey, cfg.AI.Model, cfg.AI.OpenAIBase)
		if err != nil {
			log.Fatalf("openai replier: %v", err)
		}
	} else if cfg.AI.GeminiKey != "" {
		replier, err = aiAdapters.NewGeminiReplier(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.Model, cfg.AI.MaxTokens)
		if err != nil {
			log.Fatalf("gemini replier: %v", err)
		}
	} else {
		replier = aiAdapters.NewSimulatedReplier(cfg.Chat.ReplyDelay)
	}
	logger.Info().Str("replier", replier.Name()).Msg("reply adapter ready")

	// ---- Use cases ----
	trainUC := usecase.NewTrainingUseCase(archive, replier, cfg.Chat.HistoryWindow, logger)
	if err := trainUC.Load(ctx); err != nil {
		log.Fatalf("load chats: %v", err)
	}

	tokens := authclient.NewTokenStore(cfg.Storage.Dir)
	gateway := authclient.NewClient(cfg.Auth.AuthBaseURL, cfg.Auth.UserBaseURL, cfg.Auth.Timeout, tokens, logger)
	authUC := usecase.NewAuthUseCase(gateway, logger)

	// ---- Web server ----
	var sessionAuth *web.AuthManager
	if cfg.Security.SessionSecret != "" && !cfg.Runtime.Dev {
		sessionAuth = web.NewAuthManager(cfg.Security.SessionSecret, strings.HasPrefix(cfg.Server.BaseURL, "https"), "", cfg.Security.SessionTTL)
	} else {
		logger.Warn().Msg("session gate disabled (no security.session_secret or dev mode)")
	}
	srv := web.NewServer(trainUC, authUC, replier, sessionAuth, cfg.Server.BaseURL, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	_ = server.Shutdown(shutCtx)
	cancel()
}
