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

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"symbol_backend/internal/app/config"
	"symbol_backend/internal/app/di"
	"symbol_backend/internal/app/router"
	exchangehandler "symbol_backend/internal/feature/exchanges/transport/handler"
	symbollistadapters "symbol_backend/internal/feature/symbollist/adapters"
	symbollisthandler "symbol_backend/internal/feature/symbollist/transport/handler"
	symbollistusecase "symbol_backend/internal/feature/symbollist/usecase"
	jwtmw "symbol_backend/internal/platform/jwt"
	"symbol_backend/internal/platform/logger"
)

func main() {
	configDir := pflag.StringP("config", "c", "configs", "Directory holding config.yaml and .env")
	issueToken := pflag.String("issue-token", "", "Print an operator token for SUBJECT and exit")
	pflag.Parse()

	cfg, err := config.Load(*configDir, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	log, closer := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Dir:        cfg.Log.Dir,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}, os.Stderr)
	defer func() { _ = closer.Close() }()
	slog.SetDefault(log)

	// 運用者トークンの発行
	if *issueToken != "" {
		token, err := jwtmw.NewGenerator(cfg.Server.JWTSecret, cfg.Server.TokenTTL).GenerateToken(*issueToken)
		if err != nil {
			log.Error("failed to issue token", "error", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	// JWT_SECRETチェック（開発中の注意喚起）
	if cfg.Server.JWTSecret == "" {
		log.Warn("server.jwt_secret is not set. Refresh endpoints will reject every request.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := di.NewPipeline(ctx, cfg, di.Options{Database: true}, log)
	if err != nil {
		log.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	defer pipeline.Close()

	deps := router.Deps{
		Exchanges:   exchangehandler.NewExchangeHandler(pipeline.Registry),
		Checks:      pipeline.HealthChecks(),
		JWTSecret:   cfg.Server.JWTSecret,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      log,
	}
	if pipeline.DB != nil {
		symbolRepo := symbollistadapters.NewSymbolRepository(pipeline.DB)
		deps.Symbols = symbollisthandler.NewSymbolHandler(symbollistusecase.NewSymbolUsecase(symbolRepo))
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	}()

	log.Info("server listening", "addr", cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}
