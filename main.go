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

	"venchmarks/internal/auth"
	"venchmarks/internal/config"
	"venchmarks/internal/credential"
	"venchmarks/internal/handler"
	"venchmarks/internal/ingest"
	"venchmarks/internal/registrar"
	"venchmarks/internal/repository"
	"venchmarks/pkg"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("venchmarks exited", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, dotenvLoaded, err := config.Load()
	if err != nil {
		return err
	}
	if !dotenvLoaded {
		logger.Info(".env not found, using environment variables")
	}
	gin.SetMode(cfg.GinMode)

	db, err := pkg.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database connected", "driver", db.DriverName())

	if err := pkg.Migrate(ctx, db); err != nil {
		return err
	}
	if err := pkg.Seed(ctx, db); err != nil {
		return err
	}

	repo := repository.New(db)
	reg := registrar.New(repo,
		credential.Generator{Algorithm: cfg.KeyAlgorithm, Bits: cfg.RSABits},
		registrar.Options{Digest: cfg.Digest, UploadURL: cfg.UploadURL(), Logger: logger},
	)
	in := ingest.New(repo, cfg.Digest, logger)
	h := handler.New(repo, reg, in, cfg.LoginURL, logger)

	router, err := handler.NewRouter(h, handler.RouterOptions{
		Auth: auth.Options{
			Header:   cfg.AuthHeader,
			LoginURL: cfg.LoginURL,
			DevUser:  cfg.DevUser,
		},
		Logger: logger,
		DB:     db,
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}
	if cfg.DevUser != "" {
		logger.Warn("development login enabled; every request is authenticated", "user", cfg.DevUser)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "base_url", cfg.BaseURL)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
