// Package main запускает HTTP-сервер сервиса вафельной.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/crunchy-waffle/internal/config"
	"github.com/mmeshcher/crunchy-waffle/internal/handler"
	"github.com/mmeshcher/crunchy-waffle/internal/middleware"
	"github.com/mmeshcher/crunchy-waffle/internal/repository"
	"github.com/mmeshcher/crunchy-waffle/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := openRepository(cfg, sugar)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}

	svc := service.NewService(repo)
	defer svc.Close()

	if err := bootstrap(cfg, svc, sugar); err != nil {
		sugar.Fatalw("bootstrap error", "error", err.Error())
	}

	if cfg.AdminPassword == "" {
		sugar.Warn("ADMIN_PASSWORD is not set, admin endpoints will reject every request")
	}

	h := handler.NewHandler(svc, logger, middleware.NewAdminGate(cfg.AdminPassword), cfg.StaticDir)

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting waffle shop server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка сервера)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

func openRepository(cfg *config.Config, sugar *zap.SugaredLogger) (service.Repository, error) {
	if cfg.DatabaseURI == "" {
		sugar.Warn("DATABASE_URI is not set, using in-memory storage")
		return repository.NewMemoryRepository(), nil
	}
	return repository.NewPostgresRepository(cfg.DatabaseURI)
}

// bootstrap заполняет пустое меню и создаёт администратора, если он задан в конфигурации.
func bootstrap(cfg *config.Config, svc *service.Service, sugar *zap.SugaredLogger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	seeded, err := svc.SeedMenu(ctx)
	if err != nil {
		return fmt.Errorf("seed menu: %w", err)
	}
	if seeded {
		sugar.Info("menu seeded with default waffle")
	}

	if !cfg.SeedAdmin() {
		return nil
	}
	created, err := svc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPhone, cfg.AdminUserPassword)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if created {
		sugar.Infow("admin user created", "username", cfg.AdminUsername)
	}
	return nil
}
