package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	dbPostgres "github.com/kailas-cloud/vitrine/internal/db/postgres"
	"github.com/kailas-cloud/vitrine/internal/metrics"
	chiTransport "github.com/kailas-cloud/vitrine/internal/transport/chi"
	healthuc "github.com/kailas-cloud/vitrine/internal/usecase/health"
	"github.com/kailas-cloud/vitrine/internal/version"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()
			return serve(cmd.Context(), a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	cfg, logger := a.cfg, a.logger
	logger.Info("Starting vitrine API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.Server.Port),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("index_backend", cfg.Index.Backend),
	)

	if err := a.openStores(ctx); err != nil {
		return err
	}

	// Register index metrics explicitly (no init())
	metrics.RegisterIndexMetrics()

	idx, checker, err := a.buildIndex(ctx)
	if err != nil {
		return err
	}

	exhibits := a.exhibitService()
	if cfg.Exhibit.EnsureOnBoot {
		e, created, err := exhibits.EnsureDefault(ctx, cfg.Exhibit.DefaultSlug, cfg.Exhibit.DefaultTitle)
		if err != nil {
			return fmt.Errorf("ensure default exhibit: %w", err)
		}
		logger.Info("Default exhibit ready", zap.String("slug", e.Slug()), zap.Bool("created", created))
	}

	server := chiTransport.NewServer(
		exhibits,
		a.searchService(),
		a.autocompleteService(idx),
		healthuc.New(a.storePinger, checker, logger),
		logger,
	)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(jsonRecoverer(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Location", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(chiTransport.CuratorAuth(chiTransport.AuthOptions{
		APIKeys:     append([]string{cfg.Server.APIKey}, cfg.Server.ExtraAPIKeys...),
		PublicReads: cfg.Server.PublicReads,
	}))
	r.Use(metrics.Middleware("/metrics", "/health"))
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-quit:
		logger.Info("Received shutdown signal")
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

func newMigrateCmd() *cobra.Command {
	var status bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply Postgres schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()
			if a.cfg.Store.Driver != "postgres" {
				a.logger.Info("Nothing to migrate", zap.String("store_driver", a.cfg.Store.Driver))
				return nil
			}

			ctx := cmd.Context()
			conn, err := a.openPostgres(ctx)
			if err != nil {
				return err
			}
			if status {
				return dbPostgres.MigrationStatus(ctx, conn)
			}
			if err := dbPostgres.Migrate(ctx, conn); err != nil {
				return err
			}
			a.logger.Info("Migrations applied")
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "print migration status instead of applying")
	return cmd
}

func newInitDefaultCmd() *cobra.Command {
	var slug, title string
	cmd := &cobra.Command{
		Use:   "init-default",
		Short: "Find or create the default exhibit with its default search and home page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			if err := a.openStores(ctx); err != nil {
				return err
			}
			if slug == "" {
				slug = a.cfg.Exhibit.DefaultSlug
			}
			if title == "" {
				title = a.cfg.Exhibit.DefaultTitle
			}

			e, created, err := a.exhibitService().EnsureDefault(ctx, slug, title)
			if err != nil {
				return fmt.Errorf("ensure default exhibit: %w", err)
			}
			a.logger.Info("Default exhibit ready",
				zap.String("id", e.ID()),
				zap.String("slug", e.Slug()),
				zap.Bool("created", created),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&slug, "slug", "", "slug of the default exhibit (config exhibit.default_slug)")
	cmd.Flags().StringVar(&title, "title", "", "title used when the exhibit is created (config exhibit.default_title)")
	return cmd
}
