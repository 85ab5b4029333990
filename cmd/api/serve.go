package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ozcanhakn/kanban-app/internal/config"
	"github.com/ozcanhakn/kanban-app/internal/database"
	"github.com/ozcanhakn/kanban-app/internal/logging"
	"github.com/ozcanhakn/kanban-app/internal/realtime"
	"github.com/ozcanhakn/kanban-app/internal/repository"
	"github.com/ozcanhakn/kanban-app/internal/server"
	"github.com/ozcanhakn/kanban-app/internal/service"
	"github.com/ozcanhakn/kanban-app/internal/storage"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

// bootstrap loads configuration and opens the logger and database shared by
// every command.
func bootstrap() (*config.Config, *zap.Logger, database.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build logger: %w", err)
	}
	zap.ReplaceGlobals(log)

	db, err := database.Open(cfg.Database.DSN(), log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, log, db, nil
}

func serve(ctx context.Context) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	defer closeDB(db, log)

	log.Info("running database migrations")
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	store, err := storage.NewLocalStore(cfg.Storage.Dir, baseURL, []byte(cfg.Auth.JWTSecret))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	var mailer service.Mailer
	if cfg.SMTP.Enabled() {
		mailer = service.NewSMTPMailer(service.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		log.Warn("SMTP not configured, magic links are only logged")
	}

	hub := realtime.NewHub(log)
	services := service.New(repository.NewGormRepositories(db.GetDB()), store, hub, log, service.Options{
		Auth: service.AuthOptions{
			JWTSecret:       cfg.Auth.JWTSecret,
			SessionTTL:      cfg.Auth.SessionTTL,
			MagicLinkTTL:    cfg.Auth.MagicLinkTTL,
			ExposeMagicLink: cfg.IsDevelopment(),
			Mailer:          mailer,
		},
		Attachments: service.AttachmentOptions{
			MaxUploadBytes: cfg.Storage.MaxUploadBytes,
			URLTTL:         cfg.Storage.URLTTL,
		},
	})

	apiServer := server.NewServer(server.Deps{
		Port:          cfg.Port,
		PublicBaseURL: baseURL,
		CORSOrigins:   cfg.CORSOrigins,
		Services:      services,
		DB:            db,
		Hub:           hub,
		Log:           log,
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		log.Info("starting server", zap.String("addr", apiServer.Addr), zap.String("env", cfg.Env))
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down gracefully, press Ctrl+C again to force")
		stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server exiting")
	return nil
}

func closeDB(db database.Service, log *zap.Logger) {
	log.Info("closing database connection pool")
	if err := db.Close(); err != nil {
		log.Error("error closing database connection pool", zap.Error(err))
	}
}
