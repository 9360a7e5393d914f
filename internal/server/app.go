// Package server assembles the reference backend: Postgres repositories,
// S3 media storage and the gin REST API, with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/coursekeeper/internal/logging"
	"github.com/dmitrijs2005/coursekeeper/internal/server/config"
	"github.com/dmitrijs2005/coursekeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/coursekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/coursekeeper/internal/server/services"
	"github.com/dmitrijs2005/coursekeeper/internal/server/storage"
	"github.com/gin-gonic/gin"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *http.Server
}

// openDB is a seam so tests can run the app without Postgres.
var openDB = repomanager.OpenPostgres

var runMigrations = func(ctx context.Context, rm repomanager.RepositoryManager, db *sql.DB) error {
	return rm.RunMigrations(ctx, db)
}

// newObjectStore is a seam so tests can run the app without S3.
var newObjectStore = func(ctx context.Context, c *config.Config) (storage.ObjectStore, error) {
	return storage.NewS3Store(ctx, c)
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := runMigrations(ctx, rm, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	store, err := newObjectStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	curriculum := services.NewCurriculumService(db, rm, logger)
	media := services.NewMediaService(store, c.MediaBaseURL, c.MaxUploadBytes(), logger)

	gin.SetMode(gin.ReleaseMode)
	router := httpapi.NewRouter(httpapi.NewHandler(curriculum, media, logger), []byte(c.SecretKey), logger)

	return &App{
		config: c,
		logger: logger,
		db:     db,
		http:   &http.Server{Addr: c.EndpointAddr, Handler: router},
	}, nil
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then drains
// in-flight requests for at most ShutdownTimeout.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.logger.Info(ctx, "Starting server...", "addr", app.config.EndpointAddr)

	errCh := make(chan error, 1)
	go func() {
		if err := app.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	app.logger.Info(context.Background(), "Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	if err := app.http.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "http shutdown", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(shutdownCtx, "db close", "error", err)
	}

	return runErr
}
