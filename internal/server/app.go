// Package server wires configuration, storage, services and transports into
// a runnable application: the JSON HTTP API plus the gRPC health service,
// stopped together on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samudhan2008/sa-notes-beta/internal/logging"
	"github.com/samudhan2008/sa-notes-beta/internal/server/config"
	"github.com/samudhan2008/sa-notes-beta/internal/server/httpapi"
	"github.com/samudhan2008/sa-notes-beta/internal/server/objectstore"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/repomanager"
	"github.com/samudhan2008/sa-notes-beta/internal/server/seed"
	"github.com/samudhan2008/sa-notes-beta/internal/server/services"

	gs "github.com/samudhan2008/sa-notes-beta/internal/server/grpc"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	repomanager  *repomanager.SQLRepositoryManager
	userService  *services.UserService
	noteService  *services.NoteService
	adminService *services.AdminService
}

// NewApp opens the database, applies migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)

	db, rm, err := repomanager.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	var files services.FileStore
	if store := objectstore.NewS3Store(c); store.Enabled() {
		files = store
	}

	us := services.NewUserService(db, rm, c, logger)
	ns := services.NewNoteService(db, rm, files, c, logger)
	as := services.NewAdminService(db, rm, ns, logger)

	return &App{
		config:       c,
		logger:       logger,
		db:           db,
		repomanager:  rm,
		userService:  us,
		noteService:  ns,
		adminService: as,
	}, nil
}

// bootstrap creates the configured admin account and seeds an empty catalog.
func (app *App) bootstrap(ctx context.Context) error {
	if app.config.AdminPassword != "" {
		if err := app.userService.EnsureAdmin(ctx, app.config.AdminEmail, app.config.AdminPassword); err != nil {
			return fmt.Errorf("admin bootstrap error: %w", err)
		}
	}

	opts := seed.Options{
		Samples:  app.config.SeedSampleNotes,
		Demo:     app.config.DemoNotes,
		DemoSeed: time.Now().UnixNano(),
	}
	if _, err := seed.New(app.db, app.repomanager, app.logger).Run(ctx, opts); err != nil {
		return fmt.Errorf("seed error: %w", err)
	}
	return nil
}

// Run serves until a signal arrives, ctx is cancelled or a server fails.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	if err := app.bootstrap(ctx); err != nil {
		return err
	}

	handlers := httpapi.NewHandlers(app.userService, app.noteService, app.adminService, app.logger, app.config.SecretKey)
	httpServer := httpapi.NewServer(app.config.EndpointAddrHTTP, handlers.Router(), app.logger)
	grpcServer := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.db, app.config.HealthCheckInterval)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpServer.Run(ctx) })
	g.Go(func() error { return grpcServer.Run(ctx) })

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped with error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
