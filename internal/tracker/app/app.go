package app

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

	"github.com/tracklane/tracklane/internal/tracker/domain"
	httpapi "github.com/tracklane/tracklane/internal/tracker/http"
	"github.com/tracklane/tracklane/internal/tracker/service"
	"github.com/tracklane/tracklane/internal/tracker/store"
	"github.com/tracklane/tracklane/internal/tracker/store/drivers/sqlite"
	"github.com/tracklane/tracklane/pkg/clockx"
	"github.com/tracklane/tracklane/pkg/jwtx"
	"github.com/tracklane/tracklane/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application wires the tracker service together: store, services,
// router and HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer *jwtx.Signer

	userService   *service.UserService
	tokenService  *service.TokenService
	boardService  *service.BoardService
	taskService   *service.TaskService
	timerService  *service.TimerService
	reportService *service.ReportService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tracker",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, err := initSigningKeys()
	if err != nil {
		return nil, err
	}
	app.signer = signer

	app.initServices()
	app.initHTTP()

	if err := app.seedAdmin(context.Background()); err != nil {
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("tracker starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests and closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down tracker...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("tracker stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() {
	app.userService = &service.UserService{Store: app.db}
	app.tokenService = &service.TokenService{
		Signer:    app.signer,
		Issuer:    app.cfg.Issuer,
		AccessTTL: app.cfg.AccessTTL,
		Clock:     clockx.System,
	}
	app.boardService = &service.BoardService{Store: app.db}
	app.taskService = &service.TaskService{Store: app.db}
	app.timerService = &service.TimerService{Store: app.db, Clock: clockx.System}
	app.reportService = &service.ReportService{Store: app.db}
}

func (app *Application) initHTTP() {
	verifier := jwtx.VerifierForSigner(app.cfg.Issuer, app.signer)

	router := httpapi.NewRouter(verifier, BuildVersion, app.db, app.logger)
	router.UserService = app.userService
	router.TokenService = app.tokenService
	router.BoardService = app.boardService
	router.TaskService = app.taskService
	router.TimerService = app.timerService
	router.ReportService = app.reportService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// seedAdmin creates the configured admin account if it does not exist
// yet. Without it a fresh deployment has no way to reach the admin-only
// endpoints.
func (app *Application) seedAdmin(ctx context.Context) error {
	if app.cfg.AdminUsername == "" || app.cfg.AdminPassword == "" {
		return nil
	}

	_, err := app.userService.Register(ctx, service.RegisterRequest{
		Username: app.cfg.AdminUsername,
		Password: app.cfg.AdminPassword,
		Role:     domain.RoleAdmin,
	})
	if errors.Is(err, service.ErrUsernameTaken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	app.logger.Info("admin account seeded", "username", app.cfg.AdminUsername)
	return nil
}
