package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/guard-deployment/db"
	"github.com/frahmantamala/guard-deployment/internal"
	"github.com/frahmantamala/guard-deployment/internal/core/events"
	"github.com/frahmantamala/guard-deployment/internal/coverage"
	coveragePostgres "github.com/frahmantamala/guard-deployment/internal/coverage/postgres"
	"github.com/frahmantamala/guard-deployment/internal/deployment"
	deploymentPostgres "github.com/frahmantamala/guard-deployment/internal/deployment/postgres"
	"github.com/frahmantamala/guard-deployment/internal/guard"
	guardPostgres "github.com/frahmantamala/guard-deployment/internal/guard/postgres"
	"github.com/frahmantamala/guard-deployment/internal/leave"
	leavePostgres "github.com/frahmantamala/guard-deployment/internal/leave/postgres"
	"github.com/frahmantamala/guard-deployment/internal/rotation"
	rotationPostgres "github.com/frahmantamala/guard-deployment/internal/rotation/postgres"
	"github.com/frahmantamala/guard-deployment/internal/site"
	sitePostgres "github.com/frahmantamala/guard-deployment/internal/site/postgres"
	"github.com/frahmantamala/guard-deployment/internal/transport"
	"github.com/frahmantamala/guard-deployment/internal/transport/rest"
	"github.com/frahmantamala/guard-deployment/internal/transport/swagger"
	"github.com/frahmantamala/guard-deployment/pkg/logger"
	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-retry"
	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server exposing the deployment, leave, coverage and rotation ledgers`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Bus    *events.EventBus
	Router *chi.Mux
	Logger *slog.Logger

	Guards      *guard.Service
	Sites       *site.Service
	Deployments *deployment.Service
	Leaves      *leave.Service
	Coverage    *coverage.Service
	Rotations   *rotation.Service
}

// Clock returns now in the scheduling zone, so "today" follows local calendar days.
func (d *Dependencies) Clock() func() time.Time {
	loc := d.Config.Scheduling.Location()
	return func() time.Time { return time.Now().In(loc) }
}

func (d *Dependencies) Close() {
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("database close error", "error", err)
	}
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	setupRoutes(deps)

	if doc, err := swagger.Load(context.Background()); err != nil {
		deps.Logger.Warn("openapi document is invalid", "error", err)
	} else {
		deps.Logger.Debug("openapi document loaded", "paths", doc.Paths.Len())
	}

	if deps.Config.Scheduling.RunMaintenanceOnStart {
		if _, err := runMaintenance(context.Background(), deps, deps.Clock()()); err != nil {
			deps.Logger.Error("maintenance on start failed", "error", err)
		}
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr, "driver", deps.Config.Database.Driver)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg conc.WaitGroup
	wg.Go(func() {
		scheduleMaintenance(ctx, deps)
	})

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		deps.Logger.Info("received signal, shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			stop()
			wg.Wait()
			os.Exit(1)
		}
	}

	stop()
	wg.Wait()
	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	base := transport.NewBaseHandler(deps.Logger)
	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Config.Database.Driver, rest.Handlers{
		Guard:      guard.NewHandler(base, deps.Guards),
		Site:       site.NewHandler(base, deps.Sites),
		Deployment: deployment.NewHandler(base, deps.Deployments),
		Leave:      leave.NewHandler(base, deps.Leaves),
		Coverage:   coverage.NewHandler(base, deps.Coverage),
		Rotation:   rotation.NewHandler(base, deps.Rotations),
	}, deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg := logger.Init(config.Logging.Level, config.Logging.Format)

	sqlDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := db.OpenGorm(sqlDB.DB, config.Database.Driver, config.Logging.Level != "debug")
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	deps := &Dependencies{
		Config: config,
		DB:     sqlDB,
		Gorm:   gdb,
		Bus:    events.NewEventBus(lg),
		Router: chi.NewRouter(),
		Logger: lg,
	}
	wireServices(deps)
	registerEventHandlers(deps)
	return deps, nil
}

func wireServices(deps *Dependencies) {
	clock := deps.Clock()

	deps.Deployments = deployment.NewService(deploymentPostgres.NewDeploymentRepository(deps.Gorm), deps.Bus, deps.Logger)
	deps.Guards = guard.NewService(guardPostgres.NewGuardRepository(deps.Gorm), deps.Bus, deps.Logger).
		WithClock(clock).
		WithTerminator(deps.Deployments)
	deps.Sites = site.NewService(sitePostgres.NewSiteRepository(deps.Gorm), deps.Logger)
	deps.Leaves = leave.NewService(leavePostgres.NewLeaveRepository(deps.Gorm), deps.Bus, deps.Logger).WithClock(clock)
	deps.Coverage = coverage.NewService(coveragePostgres.NewCoverageRepository(deps.Gorm), deps.Logger)
	deps.Rotations = rotation.NewService(rotationPostgres.NewRotationRepository(deps.Gorm), deps.Bus, deps.Logger).WithClock(clock)
}

// initDB opens the shared connection pool, retrying the first ping while the
// database comes up.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	driver := "pgx"
	if cfg.Driver == internal.DriverSQLite {
		driver = "sqlite3"
	}

	dbConn, err := sqlx.Open(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	if cfg.Driver == internal.DriverSQLite {
		// sqlite allows a single writer
		dbConn.SetMaxOpenConns(1)
	} else {
		dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
		dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := dbConn.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
