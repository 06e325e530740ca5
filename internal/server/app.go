// Package server wires the admissions backend together: it opens the
// database, applies migrations, seeds bootstrap accounts, and runs the HTTP
// API next to the gRPC health service until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/admissions/internal/logging"
	"github.com/dmitrijs2005/admissions/internal/server/blobstore"
	"github.com/dmitrijs2005/admissions/internal/server/config"
	"github.com/dmitrijs2005/admissions/internal/server/httpapi"
	"github.com/dmitrijs2005/admissions/internal/server/metrics"
	"github.com/dmitrijs2005/admissions/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/admissions/internal/server/services"
	"github.com/dmitrijs2005/admissions/internal/server/session"

	gs "github.com/dmitrijs2005/admissions/internal/server/grpc"
)

const (
	dbConnectTimeout     = 10 * time.Second
	limiterCleanupPeriod = time.Minute
	limiterIdle          = 10 * time.Minute
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	appService  *services.ApplicationService
	blobs       blobstore.Store
	metrics     *metrics.Metrics
	limiter     *httpapi.RateLimiter
}

// NewApp connects to the database, migrates it and builds the services.
// The returned App owns the connection pool; Run closes it.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := repomanager.Open(ctx, c.DatabaseDSN, dbConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	blobs, err := newBlobStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	m := metrics.New()
	limiter := httpapi.NewRateLimiter(c.LoginRatePerMinute, c.LoginBurst, limiterIdle, logger)
	limiter.OnReject = func(*http.Request) { m.RecordRateLimited() }

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		userService: services.NewUserService(db, rm, logger),
		appService:  services.NewApplicationService(db, rm, logger),
		blobs:       blobs,
		metrics:     m,
		limiter:     limiter,
	}, nil
}

func newBlobStore(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	switch c.BlobBackend {
	case config.BlobBackendS3:
		return blobstore.NewS3Store(ctx, s3Options(c))
	case config.BlobBackendLocal, "":
		return blobstore.NewLocalStore(c.UploadDir)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", c.BlobBackend)
	}
}

func s3Options(c *config.Config) blobstore.S3Options {
	return blobstore.S3Options{
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		Prefix:       c.S3Prefix,
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		sig := <-sigs
		app.logger.Info(context.Background(), "shutdown signal received", "signal", sig.String())
		cancelFunc()
	}()
}

func (app *App) bootstrap(ctx context.Context) error {
	if !app.config.SeedUsers {
		return nil
	}
	n, err := app.userService.Bootstrap(ctx, app.config.Seeds)
	if err != nil {
		return err
	}
	app.logger.Info(ctx, "bootstrap finished", "created", n)
	return nil
}

func (app *App) httpHandler() http.Handler {
	sessions := session.NewManager(session.Options{
		CookieName: app.config.SessionCookieName,
		Secret:     []byte(app.config.SecretKey),
		Validity:   app.config.SessionValidityDuration,
		Secure:     app.config.SessionCookieSecure,
	})

	h := httpapi.NewHandler(app.userService, app.appService, sessions, app.blobs,
		app.metrics, app.logger, app.config.MaxUploadBytes)

	return httpapi.NewRouter(h, httpapi.RouterOptions{
		AllowedOrigins: app.config.AllowedOrigins,
		RequestTimeout: app.config.RequestTimeout,
		LoginLimiter:   app.limiter,
		DebugEndpoints: app.config.DebugEndpoints,
	})
}

// Run blocks until ctx is cancelled, a shutdown signal arrives, or one of
// the servers fails. Either server failing stops the other.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...",
		"http", app.config.EndpointAddrHTTP, "grpc", app.config.EndpointAddrGRPC, "blob_backend", app.config.BlobBackend)

	app.initSignalHandler(cancelFunc)

	for _, w := range app.config.InsecureDefaults() {
		app.logger.Warn(ctx, "insecure configuration", "reason", w)
	}

	if err := app.bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	grpcServer := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger)
	httpServer := httpapi.NewServer(app.config.EndpointAddrHTTP, app.httpHandler(), app.logger, app.config.ShutdownTimeout)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() { firstErr = err })
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.limiter.Run(ctx, limiterCleanupPeriod)
	}()
	go func() {
		defer wg.Done()
		if err := grpcServer.Run(ctx); err != nil {
			fail(fmt.Errorf("grpc server: %w", err))
		}
	}()
	go func() {
		defer wg.Done()
		if err := httpServer.Run(ctx); err != nil {
			fail(fmt.Errorf("http server: %w", err))
		}
	}()

	grpcServer.SetServing(true)

	wg.Wait()
	app.logger.Info(context.Background(), "app stopped")
	return firstErr
}
