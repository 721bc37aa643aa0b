// Package server assembles and runs the Motek auth server: storage, the
// HTTP API, the gRPC health service and the background sweeper.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/motek/internal/logging"
	"github.com/dmitrijs2005/motek/internal/server/auth"
	"github.com/dmitrijs2005/motek/internal/server/config"
	"github.com/dmitrijs2005/motek/internal/server/ratelimit"
	"github.com/dmitrijs2005/motek/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/motek/internal/server/rest"
	"github.com/dmitrijs2005/motek/internal/server/services"

	gs "github.com/dmitrijs2005/motek/internal/server/grpc"
)

type App struct {
	config          *config.Config
	logger          logging.Logger
	repomanager     repomanager.RepositoryManager
	users           *services.UserService
	registerLimiter *ratelimit.IPLimiter
	loginLimiter    *ratelimit.IPLimiter
}

// NewApp validates c, opens storage, applies migrations and builds the
// services. The caller owns the returned App and must Run it.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	m, err := repomanager.Open(ctx, c.StorageDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := m.RunMigrations(ctx); err != nil {
		m.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	codec := auth.NewCodec([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	users := services.NewUserService(m, codec, c, logger)

	return &App{
		config:      c,
		logger:      logger,
		repomanager: m,
		users:       users,
		registerLimiter: ratelimit.NewIPLimiter(c.RegisterLimitPerHour,
			ratelimit.WithName("register"), ratelimit.WithLogger(logger)),
		loginLimiter: ratelimit.NewIPLimiter(c.LoginLimitPerHour,
			ratelimit.WithName("login"), ratelimit.WithLogger(logger)),
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case sig := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", sig.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves until ctx is cancelled, a termination signal arrives or one of
// the servers fails. Storage is closed before Run returns.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageDriver)

	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	fail := func(name string, err error) {
		app.logger.Error(ctx, name+" failed", logging.Err(err))
		mu.Lock()
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
		mu.Unlock()
		cancelFunc()
	}

	httpServer := rest.NewServer(rest.Options{
		Address:           app.config.EndpointAddrHTTP,
		TrustProxyHeaders: app.config.TrustProxyHeaders,
		ShutdownTimeout:   app.config.ShutdownTimeout,
	}, app.logger, app.users, app.registerLimiter, app.loginLimiter, app.repomanager)

	grpcServer := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.repomanager)

	sweeper := services.NewSweeper(app.users, app.config.SweepInterval, app.logger, app.registerLimiter, app.loginLimiter)

	wg.Add(3)
	go func() {
		defer wg.Done()
		if err := httpServer.Run(ctx); err != nil {
			fail("http server", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := grpcServer.Run(ctx); err != nil {
			fail("grpc server", err)
		}
	}()
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()

	wg.Wait()

	if err := app.repomanager.Close(); err != nil {
		app.logger.Warn(ctx, "close storage", logging.Err(err))
	}

	app.logger.Info(ctx, "App stopped")
	return errors.Join(errs...)
}
