// Package server wires the postbox server together: logging, tracing,
// storage, services and the gRPC endpoint, and runs it until shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/postbox/internal/logging"
	"github.com/dmitrijs2005/postbox/internal/server/config"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/postbox/internal/server/services"
	"github.com/dmitrijs2005/postbox/internal/telemetry"

	gs "github.com/dmitrijs2005/postbox/internal/server/grpc"
)

const serviceName = "postbox-server"

type App struct {
	config *config.Config
	logger logging.Logger
}

func NewApp(c *config.Config) (*App, error) {

	logger, err := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	if err != nil {
		return nil, err
	}

	return &App{config: c, logger: logger}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run opens storage, applies migrations and serves gRPC until ctx is
// cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, app.config.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry init error: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			app.logger.Warn(ctx, "telemetry shutdown", "error", err)
		}
	}()

	rm, err := repomanager.Open(ctx, app.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer func() {
		if err := rm.Close(); err != nil {
			app.logger.Warn(ctx, "db close", "error", err)
		}
	}()

	if err := rm.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	us := services.NewUserService(rm, app.config)
	ms := services.NewMessageService(rm)

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, us, ms)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}
