package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"staybook/config"
	"staybook/database"
	"staybook/routes"
	"staybook/services/sweeper"
	"staybook/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var noSweep bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the pending booking sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), noSweep)
		},
	}
	cmd.Flags().BoolVar(&noSweep, "no-sweep", false, "do not run the in-process expiry sweep")
	return cmd
}

func runServe(parent context.Context, noSweep bool) error {
	if parent == nil {
		parent = context.Background()
	}
	logger := utils.GetLogger()
	defer logger.Sync() //nolint:errcheck

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := newApplication(logger)
	if err != nil {
		return err
	}
	defer app.close()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.stores.Migrate(ctx); err != nil {
		return err
	}
	if config.AppConfig.StoreDriver == "memory" || config.AppConfig.StoreDriver == "" {
		if err := seedMemoryCatalog(ctx, app.stores.Rooms, config.AppConfig.RoomSeedFile, logger); err != nil {
			return err
		}
	}

	if !noSweep && config.AppConfig.PendingBookingTTL > 0 && config.AppConfig.SweepInterval > 0 {
		go sweeper.New(app.bookings, config.AppConfig.SweepInterval, config.AppConfig.PendingBookingTTL, logger).Start(ctx)
	}
	utils.StartHealthMonitor(ctx, utils.RedisClients(), database.Ping)

	router := routes.NewRouter(app.handlerBundle(), logger, config.AppConfig.MaxRequestsPerMin)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + config.AppConfig.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	logger.Info("server is shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}
