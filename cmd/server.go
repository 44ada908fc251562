package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bizdesk/internal/data/repository"
	"bizdesk/internal/wire"
	"bizdesk/pkg/database"
	"bizdesk/pkg/notify"
	"bizdesk/pkg/otp"
	"bizdesk/pkg/telemetry"
	"bizdesk/pkg/utils"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the HTTP server",
	RunE:  runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer(cmd *cobra.Command, _ []string) error {
	config, err := utils.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using production defaults.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting application",
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.String("otp_backend", config.OTP.Backend),
		zap.String("notify_backend", config.Notification.Backend),
	)

	shutdownTelemetry, err := telemetry.Setup(ctx, config.App.Name, config.Telemetry)
	if err != nil {
		logger.Warn("Tracing disabled", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			logger.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.InitDB(config.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	logger.Info("Database connected successfully")

	repos := repository.NewRepository(db, logger)

	var rdb *redis.Client
	if config.OTP.Backend == "redis" {
		if rdb, err = database.InitRedis(config.Redis); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
	}

	store, err := wire.NewOTPStore(config.OTP, repos, rdb)
	if err != nil {
		return err
	}
	codes := otp.NewCache(store, config.OTP.TTL, logger)

	notifier, closeNotifier, err := notify.New(config.Notification, logger)
	if err != nil {
		return fmt.Errorf("init notifier: %w", err)
	}
	defer func() {
		if err := closeNotifier(); err != nil {
			logger.Warn("Notifier close failed", zap.Error(err))
		}
	}()

	app := wire.Wiring(repos, codes, notifier, config, logger)

	go wire.RunJanitor(ctx, app.Service.Session, app.OTP, config.Session.JanitorInterval, logger)

	server := &http.Server{
		Addr:         ":" + config.App.Port,
		Handler:      otelhttp.NewHandler(app.Router, config.App.Name),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
