package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"nena/internal/controllers"
	"nena/internal/persistence"
	"nena/internal/providers"
	"nena/internal/services"
	"nena/internal/store"
	"nena/internal/structures"
	"nena/internal/transcription"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Uploads and synchronous transcription are slow, so the server timeouts are
// well above the usual API values.
const (
	readTimeout     = 2 * time.Minute
	writeTimeout    = 5 * time.Minute
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

type App struct {
	WebServer *http.Server
}

// Handler builds the full HTTP handler: infrastructure routes plus the
// instrumented and logged API routes.
func Handler(healthController *controllers.HealthController, conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) http.Handler {
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Url, route.Handler)
	}
	instrumentedAPI := providers.MetricsMiddleware(metrics, providers.LoggingMiddleware(logger, apiMux))

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", instrumentedAPI)
	return mux
}

func NewApp(healthController *controllers.HealthController, scheduler persistence.SchedulerInterface, queue services.CoachingQueueInterface, badges services.BadgeServiceInterface, rs store.RecordStore, transcriber transcription.Transcriber, conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) (*App, error) {
	logger.Infof(providers.TypeApp, "Starting %s", conf.AppName)
	defer closeBackends(rs, transcriber, logger)

	if err := scheduler.Restore(); err != nil {
		logger.Errorf(providers.TypeApp, "Restore error: %s", err)
	}
	if _, err := badges.SeedDefaults(context.Background()); err != nil {
		return nil, fmt.Errorf("seed badges: %w", err)
	}

	app := &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      Handler(healthController, conf, logger, router, metrics),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
	}

	queue.Start()
	scheduler.Init()

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof(providers.TypeApp, "Listening HTTP clients on %s:%d", conf.WebServer.Host, conf.WebServer.Port)
		if err := app.WebServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		scheduler.Stop()
		queue.Stop()
		return nil, fmt.Errorf("server error: %w", err)
	}

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.WebServer.Shutdown(ctx); err != nil {
		return nil, err
	}
	// Drain after the server stops accepting uploads so no refresh is lost.
	queue.Stop()
	if err := scheduler.Persist(); err != nil {
		return nil, err
	}
	logger.Infof(providers.TypeApp, "gracefully stopped")
	return app, nil
}

func closeBackends(rs store.RecordStore, transcriber transcription.Transcriber, logger providers.Logger) {
	if c, ok := transcriber.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Errorf(providers.TypeApp, "Close transcriber: %s", err)
		}
	}
	if err := rs.Close(); err != nil {
		logger.Errorf(providers.TypeApp, "Close record store: %s", err)
	}
}
