package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "github.com/de-tools/cloud-atlas/pkg/handlers/cloud"
	"github.com/de-tools/cloud-atlas/pkg/metrics"
	atlasmiddleware "github.com/de-tools/cloud-atlas/pkg/server/middleware"
	"github.com/de-tools/cloud-atlas/pkg/services/dashboard"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router          chi.Router
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Service dashboard.Service
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func ConfigureRouter(config Config) chi.Router {
	deps := config.Dependencies
	cloudHandler := handlers.NewHandler(deps.Service)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(atlasmiddleware.Logger(&deps.Logger))
	router.Use(middleware.Recoverer)
	router.Use(atlasmiddleware.CORS)
	if deps.Metrics != nil {
		router.Use(atlasmiddleware.Metrics(deps.Metrics))
		router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", cloudHandler.Health)
		r.Get("/providers", cloudHandler.ListProviders)
		r.Get("/costs/summary", cloudHandler.CostSummary)

		r.Route("/{provider}", func(r chi.Router) {
			r.Get("/costs/mtd", cloudHandler.MTDCosts)
			r.Get("/costs/daily", cloudHandler.DailyCosts)
			r.Get("/metrics/live", cloudHandler.LiveMetrics)
			r.Get("/metrics/timeseries", cloudHandler.Timeseries)
		})
	})

	return router
}

func NewWebAPI(config Config) *WebAPI {
	router := ConfigureRouter(config)
	logger := config.Dependencies.Logger

	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
	}
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
