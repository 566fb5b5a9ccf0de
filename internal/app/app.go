package app

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"startupdash/internal/config"
	"startupdash/internal/dataset"
	apierrors "startupdash/internal/errors"
	"startupdash/internal/infrastructure"
	customMiddleware "startupdash/internal/middleware"
	"startupdash/internal/services"
	handlers "startupdash/internal/transport/http"
	ws "startupdash/internal/websocket"
	"startupdash/pkg/contracts/domain"
)

var (
	// Version is the release version, overridable at link time
	Version = config.AppVersion
	// BuildTime is set at link time
	BuildTime = ""
)

//go:embed web
var webFS embed.FS

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Runtime       *infrastructure.RuntimeMetrics
	ErrorHandler  *apierrors.ErrorHandler

	Dataset          *domain.Dataset
	DashboardService *services.DashboardService
	ExportService    *services.ExportService
	HealthService    *services.HealthService
	WebSocketHub     *ws.Hub

	FrontendFS fs.FS
}

// New loads the dataset named by cfg and wires the application around it.
// A missing or unreadable dataset is fatal.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.AppName),
		slog.String("version", Version))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Observability, Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	ds, err := dataset.Load(ctx, dataset.Options{
		Path:          cfg.Dataset.Path,
		Encoding:      cfg.Dataset.Encoding,
		TargetCountry: cfg.Dataset.TargetCountry,
		Logger:        logger,
	})
	if err != nil {
		_ = otelProviders.Shutdown(ctx)
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	return NewWithDataset(cfg, logger, otelProviders, ds)
}

// NewWithDataset wires the application around an already loaded dataset
func NewWithDataset(cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders, ds *domain.Dataset) (*Application, error) {
	frontend, err := fs.Sub(webFS, "web")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded frontend: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
		Dataset:       ds,
		FrontendFS:    frontend,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.CreateBusinessMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}
	a.Metrics = metrics

	if a.Runtime, err = infrastructure.RegisterRuntimeMetrics(a.OTelProviders.Meter, time.Now()); err != nil {
		return fmt.Errorf("failed to register runtime metrics: %w", err)
	}

	dashboard, err := services.NewDashboardService(a.Dataset, services.DashboardConfig{
		TopN: a.Config.Dataset.TopN,
		DefaultYears: domain.YearRange{
			Min: a.Config.Dataset.DefaultYearMin,
			Max: a.Config.Dataset.DefaultYearMax,
		},
	}, a.OTelProviders.Tracer, metrics, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dashboard service: %w", err)
	}
	a.DashboardService = dashboard

	a.ExportService = services.NewExportService(dashboard, services.ExportConfig{
		BaseName:        a.Config.Export.BaseName,
		ArtifactTTL:     a.Config.Export.ArtifactTTL,
		CleanupInterval: a.Config.Export.CleanupInterval,
	}, metrics, a.Logger)

	a.WebSocketHub = ws.NewHub(metrics, a.Logger)
	a.HealthService = services.NewHealthService(Version, BuildTime, a.Dataset, a.WebSocketHub, a.ExportService, a.Logger)

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Minimal middleware that won't interfere with WebSocket
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// Live sessions outlive the request timeout
	wsHandler := ws.NewHandler(a.WebSocketHub, a.DashboardService, ws.Options{
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		PingPeriod:      a.Config.WebSocket.PingPeriod,
		PongWait:        a.Config.WebSocket.PongWait,
		MaxMessageSize:  a.Config.WebSocket.MaxMessageSize,
		AllowedOrigins:  a.Config.Security.AllowedOrigins,
	}, a.Logger)
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Get("/ws", wsHandler.ServeHTTP)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → Timeout
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		r.Use(customMiddleware.DefaultSecureHeaders().Handler)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.ErrorHandler,
			).Handler)
		}

		r.Use(customMiddleware.Compress(5, "application/json", "text/html", "text/css", "text/javascript", "text/csv"))

		a.setupAPIRoutes(r)
		a.setupFrontendRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		dashboardHandler := handlers.NewDashboardHandler(a.DashboardService, a.ExportService, a.Logger, a.ErrorHandler)
		r.Mount("/dashboard", dashboardHandler.Routes())
	})
}

// setupFrontendRoutes serves the embedded dashboard page and its assets
func (a *Application) setupFrontendRoutes(r chi.Router) {
	files := http.FileServer(http.FS(a.FrontendFS))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFileFS(w, r, a.FrontendFS, "index.html")
	})
	r.Get("/assets/*", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the hub and the HTTP server. A server failure cancels ctx
// through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", Version),
		slog.String("address", a.Server.Addr),
		slog.String("dataset", a.Dataset.Source),
		slog.String("level", a.Config.Logging.Level))

	go a.WebSocketHub.Run(ctx)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("url", fmt.Sprintf("http://%s", a.Server.Addr)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown
	a.WebSocketHub.Stop()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := a.Runtime.Unregister(); err != nil {
		a.Logger.WarnContext(ctx, "Error detaching runtime metrics", slog.String("error", err.Error()))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until ctx is cancelled or SIGINT/SIGTERM arrives
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.InfoContext(ctx, "Received shutdown signal")

	start := time.Now()
	err := a.Stop(ctx)
	a.Logger.InfoContext(ctx, "Shutdown finished", slog.Duration("took", time.Since(start)))
	return err
}
