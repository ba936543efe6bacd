package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"productpulse/internal/auth"
	"productpulse/internal/config"
	apierrors "productpulse/internal/errors"
	"productpulse/internal/infrastructure"
	customMiddleware "productpulse/internal/middleware"
	"productpulse/internal/services"
	"productpulse/internal/sheets"
	"productpulse/internal/storage"
	handlers "productpulse/internal/transport/http"
	ws "productpulse/internal/websocket"
)

// Version is the application version, overridable at link time with
// -ldflags "-X productpulse/internal/app.Version=..."
var Version = config.AppVersion

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	Router        *chi.Mux
	Server        *http.Server
	Store         storage.Store
	WebSocketHub  *ws.Hub
	DataService   *services.DataService
	AuthService   *services.AuthService
	HealthService *services.HealthService
	OTelProviders *infrastructure.OTelProviders

	metrics      *infrastructure.BusinessMetrics
	errorHandler *apierrors.ErrorHandler
	validator    *customMiddleware.ValidationMiddleware
}

// NewApplication loads the configuration and builds the application
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(ctx, cfg, logger)
}

// New wires every component for cfg. The returned application owns the
// store and telemetry providers; release them with Close.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.ServiceName),
		slog.String("version", Version),
		slog.String("storage", cfg.Storage.Driver))

	otelProviders, err := infrastructure.InitializeOTel(
		infrastructure.NewOTelConfig(cfg.Telemetry, cfg.Logging.Development), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}
	a.validator = customMiddleware.NewValidationMiddleware(logger, a.errorHandler)

	if err := a.initializeServices(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a.setupRouter()
	a.createServer()
	return a, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices(ctx context.Context) error {
	metrics, err := infrastructure.CreateBusinessMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}
	a.metrics = metrics

	runtimeMetrics, err := infrastructure.NewRuntimeMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create runtime metrics: %w", err)
	}

	wsMetrics, err := ws.NewMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create websocket metrics: %w", err)
	}
	a.WebSocketHub = ws.NewHub(a.Config.WebSocket, wsMetrics, a.Logger)

	store, err := storage.Open(ctx, a.Config.Storage, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	a.Store = store

	a.DataService = services.NewDataService(store, a.WebSocketHub, metrics, a.Logger)
	if err := a.DataService.Load(ctx); err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	if a.Config.Sheets.Enabled() {
		client, err := sheets.NewClient(ctx, a.Config.Sheets, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize sheets client: %w", err)
		}
		a.DataService.SetSheetsSource(client)
	}

	users, err := services.NewUserStore(a.Config.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize users: %w", err)
	}
	if users.Len() == 0 {
		a.Logger.WarnContext(ctx, "No users configured, login is impossible until a seed user is set")
	}
	issuer, err := auth.NewTokenIssuer(a.Config.Auth.JWTSecret, a.Config.Auth.TokenTTL, config.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	a.AuthService = services.NewAuthService(users, issuer, metrics, a.Logger)

	a.HealthService = services.NewHealthService(Version, store, a.WebSocketHub, runtimeMetrics, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// These do not wrap the ResponseWriter, so the websocket upgrade is safe
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.With(
		customMiddleware.WebSocketTraceMiddleware(a.Logger),
		customMiddleware.Recoverer(a.Logger),
	).Handle("/ws", ws.NewHandler(a.WebSocketHub, a.Config.WebSocket, a.Config.Security.AllowedOrigins, a.Logger))

	metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.WebSocketHub, a.errorHandler)
	r.Get("/metrics", metricsHandler.Prometheus)

	r.Group(func(r chi.Router) {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.metrics)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(apierrors.NewErrorMiddleware(a.errorHandler, a.Logger).Handler)
		r.Use(customMiddleware.SecurityHeaders)
		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.corsConfig()))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}
		r.Use(customMiddleware.NewAuthGate(a.AuthService, a.Config.Auth.CookieName, a.metrics, a.Logger).Handler)

		a.setupAPIRoutes(r, metricsHandler)
		a.setupHTMLRoutes(r)
	})

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, metricsHandler *handlers.MetricsHandler) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		r.Use(a.validator.ValidateRequest)
		r.Use(auditMutations(a.Logger))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		r.Get("/metrics/websocket", metricsHandler.WebSocketStats)

		authHandler := handlers.NewAuthHandler(a.AuthService, a.validator, handlers.CookieSettings{
			Name:   a.Config.Auth.CookieName,
			Secure: a.Config.Auth.CookieSecure,
		}, a.Logger, a.errorHandler)
		r.Mount("/auth", authHandler.Routes())

		dataHandler := handlers.NewDataHandler(a.DataService, a.validator, a.Config.Upload.MaxBytes, a.Logger, a.errorHandler)
		r.Mount("/data", dataHandler.Routes())

		logHandler := handlers.NewClientLogHandler(a.validator, a.Logger, a.errorHandler)
		r.With(customMiddleware.ContentTypeValidator("application/json")).Post("/logs", logHandler.Handle)
	})
}

// setupHTMLRoutes serves the login and dashboard pages
func (a *Application) setupHTMLRoutes(r chi.Router) {
	pages := handlers.NewPageHandler(a.Config.Server.WebDir, Version, a.Logger, a.errorHandler)
	r.Get(customMiddleware.LoginPath, pages.Login)
	r.Get(customMiddleware.DashboardPath, pages.Dashboard)
	r.Handle("/static/*", pages.Static())
}

// auditMutations applies the audit log to requests that change state
func auditMutations(logger *slog.Logger) func(next http.Handler) http.Handler {
	audit := customMiddleware.AuditLog(logger)
	return func(next http.Handler) http.Handler {
		audited := audit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
			default:
				audited.ServeHTTP(w, r)
			}
		})
	}
}

func (a *Application) corsConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run serves HTTP and runs the websocket hub until ctx is canceled or the
// server fails, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.WebSocketHub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening",
			slog.String("address", a.Server.Addr),
			slog.String("web_dir", a.Config.Server.WebDir))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.InfoContext(context.Background(), "Shutting down application")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	})

	err := g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	if closeErr := a.Close(closeCtx); closeErr != nil {
		a.Logger.ErrorContext(closeCtx, "Error releasing resources", slog.String("error", closeErr.Error()))
	}

	a.Logger.InfoContext(closeCtx, "Application shutdown complete")
	return err
}

// Close releases the store and flushes telemetry. It is safe to call on a
// partially initialized application.
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown telemetry: %w", err))
		}
	}
	return errors.Join(errs...)
}

// startupTimeout bounds how long New may spend connecting to storage and
// loading the dataset.
const startupTimeout = 30 * time.Second

// StartupContext returns a context bounded by the startup timeout
func StartupContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, startupTimeout)
}
