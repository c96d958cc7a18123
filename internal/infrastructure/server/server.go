package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/fastlab/regain-api/docs"
	httpHandlers "github.com/fastlab/regain-api/internal/adapters/http"
	"github.com/fastlab/regain-api/internal/infrastructure/config"
	"github.com/fastlab/regain-api/internal/infrastructure/datastore"
	"github.com/fastlab/regain-api/internal/infrastructure/logger"
)

// Server represents the HTTP server
type Server struct {
	echo   *echo.Echo
	config *config.Config
	logger *logger.Logger
}

// New creates a new server instance
func New(cfg *config.Config, store *datastore.Store, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(appLogger)

	server := &Server{
		echo:   e,
		config: cfg,
		logger: appLogger,
	}

	server.setupMiddleware()

	resourceHandler := httpHandlers.NewResourceHandler(store, appLogger)
	userHandler := httpHandlers.NewUserHandler(store, appLogger)
	mediaHandler := httpHandlers.NewMediaHandler(cfg.Media, appLogger)
	authHandler := httpHandlers.NewAuthHandler(store, cfg.Auth, appLogger)

	server.setupRoutes(resourceHandler, userHandler, mediaHandler, authHandler)

	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	// CORS middleware. Preflight OPTIONS requests short-circuit here with
	// 204 and never touch the datastore.
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderContentType},
		AllowCredentials: true,
	}))

	// Rate limiting middleware
	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(s.config.Security.RateLimitRequests),
				Burst:     s.config.Security.RateLimitRequests,
				ExpiresIn: s.config.Security.RateLimitWindow,
			},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, map[string]string{"message": "rate limit exceeded"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(resources *httpHandlers.ResourceHandler, users *httpHandlers.UserHandler, media *httpHandlers.MediaHandler, auth *httpHandlers.AuthHandler) {
	s.echo.GET("/", httpHandlers.Health)

	resources.Register(s.echo, users)
	users.Register(s.echo)
	media.Register(s.echo)
	auth.Register(s.echo)

	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying router, used by tests to drive requests
// without a listener.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// errorHandler maps unmatched routes to the JSON shape the web app's
// fetch wrappers expect; everything else keeps echo's envelope.
func errorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := interface{}(map[string]string{"message": http.StatusText(code)})

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			msg = map[string]interface{}{"message": he.Message}
		}

		// Unknown paths and unknown methods alike are a 404 with the
		// path echoed back.
		if code == http.StatusNotFound || code == http.StatusMethodNotAllowed {
			code = http.StatusNotFound
			msg = map[string]string{"error": "Not found", "path": c.Request().URL.Path}
		}

		if code == http.StatusInternalServerError {
			log.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if !c.Response().Committed {
			if c.Request().Method == echo.HEAD {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				log.Errorw("Error sending response", "error", err)
			}
		}
	}
}
