package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	handlers "github.com/bloghead/payments/internal/adapter/handler/http"
	"github.com/bloghead/payments/internal/config"
	"github.com/bloghead/payments/internal/middleware/auth"
	"github.com/bloghead/payments/pkg/logger"
)

// Handlers are the route targets mounted by the server.
type Handlers struct {
	Webhook         *handlers.WebhookHandler
	Coins           *handlers.CoinHandler
	BookingPayments *handlers.BookingPaymentHandler
	Connect         *handlers.ConnectHandler
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	registry *prometheus.Registry
}

func NewServer(cfg *config.Config, log *zap.Logger, h Handlers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewRequestValidator()

	logger.WithEchoLogger(e, log, handlers.RenderError)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{strings.TrimSuffix(cfg.Service.ClientURL, "/")},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			"Accept-Language",
		},
	}))
	e.Use(logger.NewEchoRequestLogger(log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "payments",
		Registerer: registry,
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/metrics" || p == "/health"
		},
	}))
	e.Use(middleware.BodyLimit("1M"))

	s := &Server{
		config:   cfg,
		logger:   log,
		echo:     e,
		registry: registry,
	}
	s.setupRoutes(h)
	return s
}

func (s *Server) Start() error {
	addr := s.config.Server.HTTP.Addr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying router.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) setupRoutes(h Handlers) {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})
	s.echo.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: s.registry,
	}))

	// Stripe authenticates with its signature header, not a bearer token.
	s.echo.POST("/webhook/stripe", h.Webhook.HandleStripeWebhook)

	jwtConfig := auth.JWTConfig{
		Secret: s.config.Service.Supabase.JWTSecret,
		Logger: s.logger,
		SkipPaths: []string{
			"/api/v1/coins/packages",
		},
	}

	v1 := s.echo.Group("/api/v1", auth.JWTMiddleware(jwtConfig))

	coins := v1.Group("/coins")
	coins.GET("/packages", h.Coins.ListPackages)
	coins.POST("/checkout", h.Coins.CreateCheckout)
	coins.GET("/balance", h.Coins.GetBalance)

	bookings := v1.Group("/bookings")
	bookings.POST("/:id/payment", h.BookingPayments.CreatePayment)
	bookings.GET("/:id/payment", h.BookingPayments.GetPayment)

	connect := v1.Group("/connect")
	connect.POST("/onboarding", h.Connect.StartOnboarding)
	connect.GET("/status", h.Connect.GetStatus)
}
