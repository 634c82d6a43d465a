package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"studio-storefront/internal/catalog"
	"studio-storefront/internal/config"
	"studio-storefront/internal/handler"
	appmiddleware "studio-storefront/internal/middleware"
	"studio-storefront/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const bodyLimit = "160M"

type Server struct {
	echo                *echo.Echo
	catalogHandler      *handler.CatalogHandler
	cartHandler         *handler.CartHandler
	checkoutHandler     *handler.CheckoutHandler
	uploadHandler       *handler.UploadHandler
	notificationHandler *handler.NotificationHandler
	limiter             echo.MiddlewareFunc
}

func NewServer(
	cfg *config.Config,
	log *slog.Logger,
	catalog *catalog.Catalog,
	cartService service.CartService,
	checkoutService service.CheckoutService,
	uploadService service.UploadService,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				log.Error("request", append(attrs, "error", v.Error)...)
				return nil
			}
			log.Info("request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.BaseURL},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(appmiddleware.Session([]byte(cfg.Session.Secret), cfg.Session.TTL))

	e.Static("/uploads", cfg.Upload.Dir)

	s := &Server{
		echo:                e,
		catalogHandler:      handler.NewCatalogHandler(catalog),
		cartHandler:         handler.NewCartHandler(cartService, uploadService),
		checkoutHandler:     handler.NewCheckoutHandler(checkoutService),
		uploadHandler:       handler.NewUploadHandler(uploadService),
		notificationHandler: handler.NewNotificationHandler(checkoutService, log),
		limiter: middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.HTTP.RateLimit),
				Burst:     cfg.HTTP.RateBurst,
				ExpiresIn: 3 * time.Minute,
			}),
		}),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- catalog --------
	api.GET("/services", s.catalogHandler.ListServices)
	api.GET("/services/:id", s.catalogHandler.GetService)

	// -------- cart --------
	cart := api.Group("/cart")
	cart.GET("", s.cartHandler.GetCart)
	cart.DELETE("", s.cartHandler.ClearCart)
	cart.POST("/items", s.cartHandler.AddItem)
	cart.PATCH("/items/:itemID", s.cartHandler.UpdateQuantity)
	cart.DELETE("/items/:itemID", s.cartHandler.RemoveItem)
	cart.PATCH("/items/:itemID/preferences", s.cartHandler.SetPreferences)
	cart.PUT("/items/:itemID/files", s.cartHandler.SetFiles)
	cart.POST("/items/:itemID/sections/:section/files", s.cartHandler.UploadSectionFiles, s.limiter)
	cart.DELETE("/items/:itemID/sections/:section/files/:fileIndex", s.cartHandler.RemoveSectionFile)

	// -------- checkout --------
	api.POST("/create-checkout-session", s.checkoutHandler.CreateSession, s.limiter)
	api.GET("/checkout-session", s.checkoutHandler.GetSession)
	api.POST("/upload-files", s.uploadHandler.UploadFiles, s.limiter)

	// -------- notifications --------
	api.POST("/send-order-notification", s.notificationHandler.SendOrderNotification, s.limiter)
	api.POST("/send-customer-confirmation", s.notificationHandler.SendCustomerConfirmation, s.limiter)

	// -------- payment provider callbacks --------
	api.POST("/webhook", s.checkoutHandler.Webhook)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
