package http

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RouterConfig holds the access policy of the API.
type RouterConfig struct {
	Credentials   *Credentials
	RatePerSecond float64
	RateBurst     int
}

// NewRouter mounts the server on a new echo instance. Every /api/v1 route is authenticated,
// rate limited per caller and validated against the embedded API description.
func NewRouter(ctx context.Context, server *Server, cfg RouterConfig, logger *slog.Logger) (*echo.Echo, error) {
	doc, err := LoadOpenAPI(ctx)
	if err != nil {
		return nil, err
	}
	validate, err := RequestValidator(doc)
	if err != nil {
		return nil, err
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = int(cfg.RatePerSecond) + 1
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = ErrorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(RequestLogger(logger))

	e.GET("/health", server.Health)

	api := e.Group("/api/v1", KeyAuth(cfg.Credentials), RateLimit(cfg.RatePerSecond, cfg.RateBurst), validate)
	api.POST("/orders/complete", server.CompleteOrder)
	api.GET("/relays/failed", server.GetFailedRelays, ServiceOnly())

	tenant := api.Group("/tenants/:tenantId", TenantScope())
	tenant.GET("/orders", server.GetOrders)
	tenant.POST("/orders", server.RegisterOrder)
	tenant.POST("/orders/response", server.RespondToOrder)
	tenant.GET("/orders/:orderNo", server.GetOrder)
	tenant.GET("/ledger", server.GetLedger)
	tenant.GET("/revenue", server.GetDailyRevenue)
	tenant.POST("/menu-changes", server.PublishMenuChange)
	tenant.GET("/events", server.StreamEvents)

	return e, nil
}
