package http

import (
	"crypto/subtle"
	"log/slog"
	"math"
	"time"

	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const (
	apiKeyHeader = "X-API-Key"

	ctxTenantID = "tenant_id"
	ctxService  = "service"
)

// Credentials resolves API keys. A tenant key acts for its own tenant only; the service
// key acts for every tenant and may read the failed relays.
type Credentials struct {
	tenantKeys map[string]string
	serviceKey string
}

// NewCredentials takes the tenant keys indexed by tenant id.
func NewCredentials(tenantKeys map[string]string, serviceKey string) *Credentials {
	keys := make(map[string]string, len(tenantKeys))
	for tenantID, key := range tenantKeys {
		if key != "" {
			keys[tenantID] = key
		}
	}
	return &Credentials{tenantKeys: keys, serviceKey: serviceKey}
}

// resolve returns the tenant owning key, or service=true for the service key.
func (c *Credentials) resolve(key string) (tenantID string, service bool, ok bool) {
	if c.serviceKey != "" && subtle.ConstantTimeCompare([]byte(key), []byte(c.serviceKey)) == 1 {
		return "", true, true
	}
	for id, k := range c.tenantKeys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(k)) == 1 {
			tenantID, ok = id, true
		}
	}
	return tenantID, false, ok
}

// KeyAuth authenticates the X-API-Key header and stores the caller's identity on the context.
func KeyAuth(creds *Credentials) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup: "header:" + apiKeyHeader,
		Validator: func(key string, c echo.Context) (bool, error) {
			tenantID, service, ok := creds.resolve(key)
			if !ok {
				return false, nil
			}
			c.Set(ctxTenantID, tenantID)
			c.Set(ctxService, service)
			return true, nil
		},
		ErrorHandler: func(err error, _ echo.Context) error {
			return errs.NewUnauthorizedError("missing or unknown API key")
		},
	})
}

// TenantScope refuses tenant routes called with another tenant's key.
func TenantScope() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := authorizeTenant(c, c.Param("tenantId")); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// ServiceOnly admits callers holding the service key.
func ServiceOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if service, _ := c.Get(ctxService).(bool); !service {
				return errs.NewUnauthorizedError("service key required")
			}
			return next(c)
		}
	}
}

func authorizeTenant(c echo.Context, tenantID string) error {
	if service, _ := c.Get(ctxService).(bool); service {
		return nil
	}
	caller, _ := c.Get(ctxTenantID).(string)
	if caller == "" || caller != tenantID {
		return errs.NewUnauthorizedError("API key does not belong to tenant " + tenantID)
	}
	return nil
}

// RateLimit allows perSecond requests per caller with the given burst. Callers are told
// to come back once a token is free again.
func RateLimit(perSecond float64, burst int) echo.MiddlewareFunc {
	retryAfter := time.Second
	if perSecond > 0 {
		retryAfter = time.Duration(math.Ceil(float64(time.Second) / perSecond))
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if service, _ := c.Get(ctxService).(bool); service {
				return "service", nil
			}
			if tenantID, _ := c.Get(ctxTenantID).(string); tenantID != "" {
				return "tenant:" + tenantID, nil
			}
			return "ip:" + c.RealIP(), nil
		},
		ErrorHandler: func(_ echo.Context, err error) error {
			return errs.NewUnauthorizedError("caller cannot be identified")
		},
		DenyHandler: func(_ echo.Context, identifier string, _ error) error {
			return errs.NewQuotaExceededError(identifier, retryAfter)
		},
	})
}

// RequestLogger logs one line per request.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if tenantID, _ := c.Get(ctxTenantID).(string); tenantID != "" {
				attrs = append(attrs, "tenant_id", tenantID)
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
				logger.WarnContext(c.Request().Context(), "Request failed", attrs...)
				return nil
			}
			logger.InfoContext(c.Request().Context(), "Request completed", attrs...)
			return nil
		},
	})
}
