package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ulule/limiter/v3"
	limitermem "github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/kantorly/currency_exchange_app/internal/core/services"
	"github.com/kantorly/currency_exchange_app/internal/middleware"
	"github.com/kantorly/currency_exchange_app/pkg/config"
)

// Services bundles everything the HTTP layer needs injected.
type Services struct {
	Ledger       *services.LedgerService
	Users        *services.UserService
	ExchangeRate *services.ExchangeRateService
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("currencycode", validCurrencyCode)
	}
}

// validCurrencyCode accepts three uppercase ASCII letters, e.g. "PLN".
func validCurrencyCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// RegisterRoutes wires the public auth endpoints and the authenticated
// /api/v1 surface onto the engine.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, svcs Services) {
	r.GET("/", GetHome)

	authHandler := newAuthHandler(cfg, svcs.Users, svcs.Ledger)
	auth := r.Group("/auth")
	if rate, err := limiter.NewRateFromFormatted(cfg.AuthRateLimit); err == nil {
		auth.Use(middleware.RateLimit(limiter.New(limitermem.NewStore(), rate)))
	} else {
		slog.Warn("Invalid AUTH_RATE_LIMIT, auth endpoints are unthrottled", slog.String("value", cfg.AuthRateLimit))
	}
	{
		auth.POST("/register", authHandler.register)
		auth.POST("/login", authHandler.login)
	}

	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))
	registerAccountRoutes(v1, svcs.Ledger)
	registerUserRoutes(v1, svcs.Users)
	registerExchangeRateRoutes(v1, svcs.ExchangeRate)
}
