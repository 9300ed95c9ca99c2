package handler

import (
	"itn-gateway/internal/adapter/http/middleware"
	"itn-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// DefaultMaxBodySize caps request bodies when RouterDeps leaves it unset.
const DefaultMaxBodySize = 64 << 10

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	ITNSvc         ports.ITNService
	ReturnSvc      ports.ReturnService
	AdminSvc       ports.AdminService        // nil = admin routes disabled
	RateLimitStore middleware.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	RedirectURL    string
	MaxBodySize    int64
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	maxBody := deps.MaxBodySize
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBody))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	itnHandler := NewITNHandler(deps.ITNSvc)
	returnHandler := NewReturnHandler(deps.ReturnSvc, deps.RedirectURL)
	payments := v1.Group("/payments")
	{
		payments.Any("/itn", itnHandler.Notify)
		payments.GET("/return", rl(middleware.GroupReturn), returnHandler.Return)
	}

	if deps.AdminSvc != nil {
		adminHandler := NewAdminHandler(deps.AdminSvc)
		admin := v1.Group("/admin")
		{
			admin.POST("/applications/:id/paid", rl(middleware.GroupAdmin), adminHandler.MarkPaid)
		}
	}

	return r
}
