package v1

import (
	"net/http"
	"time"

	"go-athlete-backend/config"
	"go-athlete-backend/internal/billing"
	"go-athlete-backend/internal/delivery/http/middleware"
	"go-athlete-backend/internal/delivery/http/response"
	"go-athlete-backend/internal/session"
	"go-athlete-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Registry     *session.Registry
	Billing      *billing.Service
	JWKSProvider *auth.Provider
	Redis        *goredis.Client
	Config       *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())

	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second
	r.Use(middleware.RateLimitMiddleware(deps.Redis,
		middleware.GlobalRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window)))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Auth endpoints take the strict per-IP limit on top of the global one.
	public := v1.Group("")
	public.Use(middleware.RateLimitMiddleware(deps.Redis,
		middleware.AuthRateLimitConfig(deps.Config.RateLimitLoginThreshold, window)))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, deps.Config))
	{
		NewAuthHandler(public, protected, deps.Registry, deps.Config)
		NewOnboardingHandler(protected, deps.Registry)
		NewAccountHandler(protected, deps.Registry)
		NewBillingHandler(v1, protected, deps.Billing, deps.Config)
	}

	return r
}
