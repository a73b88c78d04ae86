package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/karimezz22/Library/internal/infra/config"
	appRedis "github.com/karimezz22/Library/internal/infra/redis"
	"github.com/karimezz22/Library/internal/transport/http/handlers"
	"github.com/karimezz22/Library/internal/transport/http/middleware"
	"github.com/karimezz22/Library/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Identity *usecase.IdentityService
	Catalog  *usecase.CatalogService
	Borrow   *usecase.BorrowService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Services    ServiceSet
	Database    *pgxpool.Pool
	Cache       *appRedis.Client
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.App.CORSAllowedOrigins))

	if metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{}); err == nil {
		r.Use(metrics.Handler())
	} else if deps.Logger != nil {
		deps.Logger.Warn("failed to register http metrics", zap.Error(err))
	}

	healthHandler := handlers.NewHealthHandler(deps.Database, deps.Cache)
	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Ready)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if deps.Config.Uploads.Directory != "" {
		r.Static("/uploads", deps.Config.Uploads.Directory)
	}

	api := r.Group("/api/v1")
	{
		imageBaseURL := deps.Config.Uploads.BaseURL

		if deps.Services.Identity != nil {
			authHandler := handlers.NewAuthHandler(deps.Services.Identity)
			authHandler.RegisterRoutes(api.Group("/auth"),
				buildRateLimitMiddlewares(deps, "auth_register_ip", deps.Config.RateLimit.RegisterMaxAttempts),
				buildRateLimitMiddlewares(deps, "auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts))
		}

		authMiddleware := middleware.RequireAuth(deps.Services.Identity)
		adminOnly := middleware.RequireRole("admin")

		if deps.Services.Catalog != nil {
			bookHandler := handlers.NewBookHandler(deps.Services.Catalog, imageBaseURL)

			booksGroup := api.Group("/books")
			booksGroup.Use(authMiddleware)
			bookHandler.RegisterRoutes(booksGroup)

			booksAdminGroup := api.Group("/books")
			booksAdminGroup.Use(authMiddleware, adminOnly)
			bookHandler.RegisterAdminRoutes(booksAdminGroup)
		}

		if deps.Services.Borrow != nil {
			borrowHandler := handlers.NewBorrowHandler(deps.Services.Borrow, imageBaseURL)

			borrowGroup := api.Group("/borrow")
			borrowGroup.Use(authMiddleware)
			borrowHandler.RegisterRoutes(borrowGroup)

			borrowAdminGroup := api.Group("/borrow")
			borrowAdminGroup.Use(authMiddleware, adminOnly)
			borrowHandler.RegisterAdminRoutes(borrowAdminGroup)
		}

		if deps.Services.Identity != nil {
			userAdminHandler := handlers.NewUserAdminHandler(deps.Services.Identity)

			usersAdminGroup := api.Group("/admin/users")
			usersAdminGroup.Use(authMiddleware, adminOnly)
			userAdminHandler.RegisterRoutes(usersAdminGroup)
		}
	}

	return r
}

func buildRateLimitMiddlewares(deps Dependencies, name string, limit int) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
