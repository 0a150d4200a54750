package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fanta-optimizer/internal/api/handlers"
	"github.com/stitts-dev/fanta-optimizer/internal/api/middleware"
	"github.com/stitts-dev/fanta-optimizer/internal/optimizer"
	"github.com/stitts-dev/fanta-optimizer/internal/services"
	"github.com/stitts-dev/fanta-optimizer/pkg/config"
	"github.com/stitts-dev/fanta-optimizer/pkg/database"
)

// Dependencies wires the HTTP layer. DB and History may be nil when history is disabled.
type Dependencies struct {
	Config    *config.Config
	DB        *database.DB
	Cache     *services.CacheService
	History   *services.HistoryService
	Optimizer *optimizer.Optimizer
	Logger    *logrus.Logger
}

// NewRouter builds the gin engine with middleware, probes, API docs and the API routes
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.CORS(deps.Config.CorsOrigins))

	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Cache)
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	docsHandler := handlers.NewDocsHandler()
	router.GET("/", docsHandler.GetRoot)
	router.GET("/swagger.json", docsHandler.GetOpenAPI)

	apiV1 := router.Group("/api/v1")
	SetupRoutes(apiV1, deps)

	return router
}

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, deps Dependencies) {
	optimizerHandler := handlers.NewOptimizerHandler(deps.Optimizer, deps.Cache, deps.History, deps.Logger)
	buildsHandler := handlers.NewBuildsHandler(deps.History)
	limiter := middleware.NewRateLimiter(deps.Config.RateLimitRPS, deps.Config.RateLimitBurst)

	optimize := group.Group("/optimize")
	optimize.Use(limiter.Middleware(), middleware.BodyLimit(deps.Config.RequestMaxBytes))
	{
		optimize.POST("", optimizerHandler.Optimize)
		optimize.POST("/validate", optimizerHandler.Validate)
	}

	group.GET("/builds", buildsHandler.ListBuilds)
	group.GET("/builds/:id", buildsHandler.GetBuild)
}
