package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jengzang/travel-atlas-go/internal/config"
	"github.com/jengzang/travel-atlas-go/internal/handler"
	"github.com/jengzang/travel-atlas-go/internal/mapdata"
	"github.com/jengzang/travel-atlas-go/internal/middleware"
	"github.com/jengzang/travel-atlas-go/internal/observability"
	"github.com/jengzang/travel-atlas-go/internal/service"
)

// Dependencies are the components the router wires into handlers
type Dependencies struct {
	Logger      *zap.Logger
	Registry    *prometheus.Registry
	HTTPMetrics *observability.HTTPCollector
	Limiter     *middleware.RateLimiter

	MapData *mapdata.Service
	Regions *service.RegionService
	POIs    *service.POIService
	Trips   *service.TripService
	Reviews *service.ReviewService
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(deps.Logger), middleware.Metrics(deps.HTTPMetrics), middleware.CORS(cfg.CORSOrigins))

	mapHandler := handler.NewMapHandler(deps.MapData)
	streamHandler := handler.NewStreamHandler(deps.MapData, deps.Logger, nil)
	regionHandler := handler.NewRegionHandler(deps.Regions)
	poiHandler := handler.NewPOIHandler(deps.POIs)
	adminHandler := handler.NewAdminHandler(deps.Regions, deps.POIs, deps.MapData, deps.Logger)
	tripHandler := handler.NewTripHandler(deps.Trips)
	reviewHandler := handler.NewReviewHandler(deps.Reviews)

	auth := middleware.Auth(cfg.JWTSecret)
	limit := middleware.RateLimit(deps.Limiter)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Travel Atlas API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(observability.Handler(deps.Registry)))

	api := r.Group("/api/v1")
	{
		// 地图视口
		maps := api.Group("/map")
		{
			maps.GET("", mapHandler.GetMap)
			maps.GET("/legend", mapHandler.GetLegend)
			maps.GET("/stream", streamHandler.Stream)
		}

		// 区域
		regions := api.Group("/regions")
		{
			regions.GET("", regionHandler.ListRegions)
			regions.GET("/locate", regionHandler.Locate)
			regions.GET("/:id", regionHandler.GetRegion)
			regions.GET("/:id/summary", regionHandler.GetSummary)
		}

		// 兴趣点与评价
		pois := api.Group("/pois")
		{
			pois.GET("/nearby", poiHandler.Nearby)
			pois.GET("/:id", poiHandler.GetPOI)
			pois.GET("/:id/reviews", reviewHandler.ListReviews)
			pois.POST("/:id/reviews", auth, limit, reviewHandler.CreateReview)
		}

		// 行程
		trips := api.Group("/trips", auth)
		{
			trips.GET("", tripHandler.GetTrips)
			trips.POST("", limit, tripHandler.CreateTrip)
			trips.DELETE("/:id", limit, tripHandler.DeleteTrip)
		}

		// 管理后台
		admin := api.Group("/admin", auth, middleware.RequireAdmin(), limit)
		{
			admin.POST("/regions", adminHandler.CreateRegion)
			admin.PUT("/regions/:id", adminHandler.UpsertRegion)
			admin.DELETE("/regions/:id", adminHandler.DeleteRegion)
			admin.PUT("/regions/:id/months/:month", adminHandler.UpsertMonthly)
			admin.POST("/pois", adminHandler.CreatePOI)
			admin.PUT("/pois/:id", adminHandler.UpsertPOI)
			admin.DELETE("/pois/:id", adminHandler.DeletePOI)
			admin.POST("/cache/invalidate", adminHandler.InvalidateCache)
		}
	}

	return r
}
