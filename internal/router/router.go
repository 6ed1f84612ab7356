package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/tastewire/tastewire/docs"
	"github.com/tastewire/tastewire/internal/config"
	"github.com/tastewire/tastewire/internal/middleware"
	"github.com/tastewire/tastewire/internal/modules/handler"
	"github.com/tastewire/tastewire/internal/modules/repo"
	"github.com/tastewire/tastewire/internal/modules/serializer"
	"github.com/tastewire/tastewire/internal/telemetry"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Config           *config.Config
	Users            repo.UserRepo
	Log              *zap.Logger
	InsightsHandler  *handler.InsightsHandler
	DiscoveryHandler *handler.DiscoveryHandler
	MarketFitHandler *handler.MarketFitHandler
	ProjectHandler   *handler.ProjectHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	serializer.SetLogger(d.Log)

	r := gin.New()
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(telemetry.GinMiddleware(d.Config.App.Name))
		r.Use(telemetry.TraceIDMiddleware())
	}

	r.Use(middleware.ZapLogger(d.Log))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		v1.Use(middleware.UserAuth(d.Config, d.Users))

		insights := v1.Group("/insights")
		{
			insights.POST("/generate", d.InsightsHandler.Generate)
			insights.POST("/live", d.DiscoveryHandler.Live)
			insights.POST("/market-fit", d.MarketFitHandler.Analyze)
		}

		project := v1.Group("/project")
		{
			project.POST("", d.ProjectHandler.Create)
			project.GET("", d.ProjectHandler.List)
			project.GET("/:project_id", d.ProjectHandler.Get)
			project.PATCH("/:project_id", d.ProjectHandler.Patch)
			project.DELETE("/:project_id", d.ProjectHandler.Delete)

			project.GET("/:project_id/insights", d.InsightsHandler.Latest)
		}
	}
	return r
}
