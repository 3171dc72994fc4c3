package restapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const swaggerSpecRoute = "/docs/swagger.yaml"

// RouterOptions holds the HTTP surface settings.
type RouterOptions struct {
	AllowedOrigins []string
	// SwaggerSpecPath is the OpenAPI file served at /docs/swagger.yaml. Empty disables the Swagger UI.
	SwaggerSpecPath string
}

// SetupRouter configures the gin engine with middleware and all routes.
func SetupRouter(tokenHandler *TokenHandler, streamHandler *StreamHandler, opts RouterOptions, zapLogger *zap.Logger) *gin.Engine {
	router := gin.New()
	allowedOrigins := opts.AllowedOrigins

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	router.Use(ZapLoggerMiddleware(zapLogger))
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/token", tokenHandler.GetToken)
		v1.GET("/token/format", tokenHandler.FormatAmount)
		v1.GET("/token/stream", streamHandler.Stream)
		v1.GET("/network", tokenHandler.GetNetwork)
		v1.PUT("/network", tokenHandler.SetNetwork)
		v1.GET("/networks", tokenHandler.ListNetworks)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	if opts.SwaggerSpecPath != "" {
		router.StaticFile(swaggerSpecRoute, opts.SwaggerSpecPath)
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(swaggerSpecRoute)))
	}

	return router
}
