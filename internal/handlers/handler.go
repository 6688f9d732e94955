package handlers

import (
	"irrigation_node/internal/logger"
	"irrigation_node/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the diagnostics API to the node services.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	router.GET("/ws", h.wsAuthMiddleware, h.wsConnect)

	return router
}

// Operators are created with `irrigation-node operator add`, so there is no
// sign-up route on the node.
func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.operatorMiddleware)
	{
		h.registerNodeRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerNodeRoutes(api *gin.RouterGroup) {
	node := api.Group("/node")
	{
		node.GET("/status", h.getStatus)
		// Body example: {"line":"{\"water_duration\": 30, \"fan\": \"on\"}"}
		node.POST("/commands", h.submitCommand)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("", h.getLogs)
	}
}
