package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/godlykids/radio-engine/config"
	"github.com/godlykids/radio-engine/internal/broadcast"
	"github.com/godlykids/radio-engine/internal/segments"
)

// Server handles HTTP requests for the radio segment pipeline
type Server struct {
	cfg    *config.Config
	router *gin.Engine

	store     *segments.Store
	assembler *broadcast.Assembler
	generator *broadcast.Generator
}

// New creates a new HTTP server instance
func New(cfg *config.Config, store *segments.Store, assembler *broadcast.Assembler, generator *broadcast.Generator) *Server {
	// Set gin mode (default to debug mode)
	gin.SetMode(gin.DebugMode)

	router := gin.Default()

	server := &Server{
		cfg:       cfg,
		router:    router,
		store:     store,
		assembler: assembler,
		generator: generator,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	// Add CORS middleware
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	s.router.GET("/health", s.healthCheck)

	// API endpoints
	api := s.router.Group("/api/v1")
	{
		api.POST("/stations/:stationId/segments/assemble", s.assembleBroadcast)
		api.GET("/stations/:stationId/segments", s.listSegments)
		api.DELETE("/stations/:stationId/segments", s.deleteStationSegments)
		api.POST("/stations/:stationId/breaks/generate", s.generateBreak)
		api.PUT("/stations/:stationId/intro-script", s.updateIntroScript)

		api.PATCH("/segments/:id", s.updateSegment)
		api.POST("/segments/reorder", s.reorderSegments)
		api.DELETE("/segments/:id", s.deleteSegment)
	}
}

// Start starts the HTTP server
func (s *Server) Start(port string) error {
	return s.router.Run(":" + port)
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "radio-engine",
	})
}
