package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/openrsl/rslserver/internal/storage"
)

type Server struct {
	router *gin.Engine
	port   int
	server *http.Server
}

func NewServer(port int, store storage.Store) *Server {
	router := gin.Default()

	// Setup CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Owner-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Create handler
	handler := NewHandler(store)

	// Setup routes
	api := router.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		// Stateless RSL core endpoints: pure pass-throughs around
		// parse/generate/validate, no identity required.
		rsl := api.Group("/rsl")
		{
			rsl.POST("/validate", handler.ValidateDocument)
			rsl.POST("/parse", handler.ParseDocument)
			rsl.POST("/generate", handler.GenerateDocument)
		}

		// Stored documents, scoped to the owner supplied by the identity
		// layer in front of this service.
		documents := api.Group("/documents", OwnerRequired())
		{
			documents.GET("", handler.ListDocuments)
			documents.POST("", handler.CreateDocument)
			documents.GET("/:id", handler.GetDocument)
			documents.PUT("/:id", handler.UpdateDocument)
			documents.DELETE("/:id", handler.DeleteDocument)
			documents.GET("/:id/report", handler.GetDocumentReport)
		}

		// Sitemap discovery
		discoveries := api.Group("/discoveries", OwnerRequired())
		{
			discoveries.GET("", handler.ListDiscoveryConfigs)
			discoveries.POST("", handler.CreateDiscoveryConfig)
			discoveries.GET("/:id", handler.GetDiscoveryConfig)
			discoveries.PUT("/:id", handler.UpdateDiscoveryConfig)
			discoveries.DELETE("/:id", handler.DeleteDiscoveryConfig)
		}
		api.POST("/discover", OwnerRequired(), handler.RunDiscovery)
	}

	return &Server{
		router: router,
		port:   port,
	}
}

// OwnerRequired rejects requests without an owner identity. Authentication
// itself lives in front of this service; the header is its pass-through.
func OwnerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetHeader("X-Owner-ID")
		if owner == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Missing owner identity"})
			return
		}
		c.Set("ownerID", owner)
		c.Next()
	}
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
