package routes

import (
	"net/http"
	"time"

	operatorRepo "transitops/database/repository/operator"
	"transitops/handlers"
	"transitops/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterOperatorRoutes registers dispatcher account endpoints.
func RegisterOperatorRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/operators")
	{
		api.POST("/register", hb.RegisterOperatorHandler)
		api.POST("/login", hb.LoginOperatorHandler)
	}
}

// RegisterCommandRoutes registers the command pipeline endpoints. All of
// them require authentication.
func RegisterCommandRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opRepo operatorRepo.OperatorRepository) {
	api := r.Group("/api/commands")
	{
		api.Use(middleware.JWTAuthOperatorMiddleware(opRepo))
		api.POST("", hb.SubmitCommandHandler)
		api.POST("/image", hb.ImageCommandHandler)
		api.POST("/confirm", hb.ConfirmCommandHandler)
		api.GET("/pending", hb.PendingCommandHandler)
	}
}

// RegisterAuditRoutes registers the audit trail endpoint behind auth.
func RegisterAuditRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opRepo operatorRepo.OperatorRepository) {
	api := r.Group("/api/audit")
	{
		api.Use(middleware.JWTAuthOperatorMiddleware(opRepo))
		api.GET("", hb.AuditTrailHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opRepo operatorRepo.OperatorRepository) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterOperatorRoutes(r, hb)
	RegisterCommandRoutes(r, hb, opRepo)
	RegisterAuditRoutes(r, hb, opRepo)
	RegisterHealthRoute(r)
}
