package routes

import (
	"carxpress/internal/handlers"
	"carxpress/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes wires authentication and the admin user-management
// surface.
func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler, jwtSecret string) {
	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/signin", authHandler.Signin)
		auth.POST("/refresh", authHandler.Refresh)
		auth.GET("/me", middleware.AuthRequired(jwtSecret), authHandler.Me)
	}

	admin := r.Group("/admin/users")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.GET("", authHandler.ListUsers)
		admin.PUT("/:id/role", authHandler.UpdateUserRole)
		admin.DELETE("/:id", authHandler.DeleteUser)
	}
}
