package routes

import (
	"carxpress/internal/handlers"
	"carxpress/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupApprovalRoutes wires the dealer-approval workflow and the admin
// surfaces: the review queue, the downgrade cascade, availability
// repair and sale stats.
func SetupApprovalRoutes(r *gin.RouterGroup, approvalHandler *handlers.ApprovalHandler, rentalHandler *handlers.RentalHandler, saleHandler *handlers.SaleHandler, jwtSecret string) {
	approvals := r.Group("/approvals")
	approvals.Use(middleware.AuthRequired(jwtSecret))
	{
		approvals.POST("", approvalHandler.RequestDealer)
		approvals.GET("", approvalHandler.MyRequests)
		approvals.GET("/:id", approvalHandler.GetApproval)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.GET("/approvals", approvalHandler.ListApprovals)
		admin.PUT("/approvals/:id/status", approvalHandler.ReviewApproval)
		admin.POST("/dealers/:id/downgrade", approvalHandler.DowngradeDealer)
		admin.POST("/cars/:id/reconcile", rentalHandler.ReconcileCar)
		admin.GET("/sales/stats", saleHandler.SaleStats)
	}
}
