package routes

import (
	"carxpress/internal/handlers"
	"carxpress/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupSaleRoutes wires the sale ledger reads. Purchases live under
// /cars/:id/purchase.
func SetupSaleRoutes(r *gin.RouterGroup, saleHandler *handlers.SaleHandler, jwtSecret string) {
	sales := r.Group("/sales")
	sales.Use(middleware.AuthRequired(jwtSecret))
	{
		sales.GET("", saleHandler.ListSales)
		sales.GET("/:id", saleHandler.GetSale)
	}
}
