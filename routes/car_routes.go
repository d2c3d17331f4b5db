package routes

import (
	"carxpress/internal/handlers"
	"carxpress/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupCarRoutes wires the car listing surface plus the nested booking,
// purchase and review actions that hang off a car.
func SetupCarRoutes(r *gin.RouterGroup, carHandler *handlers.CarHandler, rentalHandler *handlers.RentalHandler, saleHandler *handlers.SaleHandler, jwtSecret string) {
	cars := r.Group("/cars")
	{
		// Public catalog reads
		cars.GET("", carHandler.ListCars)
		cars.GET("/:id", carHandler.GetCar)

		// Dealer listing management
		dealer := cars.Group("")
		dealer.Use(middleware.AuthRequired(jwtSecret), middleware.DealerRequired())
		{
			dealer.POST("", carHandler.CreateCar)
			dealer.PUT("/:id", carHandler.UpdateCar)
			dealer.DELETE("/:id", carHandler.DeleteCar)
		}

		// Authenticated user actions against a car
		authed := cars.Group("")
		authed.Use(middleware.AuthRequired(jwtSecret))
		{
			authed.POST("/:id/rentals", rentalHandler.CreateRental)
			authed.POST("/:id/purchase", saleHandler.PurchaseCar)
			authed.POST("/:id/reviews", carHandler.AddReview)
			authed.DELETE("/:id/reviews/:reviewId", carHandler.RemoveReview)
		}
	}
}

// SetupCatalogRoutes wires the read-only facade consumed by the chat
// assistant.
func SetupCatalogRoutes(r *gin.RouterGroup, catalogHandler *handlers.CatalogHandler) {
	catalog := r.Group("/catalog")
	{
		catalog.GET("/search", catalogHandler.Search)
		catalog.GET("/price-extreme", catalogHandler.PriceExtreme)
		catalog.GET("/dealers/:id", catalogHandler.DealerListings)
	}
}
