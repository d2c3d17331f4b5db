package routes

import (
	"carxpress/internal/handlers"
	"carxpress/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRentalRoutes wires the booking lifecycle. Creation lives under
// /cars/:id/rentals; everything here operates on existing rentals.
func SetupRentalRoutes(r *gin.RouterGroup, rentalHandler *handlers.RentalHandler, jwtSecret string) {
	rentals := r.Group("/rentals")
	rentals.Use(middleware.AuthRequired(jwtSecret))
	{
		rentals.GET("", rentalHandler.ListRentals)
		rentals.GET("/:id", rentalHandler.GetRental)
		rentals.PUT("/:id/cancel", rentalHandler.CancelRental)

		decisions := rentals.Group("")
		decisions.Use(middleware.DealerRequired())
		{
			decisions.PUT("/:id/status", rentalHandler.UpdateStatus)
			decisions.DELETE("/:id", rentalHandler.DeleteRental)
		}
	}
}
