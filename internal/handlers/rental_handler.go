package handlers

import (
	"carxpress/internal/middleware"
	"carxpress/internal/models"
	"carxpress/internal/services"
	"carxpress/internal/utils"
	"carxpress/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RentalHandler struct {
	bookingService services.BookingService
}

func NewRentalHandler(bookingService services.BookingService) *RentalHandler {
	return &RentalHandler{
		bookingService: bookingService,
	}
}

// CreateRental files a booking request against the car in the path.
func (h *RentalHandler) CreateRental(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	carID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid car ID")
		return
	}

	var request validators.RentalCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	rental, err := h.bookingService.RequestRental(c.Request.Context(), userID, carID,
		request.StartDate, request.EndDate, request.UserPhone)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Rental requested", rental)
}

func (h *RentalHandler) GetRental(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	role, _ := middleware.CurrentUserRole(c)

	rentalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid rental ID")
		return
	}

	rental, err := h.bookingService.GetRental(c.Request.Context(), userID, role, rentalID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Rental retrieved", rental)
}

// ListRentals scopes by role: admins see every rental (optionally
// filtered by ?status=), dealers the rentals on their cars, everyone
// else their own requests.
func (h *RentalHandler) ListRentals(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	role, _ := middleware.CurrentUserRole(c)
	params := utils.GetPaginationParams(c)

	var (
		rentals []*models.Rental
		total   int64
		err     error
	)
	switch role {
	case models.UserRoleAdmin:
		rentals, total, err = h.bookingService.ListRentals(c.Request.Context(),
			models.RentalStatus(c.Query("status")), params)
	case models.UserRoleDealer:
		rentals, total, err = h.bookingService.DealerRentals(c.Request.Context(), userID, params)
	default:
		rentals, total, err = h.bookingService.MyRentals(c.Request.Context(), userID, params)
	}
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Rentals retrieved", rentals, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// UpdateStatus drives approve/reject/complete.
func (h *RentalHandler) UpdateStatus(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	role, _ := middleware.CurrentUserRole(c)

	rentalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid rental ID")
		return
	}

	var request validators.RentalStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToDetails())
		return
	}

	rental, err := h.bookingService.UpdateStatus(c.Request.Context(), userID, role, rentalID,
		models.RentalStatus(request.Status))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Rental status updated", rental)
}

func (h *RentalHandler) CancelRental(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	rentalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid rental ID")
		return
	}

	rental, err := h.bookingService.Cancel(c.Request.Context(), userID, rentalID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Rental cancelled", rental)
}

func (h *RentalHandler) DeleteRental(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	role, _ := middleware.CurrentUserRole(c)

	rentalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid rental ID")
		return
	}

	if err := h.bookingService.Delete(c.Request.Context(), userID, role, rentalID); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Rental deleted", nil)
}

// ReconcileCar re-derives a car's availability from the rental ledger.
// Admin-only repair endpoint.
func (h *RentalHandler) ReconcileCar(c *gin.Context) {
	carID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid car ID")
		return
	}

	availability, err := h.bookingService.ReconcileCarAvailability(c.Request.Context(), carID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Availability reconciled", gin.H{"availability": availability})
}
