package handlers

import (
	"carxpress/internal/middleware"
	"carxpress/internal/services"
	"carxpress/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SaleHandler struct {
	saleService services.SaleService
}

func NewSaleHandler(saleService services.SaleService) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
	}
}

// PurchaseCar buys the car in the path outright.
func (h *SaleHandler) PurchaseCar(c *gin.Context) {
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

	sale, err := h.saleService.Purchase(c.Request.Context(), userID, carID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Purchase completed", sale)
}

func (h *SaleHandler) GetSale(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	role, _ := middleware.CurrentUserRole(c)

	saleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid sale ID")
		return
	}

	sale, err := h.saleService.Get(c.Request.Context(), userID, role, saleID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Sale retrieved", sale)
}

func (h *SaleHandler) ListSales(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	role, _ := middleware.CurrentUserRole(c)
	params := utils.GetPaginationParams(c)

	sales, total, err := h.saleService.List(c.Request.Context(), userID, role, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Sales retrieved", sales, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// SaleStats aggregates count and revenue, optionally per dealer via
// ?dealer_id=. Admin-only.
func (h *SaleHandler) SaleStats(c *gin.Context) {
	var dealerID *primitive.ObjectID
	if id, err := primitive.ObjectIDFromHex(c.Query("dealer_id")); err == nil {
		dealerID = &id
	}

	stats, err := h.saleService.Stats(c.Request.Context(), dealerID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Sale stats retrieved", stats)
}
