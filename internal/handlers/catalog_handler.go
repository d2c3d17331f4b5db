package handlers

import (
	"carxpress/internal/services"
	"carxpress/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogHandler exposes the read-only query facade the chat assistant
// consumes. Every endpoint here is side-effect free.
type CatalogHandler struct {
	catalogService services.CatalogService
}

func NewCatalogHandler(catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

func (h *CatalogHandler) Search(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	filter := carFilterFromQuery(c)

	cars, total, err := h.catalogService.Search(c.Request.Context(), filter, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Catalog searched", cars, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// PriceExtreme returns the priciest or cheapest listing of the given
// kind, e.g. ?listing_type=sale&order=highest.
func (h *CatalogHandler) PriceExtreme(c *gin.Context) {
	forSale := c.Query("listing_type") == "sale"
	highest := c.DefaultQuery("order", "highest") != "lowest"

	car, err := h.catalogService.PriceExtreme(c.Request.Context(), forSale, highest)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Car retrieved", car)
}

func (h *CatalogHandler) DealerListings(c *gin.Context) {
	dealerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid dealer ID")
		return
	}

	cars, err := h.catalogService.DealerListings(c.Request.Context(), dealerID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Dealer listings retrieved", cars)
}
