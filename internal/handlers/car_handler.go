package handlers

import (
	"mime/multipart"
	"strconv"

	"carxpress/internal/middleware"
	"carxpress/internal/models"
	"carxpress/internal/repositories/interfaces"
	"carxpress/internal/services"
	"carxpress/internal/utils"
	"carxpress/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CarHandler struct {
	catalogService services.CatalogService
}

func NewCarHandler(catalogService services.CatalogService) *CarHandler {
	return &CarHandler{
		catalogService: catalogService,
	}
}

// CreateCar lists a new car. Expects a multipart form with the listing
// fields plus one to five files under "images".
func (h *CarHandler) CreateCar(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	role, _ := middleware.CurrentUserRole(c)

	var request validators.CarCreateRequest
	if err := c.ShouldBind(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	images, closers, err := collectImages(c)
	if err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}
	defer closeAll(closers)

	car, err := h.catalogService.CreateCar(c.Request.Context(), userID, role, &request, images)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Car listed", car)
}

func (h *CarHandler) UpdateCar(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	role, _ := middleware.CurrentUserRole(c)

	carID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid car ID")
		return
	}

	var request validators.CarUpdateRequest
	if err := c.ShouldBind(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	images, closers, err := collectImages(c)
	if err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}
	defer closeAll(closers)

	car, err := h.catalogService.UpdateCar(c.Request.Context(), userID, role, carID, &request, images)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Car updated", car)
}

func (h *CarHandler) DeleteCar(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	role, _ := middleware.CurrentUserRole(c)

	carID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid car ID")
		return
	}

	if err := h.catalogService.DeleteCar(c.Request.Context(), userID, role, carID); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Car deleted", nil)
}

func (h *CarHandler) GetCar(c *gin.Context) {
	carID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid car ID")
		return
	}

	car, err := h.catalogService.GetCar(c.Request.Context(), carID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Car retrieved", car)
}

// ListCars is the public catalog search; filters arrive as query
// parameters.
func (h *CarHandler) ListCars(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	filter := carFilterFromQuery(c)

	cars, total, err := h.catalogService.Search(c.Request.Context(), filter, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Cars retrieved", cars, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

func (h *CarHandler) AddReview(c *gin.Context) {
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

	var request validators.ReviewCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToDetails())
		return
	}

	car, err := h.catalogService.AddReview(c.Request.Context(), userID, carID, request.Rating, request.Comment)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Review added", car)
}

func (h *CarHandler) RemoveReview(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	role, _ := middleware.CurrentUserRole(c)

	carID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid car ID")
		return
	}
	reviewID, err := primitive.ObjectIDFromHex(c.Param("reviewId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid review ID")
		return
	}

	if err := h.catalogService.RemoveReview(c.Request.Context(), userID, role, carID, reviewID); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Review removed", nil)
}

// Helpers

func carFilterFromQuery(c *gin.Context) *interfaces.CarListFilter {
	filter := &interfaces.CarListFilter{
		Brand:        models.CarBrand(c.Query("brand")),
		Type:         models.CarType(c.Query("type")),
		Availability: models.CarAvailability(c.Query("availability")),
	}

	if dealerID, err := primitive.ObjectIDFromHex(c.Query("dealer_id")); err == nil {
		filter.DealerID = &dealerID
	}
	if listing := c.Query("listing_type"); listing == "rent" || listing == "sale" {
		forSale := listing == "sale"
		filter.ForSale = &forSale
	}
	if sold := c.Query("is_sold"); sold != "" {
		if value, err := strconv.ParseBool(sold); err == nil {
			filter.IsSold = &value
		}
	}
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		filter.Year = year
	}
	if compatible := c.Query("is_compatible"); compatible != "" {
		if value, err := strconv.ParseBool(compatible); err == nil {
			filter.IsCompatible = &value
		}
	}
	filter.MaxMileage, _ = strconv.ParseFloat(c.Query("max_mileage"), 64)
	filter.MinPrice, _ = strconv.ParseFloat(c.Query("min_price"), 64)
	filter.MaxPrice, _ = strconv.ParseFloat(c.Query("max_price"), 64)
	filter.MinSalePrice, _ = strconv.ParseFloat(c.Query("min_sale_price"), 64)
	filter.MaxSalePrice, _ = strconv.ParseFloat(c.Query("max_sale_price"), 64)

	return filter
}

func collectImages(c *gin.Context) ([]*services.ImageUpload, []multipart.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body at all is fine; the service decides whether
		// images are required.
		return nil, nil, nil
	}

	var images []*services.ImageUpload
	var open []multipart.File
	for _, header := range form.File["images"] {
		file, err := header.Open()
		if err != nil {
			closeAll(open)
			return nil, nil, err
		}
		open = append(open, file)
		images = append(images, &services.ImageUpload{
			Reader:      file,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
		})
	}

	return images, open, nil
}

func closeAll(files []multipart.File) {
	for _, file := range files {
		file.Close()
	}
}
