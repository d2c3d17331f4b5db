package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"carxpress/internal/models"
	"carxpress/internal/repositories/interfaces"
	"carxpress/internal/utils"
	"carxpress/internal/validators"
	"carxpress/pkg/logger"
	"carxpress/pkg/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ImageUpload is one listing photo arriving through a multipart form.
type ImageUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// CatalogService owns car listings: dealer CRUD with image plumbing,
// embedded reviews, and the read-only query facade the chat assistant
// consumes. The query methods never mutate.
type CatalogService interface {
	CreateCar(ctx context.Context, dealerID primitive.ObjectID, dealerRole models.UserRole, req *validators.CarCreateRequest, images []*ImageUpload) (*models.Car, error)
	UpdateCar(ctx context.Context, actorID primitive.ObjectID, actorRole models.UserRole, carID primitive.ObjectID, req *validators.CarUpdateRequest, newImages []*ImageUpload) (*models.Car, error)
	DeleteCar(ctx context.Context, actorID primitive.ObjectID, actorRole models.UserRole, carID primitive.ObjectID) error
	GetCar(ctx context.Context, carID primitive.ObjectID) (*models.Car, error)

	AddReview(ctx context.Context, userID, carID primitive.ObjectID, rating int, comment string) (*models.Car, error)
	RemoveReview(ctx context.Context, actorID primitive.ObjectID, actorRole models.UserRole, carID, reviewID primitive.ObjectID) error

	// Read-only catalog facade
	Search(ctx context.Context, filter *interfaces.CarListFilter, params *utils.PaginationParams) ([]*models.Car, int64, error)
	PriceExtreme(ctx context.Context, forSale, highest bool) (*models.Car, error)
	DealerListings(ctx context.Context, dealerID primitive.ObjectID) ([]*models.Car, error)
}

type catalogService struct {
	carRepo    interfaces.CarRepository
	rentalRepo interfaces.RentalRepository
	storage    storage.Provider
	folder     string
	logger     *logger.Logger
}

func NewCatalogService(carRepo interfaces.CarRepository, rentalRepo interfaces.RentalRepository, provider storage.Provider, folder string, logger *logger.Logger) CatalogService {
	return &catalogService{
		carRepo:    carRepo,
		rentalRepo: rentalRepo,
		storage:    provider,
		folder:     folder,
		logger:     logger,
	}
}

// CreateCar lists a car. Only dealers (and admins) may list; a listing
// needs a dealer phone and at least one image.
func (s *catalogService) CreateCar(ctx context.Context, dealerID primitive.ObjectID, dealerRole models.UserRole, req *validators.CarCreateRequest, images []*ImageUpload) (*models.Car, error) {
	if dealerRole != models.UserRoleDealer && dealerRole != models.UserRoleAdmin {
		return nil, utils.NewForbidden("only approved dealers may list cars")
	}

	if errs := validators.ValidateCarCreate(req); len(errs) > 0 {
		return nil, utils.NewInvalidInput(errs.Error())
	}
	if len(images) == 0 {
		return nil, utils.NewInvalidInput("a listing requires at least one image")
	}
	if len(images) > utils.MaxListingImages {
		return nil, utils.NewInvalidInput(fmt.Sprintf("a listing may carry at most %d images", utils.MaxListingImages))
	}

	uploaded, err := s.uploadImages(ctx, images)
	if err != nil {
		return nil, err
	}

	car := &models.Car{
		DealerID:     dealerID,
		Brand:        models.CarBrand(req.Brand),
		Model:        req.Model,
		Type:         models.CarType(req.Type),
		Year:         req.Year,
		Location:     req.Location,
		Mileage:      req.Mileage,
		ForSale:      req.ListingType == "sale",
		Availability: models.CarAvailable,
		IsCompatible: req.IsCompatible,
		DealerPhone:  utils.NormalizePhone(req.DealerPhone),
		Images:       uploaded,
	}
	if car.ForSale {
		car.SalePrice = req.SalePrice
	} else {
		car.PricePerDay = req.PricePerDay
	}

	if err := s.carRepo.Create(ctx, car); err != nil {
		s.releaseImages(ctx, car.ID, uploaded)
		return nil, err
	}

	return car, nil
}

// UpdateCar edits a listing in place. Sold cars are frozen; the sale
// flip is permanent.
func (s *catalogService) UpdateCar(ctx context.Context, actorID primitive.ObjectID, actorRole models.UserRole, carID primitive.ObjectID, req *validators.CarUpdateRequest, newImages []*ImageUpload) (*models.Car, error) {
	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(car, actorID, actorRole); err != nil {
		return nil, err
	}
	if car.IsSold {
		return nil, utils.NewInvalidState("a sold car can no longer be edited")
	}

	if errs := validators.ValidateCarUpdate(req); len(errs) > 0 {
		return nil, utils.NewInvalidInput(errs.Error())
	}

	updates := map[string]interface{}{}
	if req.Brand != "" {
		updates["brand"] = models.CarBrand(req.Brand)
	}
	if req.Model != "" {
		updates["model"] = req.Model
	}
	if req.Type != "" {
		updates["type"] = models.CarType(req.Type)
	}
	if req.Year != 0 {
		updates["year"] = req.Year
	}
	if req.Location != "" {
		updates["location"] = req.Location
	}
	if req.Mileage != 0 {
		updates["mileage"] = req.Mileage
	}
	if req.DealerPhone != "" {
		updates["dealer_phone"] = utils.NormalizePhone(req.DealerPhone)
	}
	if req.IsCompatible != nil {
		updates["is_compatible"] = *req.IsCompatible
	}
	switch req.ListingType {
	case "rent":
		updates["for_sale"] = false
		updates["price_per_day"] = req.PricePerDay
	case "sale":
		updates["for_sale"] = true
		updates["sale_price"] = req.SalePrice
	}

	images := car.Images
	if len(req.RemoveKeys) > 0 {
		images = s.removeImages(ctx, carID, images, req.RemoveKeys)
	}
	if len(newImages) > 0 {
		if len(images)+len(newImages) > utils.MaxListingImages {
			return nil, utils.NewInvalidInput(fmt.Sprintf("a listing may carry at most %d images", utils.MaxListingImages))
		}
		uploaded, err := s.uploadImages(ctx, newImages)
		if err != nil {
			return nil, err
		}
		images = append(images, uploaded...)
	}
	if len(images) != len(car.Images) || len(req.RemoveKeys) > 0 {
		updates["images"] = images
	}

	if err := s.carRepo.Update(ctx, carID, updates); err != nil {
		return nil, err
	}

	return s.carRepo.GetByID(ctx, carID)
}

// DeleteCar removes a listing along with its dependent rentals, then
// releases the stored images. Release failures are logged, not rolled
// back.
func (s *catalogService) DeleteCar(ctx context.Context, actorID primitive.ObjectID, actorRole models.UserRole, carID primitive.ObjectID) error {
	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return err
	}
	if err := s.authorizeOwner(car, actorID, actorRole); err != nil {
		return err
	}

	if _, err := s.rentalRepo.DeleteByCarIDs(ctx, []primitive.ObjectID{carID}); err != nil {
		return err
	}
	if err := s.carRepo.Delete(ctx, carID); err != nil {
		return err
	}

	s.releaseImages(ctx, carID, car.Images)

	return nil
}

func (s *catalogService) GetCar(ctx context.Context, carID primitive.ObjectID) (*models.Car, error) {
	return s.carRepo.GetByID(ctx, carID)
}

func (s *catalogService) AddReview(ctx context.Context, userID, carID primitive.ObjectID, rating int, comment string) (*models.Car, error) {
	if rating < utils.MinReviewRating || rating > utils.MaxReviewRating {
		return nil, utils.NewInvalidInput("rating must be between 1 and 5")
	}

	review := &models.Review{
		UserID:  userID,
		Rating:  rating,
		Comment: comment,
	}
	if err := s.carRepo.AddReview(ctx, carID, review); err != nil {
		return nil, err
	}

	return s.carRepo.GetByID(ctx, carID)
}

func (s *catalogService) RemoveReview(ctx context.Context, actorID primitive.ObjectID, actorRole models.UserRole, carID, reviewID primitive.ObjectID) error {
	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return err
	}

	if actorRole != models.UserRoleAdmin {
		owned := false
		for _, review := range car.Reviews {
			if review.ID == reviewID && review.UserID == actorID {
				owned = true
				break
			}
		}
		if !owned {
			return utils.NewForbidden("only the reviewer or an admin may remove a review")
		}
	}

	return s.carRepo.RemoveReview(ctx, carID, reviewID)
}

// Read-only catalog facade

func (s *catalogService) Search(ctx context.Context, filter *interfaces.CarListFilter, params *utils.PaginationParams) ([]*models.Car, int64, error) {
	return s.carRepo.List(ctx, filter, params)
}

func (s *catalogService) PriceExtreme(ctx context.Context, forSale, highest bool) (*models.Car, error) {
	return s.carRepo.GetByPriceExtreme(ctx, forSale, highest)
}

func (s *catalogService) DealerListings(ctx context.Context, dealerID primitive.ObjectID) ([]*models.Car, error) {
	return s.carRepo.GetByDealerID(ctx, dealerID)
}

// Helpers

func (s *catalogService) authorizeOwner(car *models.Car, actorID primitive.ObjectID, actorRole models.UserRole) error {
	if actorRole == models.UserRoleAdmin || car.DealerID == actorID {
		return nil
	}
	return utils.NewForbidden("only the listing's dealer or an admin may modify it")
}

func (s *catalogService) uploadImages(ctx context.Context, images []*ImageUpload) ([]models.CarImage, error) {
	uploaded := make([]models.CarImage, 0, len(images))
	for _, image := range images {
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(image.Filename), "."))
		if !isAllowedImageType(ext) {
			s.releaseImages(ctx, primitive.NilObjectID, uploaded)
			return nil, utils.NewInvalidInput("image type ." + ext + " is not accepted")
		}
		if image.Size > utils.MaxImageSize {
			s.releaseImages(ctx, primitive.NilObjectID, uploaded)
			return nil, utils.NewInvalidInput("image exceeds the maximum size")
		}

		key := fmt.Sprintf("%s/%s.%s", s.folder, uuid.New().String(), ext)
		resp, err := s.storage.Upload(ctx, &storage.UploadRequest{
			Key:         key,
			Reader:      image.Reader,
			ContentType: image.ContentType,
			Size:        image.Size,
		})
		if err != nil {
			s.releaseImages(ctx, primitive.NilObjectID, uploaded)
			return nil, utils.NewInternal("image upload failed", err)
		}

		uploaded = append(uploaded, models.CarImage{URL: resp.URL, Key: resp.Key})
	}

	return uploaded, nil
}

func (s *catalogService) removeImages(ctx context.Context, carID primitive.ObjectID, images []models.CarImage, removeKeys []string) []models.CarImage {
	remove := make(map[string]bool, len(removeKeys))
	for _, key := range removeKeys {
		remove[key] = true
	}

	kept := images[:0:0]
	for _, image := range images {
		if remove[image.Key] {
			if err := s.storage.Delete(ctx, image.Key); err != nil {
				s.logger.WithCarID(carID).WithError(err).
					Warnf("failed to release image %s", image.Key)
			}
			continue
		}
		kept = append(kept, image)
	}

	return kept
}

func (s *catalogService) releaseImages(ctx context.Context, carID primitive.ObjectID, images []models.CarImage) {
	for _, image := range images {
		if err := s.storage.Delete(ctx, image.Key); err != nil {
			log := s.logger.WithError(err)
			if !carID.IsZero() {
				log = log.WithCarID(carID)
			}
			log.Warnf("failed to release image %s", image.Key)
		}
	}
}

func isAllowedImageType(ext string) bool {
	for _, allowed := range utils.AllowedImageTypes {
		if ext == allowed {
			return true
		}
	}
	return false
}
