package interfaces

import (
	"context"

	"carxpress/internal/models"
	"carxpress/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CarListFilter narrows catalog listings. Nil pointer fields are not
// applied.
type CarListFilter struct {
	DealerID     *primitive.ObjectID
	Brand        models.CarBrand
	Type         models.CarType
	Availability models.CarAvailability
	ForSale      *bool
	IsSold       *bool
	Year         int
	MaxMileage   float64
	IsCompatible *bool
	MinPrice     float64
	MaxPrice     float64
	MinSalePrice float64
	MaxSalePrice float64
}

type CarRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, car *models.Car) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Car, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Dealer association
	GetByDealerID(ctx context.Context, dealerID primitive.ObjectID) ([]*models.Car, error)
	DeleteByDealerID(ctx context.Context, dealerID primitive.ObjectID) (int64, error)

	// Availability and sale state
	UpdateAvailability(ctx context.Context, id primitive.ObjectID, availability models.CarAvailability) error
	// MarkSold flips the car to sold iff it is still listed for sale and
	// unsold; a lost race surfaces as an invalid_state error.
	MarkSold(ctx context.Context, id primitive.ObjectID, buyerID primitive.ObjectID) error

	// Rental and review embedding
	AddRental(ctx context.Context, carID, rentalID primitive.ObjectID) error
	AddReview(ctx context.Context, carID primitive.ObjectID, review *models.Review) error
	RemoveReview(ctx context.Context, carID, reviewID primitive.ObjectID) error

	// Search and listing
	List(ctx context.Context, filter *CarListFilter, params *utils.PaginationParams) ([]*models.Car, int64, error)
	// GetByPriceExtreme returns the single priciest (or cheapest) listing
	// of the given kind, rental or sale.
	GetByPriceExtreme(ctx context.Context, forSale, highest bool) (*models.Car, error)

	GetTotalCount(ctx context.Context) (int64, error)
	GetCountByAvailability(ctx context.Context, availability models.CarAvailability) (int64, error)
}
