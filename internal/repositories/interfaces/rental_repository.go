package interfaces

import (
	"context"

	"carxpress/internal/models"
	"carxpress/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RentalRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, rental *models.Rental) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rental, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// UpdateStatus moves a rental from one status to another with a
	// guarded write: the update matches only while the rental still has
	// the expected current status, so concurrent decisions cannot both
	// land.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.RentalStatus) error

	// RejectOtherPending bulk-rejects every pending rental on the car
	// except the one being approved, returning how many were rejected.
	RejectOtherPending(ctx context.Context, carID, approvedID primitive.ObjectID) (int64, error)

	// Guards used by the booking flow
	ExistsPendingForUserAndCar(ctx context.Context, userID, carID primitive.ObjectID) (bool, error)
	// ExistsApprovedForCar reports whether the car has an approved rental,
	// ignoring exclude when it is non-zero.
	ExistsApprovedForCar(ctx context.Context, carID, exclude primitive.ObjectID) (bool, error)

	// Listing
	GetByUserID(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rental, int64, error)
	GetByCarID(ctx context.Context, carID primitive.ObjectID) ([]*models.Rental, error)
	GetByCarIDs(ctx context.Context, carIDs []primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rental, int64, error)
	List(ctx context.Context, status models.RentalStatus, params *utils.PaginationParams) ([]*models.Rental, int64, error)

	// Cascades
	DeleteByCarIDs(ctx context.Context, carIDs []primitive.ObjectID) (int64, error)
	DeleteByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error)
}
