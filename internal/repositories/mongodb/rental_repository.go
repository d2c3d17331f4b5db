package mongodb

import (
	"context"
	"fmt"
	"time"

	"carxpress/internal/models"
	"carxpress/internal/repositories/interfaces"
	"carxpress/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type rentalRepository struct {
	collection *mongo.Collection
}

func NewRentalRepository(db *mongo.Database) interfaces.RentalRepository {
	return &rentalRepository{
		collection: db.Collection("rentals"),
	}
}

// Basic CRUD operations
func (r *rentalRepository) Create(ctx context.Context, rental *models.Rental) error {
	rental.ID = primitive.NewObjectID()
	rental.CreatedAt = time.Now()
	rental.UpdatedAt = time.Now()

	if rental.Status == "" {
		rental.Status = models.RentalStatusPending
	}

	_, err := r.collection.InsertOne(ctx, rental)
	if err != nil {
		return fmt.Errorf("failed to create rental: %w", err)
	}

	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rental, error) {
	var rental models.Rental
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rental)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFound("rental")
		}
		return nil, fmt.Errorf("failed to get rental: %w", err)
	}

	return &rental, nil
}

func (r *rentalRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete rental: %w", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFound("rental")
	}

	return nil
}

func (r *rentalRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.RentalStatus) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update rental status: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewInvalidState(fmt.Sprintf("rental is no longer %s", from))
	}

	return nil
}

func (r *rentalRepository) RejectOtherPending(ctx context.Context, carID, approvedID primitive.ObjectID) (int64, error) {
	result, err := r.collection.UpdateMany(
		ctx,
		bson.M{
			"car_id": carID,
			"status": models.RentalStatusPending,
			"_id":    bson.M{"$ne": approvedID},
		},
		bson.M{"$set": bson.M{"status": models.RentalStatusRejected, "updated_at": time.Now()}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reject competing rentals: %w", err)
	}

	return result.ModifiedCount, nil
}

// Guards used by the booking flow
func (r *rentalRepository) ExistsPendingForUserAndCar(ctx context.Context, userID, carID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"user_id": userID,
		"car_id":  carID,
		"status":  models.RentalStatusPending,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check pending rental: %w", err)
	}

	return count > 0, nil
}

func (r *rentalRepository) ExistsApprovedForCar(ctx context.Context, carID, exclude primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"car_id": carID,
		"status": models.RentalStatusApproved,
	}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check approved rental: %w", err)
	}

	return count > 0, nil
}

// Listing
func (r *rentalRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rental, int64, error) {
	return r.findRentalsWithFilter(ctx, bson.M{"user_id": userID}, params)
}

func (r *rentalRepository) GetByCarID(ctx context.Context, carID primitive.ObjectID) ([]*models.Rental, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"car_id": carID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find rentals by car ID: %w", err)
	}
	defer cursor.Close(ctx)

	var rentals []*models.Rental
	for cursor.Next(ctx) {
		var rental models.Rental
		if err := cursor.Decode(&rental); err != nil {
			return nil, fmt.Errorf("failed to decode rental: %w", err)
		}
		rentals = append(rentals, &rental)
	}

	return rentals, nil
}

func (r *rentalRepository) GetByCarIDs(ctx context.Context, carIDs []primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rental, int64, error) {
	if len(carIDs) == 0 {
		return nil, 0, nil
	}
	return r.findRentalsWithFilter(ctx, bson.M{"car_id": bson.M{"$in": carIDs}}, params)
}

func (r *rentalRepository) List(ctx context.Context, status models.RentalStatus, params *utils.PaginationParams) ([]*models.Rental, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.findRentalsWithFilter(ctx, filter, params)
}

// Cascades
func (r *rentalRepository) DeleteByCarIDs(ctx context.Context, carIDs []primitive.ObjectID) (int64, error) {
	if len(carIDs) == 0 {
		return 0, nil
	}

	result, err := r.collection.DeleteMany(ctx, bson.M{"car_id": bson.M{"$in": carIDs}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete rentals by car IDs: %w", err)
	}

	return result.DeletedCount, nil
}

func (r *rentalRepository) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete rentals by user ID: %w", err)
	}

	return result.DeletedCount, nil
}

func (r *rentalRepository) findRentalsWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Rental, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count rentals: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find rentals: %w", err)
	}
	defer cursor.Close(ctx)

	var rentals []*models.Rental
	for cursor.Next(ctx) {
		var rental models.Rental
		if err := cursor.Decode(&rental); err != nil {
			return nil, 0, fmt.Errorf("failed to decode rental: %w", err)
		}
		rentals = append(rentals, &rental)
	}

	return rentals, total, nil
}
