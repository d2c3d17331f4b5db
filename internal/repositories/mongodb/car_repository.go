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

type carRepository struct {
	collection *mongo.Collection
	cache      CacheService
}

func NewCarRepository(db *mongo.Database, cache CacheService) interfaces.CarRepository {
	return &carRepository{
		collection: db.Collection("cars"),
		cache:      cache,
	}
}

// Basic CRUD operations
func (r *carRepository) Create(ctx context.Context, car *models.Car) error {
	car.ID = primitive.NewObjectID()
	car.CreatedAt = time.Now()
	car.UpdatedAt = time.Now()

	if car.Availability == "" {
		car.Availability = models.CarAvailable
	}
	if car.Images == nil {
		car.Images = []models.CarImage{}
	}
	if car.Rentals == nil {
		car.Rentals = []primitive.ObjectID{}
	}
	if car.Reviews == nil {
		car.Reviews = []models.Review{}
	}

	_, err := r.collection.InsertOne(ctx, car)
	if err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}

	return nil
}

func (r *carRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Car, error) {
	// Try cache first
	if car := r.getCarFromCache(ctx, id); car != nil {
		return car, nil
	}

	var car models.Car
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&car)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFound("car")
		}
		return nil, fmt.Errorf("failed to get car: %w", err)
	}

	r.cacheCar(ctx, &car)

	return &car, nil
}

func (r *carRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update car: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFound("car")
	}

	r.invalidateCarCache(ctx, id)

	return nil
}

func (r *carRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete car: %w", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFound("car")
	}

	r.invalidateCarCache(ctx, id)

	return nil
}

// Dealer association
func (r *carRepository) GetByDealerID(ctx context.Context, dealerID primitive.ObjectID) ([]*models.Car, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"dealer_id": dealerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find cars by dealer ID: %w", err)
	}
	defer cursor.Close(ctx)

	var cars []*models.Car
	for cursor.Next(ctx) {
		var car models.Car
		if err := cursor.Decode(&car); err != nil {
			return nil, fmt.Errorf("failed to decode car: %w", err)
		}
		cars = append(cars, &car)
	}

	return cars, nil
}

func (r *carRepository) DeleteByDealerID(ctx context.Context, dealerID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"dealer_id": dealerID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete cars by dealer ID: %w", err)
	}

	return result.DeletedCount, nil
}

// Availability and sale state
func (r *carRepository) UpdateAvailability(ctx context.Context, id primitive.ObjectID, availability models.CarAvailability) error {
	return r.Update(ctx, id, map[string]interface{}{"availability": availability})
}

func (r *carRepository) MarkSold(ctx context.Context, id primitive.ObjectID, buyerID primitive.ObjectID) error {
	// Guarded on the listing still being an unsold sale listing, so two
	// concurrent purchases cannot both succeed.
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "for_sale": true, "is_sold": false},
		bson.M{"$set": bson.M{
			"is_sold":      true,
			"for_sale":     false,
			"buyer_id":     buyerID,
			"availability": models.CarUnavailable,
			"updated_at":   time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark car sold: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewInvalidState("car is not available for purchase")
	}

	r.invalidateCarCache(ctx, id)

	return nil
}

// Rental and review embedding
func (r *carRepository) AddRental(ctx context.Context, carID, rentalID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": carID},
		bson.M{
			"$push": bson.M{"rentals": rentalID},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to attach rental to car: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFound("car")
	}

	r.invalidateCarCache(ctx, carID)

	return nil
}

func (r *carRepository) AddReview(ctx context.Context, carID primitive.ObjectID, review *models.Review) error {
	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": carID},
		bson.M{
			"$push": bson.M{"reviews": review},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to add review: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFound("car")
	}

	r.invalidateCarCache(ctx, carID)

	return nil
}

func (r *carRepository) RemoveReview(ctx context.Context, carID, reviewID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": carID},
		bson.M{
			"$pull": bson.M{"reviews": bson.M{"_id": reviewID}},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to remove review: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFound("car")
	}
	if result.ModifiedCount == 0 {
		return utils.NewNotFound("review")
	}

	r.invalidateCarCache(ctx, carID)

	return nil
}

// Search and listing
func (r *carRepository) List(ctx context.Context, filter *interfaces.CarListFilter, params *utils.PaginationParams) ([]*models.Car, int64, error) {
	query := buildCarFilter(filter)

	if params.Search != "" {
		searchFilter := params.GetSearchFilter([]string{"brand", "model", "location"})
		if len(searchFilter) > 0 {
			query = bson.M{"$and": []bson.M{query, searchFilter}}
		}
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count cars: %w", err)
	}

	cursor, err := r.collection.Find(ctx, query, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find cars: %w", err)
	}
	defer cursor.Close(ctx)

	var cars []*models.Car
	for cursor.Next(ctx) {
		var car models.Car
		if err := cursor.Decode(&car); err != nil {
			return nil, 0, fmt.Errorf("failed to decode car: %w", err)
		}
		cars = append(cars, &car)
	}

	return cars, total, nil
}

func (r *carRepository) GetByPriceExtreme(ctx context.Context, forSale, highest bool) (*models.Car, error) {
	priceField := "price_per_day"
	filter := bson.M{"for_sale": false, "is_sold": false}
	if forSale {
		priceField = "sale_price"
		filter = bson.M{"for_sale": true, "is_sold": false}
	}

	order := 1
	if highest {
		order = -1
	}

	var car models.Car
	err := r.collection.FindOne(ctx, filter,
		options.FindOne().SetSort(bson.D{{Key: priceField, Value: order}})).Decode(&car)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFound("car")
		}
		return nil, fmt.Errorf("failed to get car by price: %w", err)
	}

	return &car, nil
}

func (r *carRepository) GetTotalCount(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *carRepository) GetCountByAvailability(ctx context.Context, availability models.CarAvailability) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"availability": availability})
}

func buildCarFilter(filter *interfaces.CarListFilter) bson.M {
	query := bson.M{}
	if filter == nil {
		return query
	}

	if filter.DealerID != nil {
		query["dealer_id"] = *filter.DealerID
	}
	if filter.Brand != "" {
		query["brand"] = filter.Brand
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Availability != "" {
		query["availability"] = filter.Availability
	}
	if filter.ForSale != nil {
		query["for_sale"] = *filter.ForSale
	}
	if filter.IsSold != nil {
		query["is_sold"] = *filter.IsSold
	}
	if filter.Year > 0 {
		query["year"] = filter.Year
	}
	if filter.MaxMileage > 0 {
		query["mileage"] = bson.M{"$lte": filter.MaxMileage}
	}
	if filter.IsCompatible != nil {
		query["is_compatible"] = *filter.IsCompatible
	}

	if filter.MinPrice > 0 || filter.MaxPrice > 0 {
		priceRange := bson.M{}
		if filter.MinPrice > 0 {
			priceRange["$gte"] = filter.MinPrice
		}
		if filter.MaxPrice > 0 {
			priceRange["$lte"] = filter.MaxPrice
		}
		query["price_per_day"] = priceRange
	}

	if filter.MinSalePrice > 0 || filter.MaxSalePrice > 0 {
		priceRange := bson.M{}
		if filter.MinSalePrice > 0 {
			priceRange["$gte"] = filter.MinSalePrice
		}
		if filter.MaxSalePrice > 0 {
			priceRange["$lte"] = filter.MaxSalePrice
		}
		query["sale_price"] = priceRange
	}

	return query
}

// Cache operations
func (r *carRepository) cacheCar(ctx context.Context, car *models.Car) {
	if r.cache != nil && car.Availability == models.CarAvailable {
		r.cache.Set(ctx, utils.CacheCarPrefix+car.ID.Hex(), car, 15*time.Minute)
	}
}

func (r *carRepository) getCarFromCache(ctx context.Context, id primitive.ObjectID) *models.Car {
	if r.cache == nil {
		return nil
	}

	var car models.Car
	if err := r.cache.Get(ctx, utils.CacheCarPrefix+id.Hex(), &car); err != nil {
		return nil
	}

	return &car
}

func (r *carRepository) invalidateCarCache(ctx context.Context, id primitive.ObjectID) {
	if r.cache != nil {
		r.cache.Delete(ctx, utils.CacheCarPrefix+id.Hex())
	}
}
