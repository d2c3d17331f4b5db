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
)

type saleRepository struct {
	collection *mongo.Collection
}

func NewSaleRepository(db *mongo.Database) interfaces.SaleRepository {
	return &saleRepository{
		collection: db.Collection("sales"),
	}
}

func (r *saleRepository) Create(ctx context.Context, sale *models.Sale) error {
	sale.ID = primitive.NewObjectID()
	sale.CreatedAt = time.Now()
	if sale.SoldAt.IsZero() {
		sale.SoldAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, sale)
	if err != nil {
		// The unique car_id index guarantees one sale per car.
		if mongo.IsDuplicateKeyError(err) {
			return utils.NewInvalidState("car has already been sold")
		}
		return fmt.Errorf("failed to create sale: %w", err)
	}

	return nil
}

func (r *saleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Sale, error) {
	var sale models.Sale
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&sale)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFound("sale")
		}
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}

	return &sale, nil
}

func (r *saleRepository) GetByCarID(ctx context.Context, carID primitive.ObjectID) (*models.Sale, error) {
	var sale models.Sale
	err := r.collection.FindOne(ctx, bson.M{"car_id": carID}).Decode(&sale)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFound("sale")
		}
		return nil, fmt.Errorf("failed to get sale by car ID: %w", err)
	}

	return &sale, nil
}

func (r *saleRepository) List(ctx context.Context, filter *interfaces.SaleListFilter, params *utils.PaginationParams) ([]*models.Sale, int64, error) {
	query := bson.M{}
	if filter != nil {
		if filter.DealerID != nil {
			query["dealer_id"] = *filter.DealerID
		}
		if filter.BuyerID != nil {
			query["buyer_id"] = *filter.BuyerID
		}
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count sales: %w", err)
	}

	cursor, err := r.collection.Find(ctx, query, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find sales: %w", err)
	}
	defer cursor.Close(ctx)

	var sales []*models.Sale
	for cursor.Next(ctx) {
		var sale models.Sale
		if err := cursor.Decode(&sale); err != nil {
			return nil, 0, fmt.Errorf("failed to decode sale: %w", err)
		}
		sales = append(sales, &sale)
	}

	return sales, total, nil
}

func (r *saleRepository) GetStats(ctx context.Context, dealerID *primitive.ObjectID) (*interfaces.SaleStats, error) {
	match := bson.M{}
	if dealerID != nil {
		match["dealer_id"] = *dealerID
	}

	pipeline := []bson.M{
		{"$match": match},
		{"$group": bson.M{
			"_id":           nil,
			"total_sales":   bson.M{"$sum": 1},
			"total_revenue": bson.M{"$sum": "$sale_price"},
			"average_price": bson.M{"$avg": "$sale_price"},
		}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sale stats: %w", err)
	}
	defer cursor.Close(ctx)

	stats := &interfaces.SaleStats{}
	if cursor.Next(ctx) {
		if err := cursor.Decode(stats); err != nil {
			return nil, fmt.Errorf("failed to decode sale stats: %w", err)
		}
	}

	return stats, nil
}
