package interfaces

import (
	"context"

	"carxpress/internal/models"
	"carxpress/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SaleListFilter struct {
	DealerID *primitive.ObjectID
	BuyerID  *primitive.ObjectID
}

type SaleStats struct {
	TotalSales   int64   `json:"total_sales" bson:"total_sales"`
	TotalRevenue float64 `json:"total_revenue" bson:"total_revenue"`
	AveragePrice float64 `json:"average_price" bson:"average_price"`
}

// SaleRepository is append-only: sale records are immutable once
// written, so there is no update or delete surface.
type SaleRepository interface {
	Create(ctx context.Context, sale *models.Sale) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Sale, error)
	GetByCarID(ctx context.Context, carID primitive.ObjectID) (*models.Sale, error)

	List(ctx context.Context, filter *SaleListFilter, params *utils.PaginationParams) ([]*models.Sale, int64, error)
	GetStats(ctx context.Context, dealerID *primitive.ObjectID) (*SaleStats, error)
}
