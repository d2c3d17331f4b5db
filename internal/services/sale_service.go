package services

import (
	"context"
	"time"

	"carxpress/internal/models"
	"carxpress/internal/repositories/interfaces"
	"carxpress/internal/utils"
	"carxpress/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SaleService handles outright purchases. A sale is final: the Sale
// record is immutable and the car flip is permanent.
type SaleService interface {
	Purchase(ctx context.Context, buyerID, carID primitive.ObjectID) (*models.Sale, error)
	Get(ctx context.Context, actorID primitive.ObjectID, actorRole models.UserRole, saleID primitive.ObjectID) (*models.Sale, error)
	List(ctx context.Context, actorID primitive.ObjectID, actorRole models.UserRole, params *utils.PaginationParams) ([]*models.Sale, int64, error)
	Stats(ctx context.Context, dealerID *primitive.ObjectID) (*interfaces.SaleStats, error)
}

type saleService struct {
	saleRepo interfaces.SaleRepository
	carRepo  interfaces.CarRepository
	txn      TransactionRunner
	currency string
	logger   *logger.Logger
}

func NewSaleService(saleRepo interfaces.SaleRepository, carRepo interfaces.CarRepository, txn TransactionRunner, currency string, logger *logger.Logger) SaleService {
	if currency == "" {
		currency = utils.DefaultCurrency
	}
	return &saleService{
		saleRepo: saleRepo,
		carRepo:  carRepo,
		txn:      txn,
		currency: currency,
		logger:   logger,
	}
}

// Purchase sells a listed car to the buyer. The sale record and the
// guarded car flip commit together; the car is the last write, so a
// lost race aborts the whole transaction before the sale sticks.
// Payment status is recorded as paid, not verified.
func (s *saleService) Purchase(ctx context.Context, buyerID, carID primitive.ObjectID) (*models.Sale, error) {
	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}

	if car.IsSold {
		return nil, utils.NewInvalidState("car has already been sold")
	}
	if !car.ForSale {
		return nil, utils.NewInvalidState("car is not listed for sale")
	}
	if car.DealerID == buyerID {
		return nil, utils.NewForbidden("dealers cannot buy their own listings")
	}

	sale := &models.Sale{
		CarID:         carID,
		DealerID:      car.DealerID,
		BuyerID:       buyerID,
		SalePrice:     car.SalePrice,
		PaymentStatus: models.PaymentStatusPaid,
		SoldAt:        time.Now(),
	}

	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.saleRepo.Create(ctx, sale); err != nil {
			return err
		}
		return s.carRepo.MarkSold(ctx, carID, buyerID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogSaleEvent(sale.ID, carID, sale.SalePrice, s.currency)

	return sale, nil
}

func (s *saleService) Get(ctx context.Context, actorID primitive.ObjectID, actorRole models.UserRole, saleID primitive.ObjectID) (*models.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	if actorRole != models.UserRoleAdmin && sale.BuyerID != actorID && sale.DealerID != actorID {
		return nil, utils.NewForbidden("you may not view this sale")
	}

	return sale, nil
}

// List scopes results by role: admins see everything, dealers their
// own sales, everyone else their purchases.
func (s *saleService) List(ctx context.Context, actorID primitive.ObjectID, actorRole models.UserRole, params *utils.PaginationParams) ([]*models.Sale, int64, error) {
	filter := &interfaces.SaleListFilter{}
	switch actorRole {
	case models.UserRoleAdmin:
	case models.UserRoleDealer:
		filter.DealerID = &actorID
	default:
		filter.BuyerID = &actorID
	}

	return s.saleRepo.List(ctx, filter, params)
}

func (s *saleService) Stats(ctx context.Context, dealerID *primitive.ObjectID) (*interfaces.SaleStats, error) {
	return s.saleRepo.GetStats(ctx, dealerID)
}
