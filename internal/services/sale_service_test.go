package services

import (
	"context"
	"testing"

	"carxpress/internal/models"
	"carxpress/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type saleFixture struct {
	svc   SaleService
	cars  *fakeCarRepo
	sales *fakeSaleRepo
}

func newSaleFixture() *saleFixture {
	cars := newFakeCarRepo()
	sales := newFakeSaleRepo()
	return &saleFixture{
		svc:   NewSaleService(sales, cars, NoTransaction{}, "BHD", testLogger()),
		cars:  cars,
		sales: sales,
	}
}

func (f *saleFixture) addSaleListing(dealerID primitive.ObjectID, price float64) *models.Car {
	return f.cars.put(&models.Car{
		DealerID:  dealerID,
		Brand:     "BMW",
		Model:     "X5",
		Year:      2023,
		ForSale:   true,
		SalePrice: price,
	})
}

func TestPurchaseFlipsCarPermanently(t *testing.T) {
	f := newSaleFixture()
	dealerID := primitive.NewObjectID()
	buyerID := primitive.NewObjectID()
	car := f.addSaleListing(dealerID, 12500)

	ctx := context.Background()
	sale, err := f.svc.Purchase(ctx, buyerID, car.ID)
	require.NoError(t, err)

	assert.Equal(t, car.ID, sale.CarID)
	assert.Equal(t, dealerID, sale.DealerID)
	assert.Equal(t, buyerID, sale.BuyerID)
	assert.Equal(t, 12500.0, sale.SalePrice)
	assert.Equal(t, models.PaymentStatusPaid, sale.PaymentStatus)
	assert.False(t, sale.SoldAt.IsZero())

	stored, err := f.cars.GetByID(ctx, car.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSold)
	assert.False(t, stored.ForSale)
	assert.Equal(t, models.CarUnavailable, stored.Availability)
	require.NotNil(t, stored.BuyerID)
	assert.Equal(t, buyerID, *stored.BuyerID)
}

func TestPurchasePreconditions(t *testing.T) {
	f := newSaleFixture()
	dealerID := primitive.NewObjectID()
	ctx := context.Background()

	_, err := f.svc.Purchase(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	rentalOnly := f.cars.put(&models.Car{DealerID: dealerID, PricePerDay: 30})
	_, err = f.svc.Purchase(ctx, primitive.NewObjectID(), rentalOnly.ID)
	assert.Equal(t, utils.KindInvalidState, utils.KindOf(err))

	listed := f.addSaleListing(dealerID, 9000)
	_, err = f.svc.Purchase(ctx, dealerID, listed.ID)
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))
}

func TestSecondPurchaseLosesTheRace(t *testing.T) {
	f := newSaleFixture()
	car := f.addSaleListing(primitive.NewObjectID(), 9000)

	ctx := context.Background()
	_, err := f.svc.Purchase(ctx, primitive.NewObjectID(), car.ID)
	require.NoError(t, err)

	_, err = f.svc.Purchase(ctx, primitive.NewObjectID(), car.ID)
	assert.Equal(t, utils.KindInvalidState, utils.KindOf(err))

	// Exactly one sale record exists for the car.
	sale, err := f.sales.GetByCarID(ctx, car.ID)
	require.NoError(t, err)
	stats, err := f.svc.Stats(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalSales)
	assert.Equal(t, sale.SalePrice, stats.TotalRevenue)
}

func TestSaleVisibilityIsScoped(t *testing.T) {
	f := newSaleFixture()
	dealerID := primitive.NewObjectID()
	buyerID := primitive.NewObjectID()
	car := f.addSaleListing(dealerID, 9000)

	ctx := context.Background()
	sale, err := f.svc.Purchase(ctx, buyerID, car.ID)
	require.NoError(t, err)

	for _, actor := range []struct {
		id   primitive.ObjectID
		role models.UserRole
	}{
		{buyerID, models.UserRoleUser},
		{dealerID, models.UserRoleDealer},
		{primitive.NewObjectID(), models.UserRoleAdmin},
	} {
		got, err := f.svc.Get(ctx, actor.id, actor.role, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, sale.ID, got.ID)
	}

	_, err = f.svc.Get(ctx, primitive.NewObjectID(), models.UserRoleUser, sale.ID)
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))
}

func TestListSalesScopesByRole(t *testing.T) {
	f := newSaleFixture()
	dealerID := primitive.NewObjectID()
	buyerID := primitive.NewObjectID()
	ctx := context.Background()

	carA := f.addSaleListing(dealerID, 9000)
	carB := f.addSaleListing(primitive.NewObjectID(), 7000)
	_, err := f.svc.Purchase(ctx, buyerID, carA.ID)
	require.NoError(t, err)
	_, err = f.svc.Purchase(ctx, primitive.NewObjectID(), carB.ID)
	require.NoError(t, err)

	params := &utils.PaginationParams{Page: 1, PageSize: 20}

	_, total, err := f.svc.List(ctx, primitive.NewObjectID(), models.UserRoleAdmin, params)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = f.svc.List(ctx, dealerID, models.UserRoleDealer, params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = f.svc.List(ctx, buyerID, models.UserRoleUser, params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestStatsAggregatePerDealer(t *testing.T) {
	f := newSaleFixture()
	dealerID := primitive.NewObjectID()
	ctx := context.Background()

	carA := f.addSaleListing(dealerID, 10000)
	carB := f.addSaleListing(dealerID, 20000)
	carC := f.addSaleListing(primitive.NewObjectID(), 5000)
	for _, car := range []*models.Car{carA, carB, carC} {
		_, err := f.svc.Purchase(ctx, primitive.NewObjectID(), car.ID)
		require.NoError(t, err)
	}

	stats, err := f.svc.Stats(ctx, &dealerID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalSales)
	assert.Equal(t, 30000.0, stats.TotalRevenue)
	assert.Equal(t, 15000.0, stats.AveragePrice)

	all, err := f.svc.Stats(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.TotalSales)
	assert.Equal(t, 35000.0, all.TotalRevenue)
}
