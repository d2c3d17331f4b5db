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

type bookingFixture struct {
	svc     BookingService
	cars    *fakeCarRepo
	rentals *fakeRentalRepo
}

func newBookingFixture() *bookingFixture {
	cars := newFakeCarRepo()
	rentals := newFakeRentalRepo()
	return &bookingFixture{
		svc:     NewBookingService(rentals, cars, NoTransaction{}, testLogger()),
		cars:    cars,
		rentals: rentals,
	}
}

func (f *bookingFixture) addCar(dealerID primitive.ObjectID, pricePerDay float64) *models.Car {
	return f.cars.put(&models.Car{
		DealerID:    dealerID,
		Brand:       "Toyota",
		Model:       "Corolla",
		Year:        2022,
		PricePerDay: pricePerDay,
	})
}

const validPhone = "+97333123456"

func TestRequestRentalComputesInclusiveDays(t *testing.T) {
	f := newBookingFixture()
	dealerID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	car := f.addCar(dealerID, 25.5)

	rental, err := f.svc.RequestRental(context.Background(), userID, car.ID, "2026-03-10", "2026-03-12", validPhone)
	require.NoError(t, err)

	assert.Equal(t, models.RentalStatusPending, rental.Status)
	assert.Equal(t, 3*25.5, rental.TotalPrice)
	assert.Equal(t, "+97333123456", rental.UserPhone)

	// Creation never touches availability; only an approval does.
	stored, err := f.cars.GetByID(context.Background(), car.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarAvailable, stored.Availability)
	assert.Contains(t, stored.Rentals, rental.ID)
}

func TestRequestRentalSingleDayCountsAsOne(t *testing.T) {
	f := newBookingFixture()
	car := f.addCar(primitive.NewObjectID(), 40)

	rental, err := f.svc.RequestRental(context.Background(), primitive.NewObjectID(), car.ID, "2026-03-10", "2026-03-10", validPhone)
	require.NoError(t, err)
	assert.Equal(t, 40.0, rental.TotalPrice)
}

func TestRequestRentalValidationOrder(t *testing.T) {
	f := newBookingFixture()
	userID := primitive.NewObjectID()
	car := f.addCar(primitive.NewObjectID(), 30)

	// Missing car wins over every other problem in the request.
	_, err := f.svc.RequestRental(context.Background(), userID, primitive.NewObjectID(), "bad", "worse", "not-a-phone")
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	_, err = f.svc.RequestRental(context.Background(), userID, car.ID, "2026-03-10", "2026-03-12", "12345")
	assert.Equal(t, utils.KindInvalidInput, utils.KindOf(err))

	_, err = f.svc.RequestRental(context.Background(), userID, car.ID, "10/03/2026", "2026-03-12", validPhone)
	assert.Equal(t, utils.KindInvalidInput, utils.KindOf(err))

	_, err = f.svc.RequestRental(context.Background(), userID, car.ID, "2026-03-12", "2026-03-10", validPhone)
	assert.Equal(t, utils.KindInvalidInput, utils.KindOf(err))
}

func TestRequestRentalDuplicatePendingConflicts(t *testing.T) {
	f := newBookingFixture()
	userID := primitive.NewObjectID()
	car := f.addCar(primitive.NewObjectID(), 30)

	_, err := f.svc.RequestRental(context.Background(), userID, car.ID, "2026-03-10", "2026-03-12", validPhone)
	require.NoError(t, err)

	_, err = f.svc.RequestRental(context.Background(), userID, car.ID, "2026-04-01", "2026-04-02", validPhone)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))

	// A different user may still queue up behind the first request.
	_, err = f.svc.RequestRental(context.Background(), primitive.NewObjectID(), car.ID, "2026-04-01", "2026-04-02", validPhone)
	assert.NoError(t, err)
}

func TestRequestRentalBlockedByApprovedRental(t *testing.T) {
	f := newBookingFixture()
	car := f.addCar(primitive.NewObjectID(), 30)
	f.rentals.put(&models.Rental{
		UserID: primitive.NewObjectID(),
		CarID:  car.ID,
		Status: models.RentalStatusApproved,
	})

	_, err := f.svc.RequestRental(context.Background(), primitive.NewObjectID(), car.ID, "2026-03-10", "2026-03-12", validPhone)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
}

func TestApproveCascadesOverCompetingRequests(t *testing.T) {
	f := newBookingFixture()
	dealerID := primitive.NewObjectID()
	car := f.addCar(dealerID, 30)

	ctx := context.Background()
	winner, err := f.svc.RequestRental(ctx, primitive.NewObjectID(), car.ID, "2026-03-10", "2026-03-12", validPhone)
	require.NoError(t, err)
	loser1, err := f.svc.RequestRental(ctx, primitive.NewObjectID(), car.ID, "2026-03-10", "2026-03-12", validPhone)
	require.NoError(t, err)
	loser2, err := f.svc.RequestRental(ctx, primitive.NewObjectID(), car.ID, "2026-03-15", "2026-03-18", validPhone)
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(ctx, dealerID, models.UserRoleDealer, winner.ID, models.RentalStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.RentalStatusApproved, updated.Status)

	for _, loserID := range []primitive.ObjectID{loser1.ID, loser2.ID} {
		loser, err := f.rentals.GetByID(ctx, loserID)
		require.NoError(t, err)
		assert.Equal(t, models.RentalStatusRejected, loser.Status)
	}

	stored, err := f.cars.GetByID(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarRented, stored.Availability)
}

func TestUpdateStatusRequiresOwningDealerOrAdmin(t *testing.T) {
	f := newBookingFixture()
	dealerID := primitive.NewObjectID()
	car := f.addCar(dealerID, 30)

	ctx := context.Background()
	rental, err := f.svc.RequestRental(ctx, primitive.NewObjectID(), car.ID, "2026-03-10", "2026-03-12", validPhone)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, primitive.NewObjectID(), models.UserRoleDealer, rental.ID, models.RentalStatusApproved)
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))

	// Admins act on any car regardless of ownership.
	_, err = f.svc.UpdateStatus(ctx, primitive.NewObjectID(), models.UserRoleAdmin, rental.ID, models.RentalStatusApproved)
	assert.NoError(t, err)
}

func TestUpdateStatusRejectsIllegalTransitions(t *testing.T) {
	f := newBookingFixture()
	dealerID := primitive.NewObjectID()
	car := f.addCar(dealerID, 30)

	ctx := context.Background()
	rental, err := f.svc.RequestRental(ctx, primitive.NewObjectID(), car.ID, "2026-03-10", "2026-03-12", validPhone)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, dealerID, models.UserRoleDealer, rental.ID, models.RentalStatus("paused"))
	assert.Equal(t, utils.KindInvalidInput, utils.KindOf(err))

	// pending cannot jump straight to completed
	_, err = f.svc.UpdateStatus(ctx, dealerID, models.UserRoleDealer, rental.ID, models.RentalStatusCompleted)
	assert.Equal(t, utils.KindInvalidState, utils.KindOf(err))

	_, err = f.svc.UpdateStatus(ctx, dealerID, models.UserRoleDealer, rental.ID, models.RentalStatusRejected)
	require.NoError(t, err)

	// Terminal states accept no further decisions.
	_, err = f.svc.UpdateStatus(ctx, dealerID, models.UserRoleDealer, rental.ID, models.RentalStatusApproved)
	assert.Equal(t, utils.KindInvalidState, utils.KindOf(err))
}

func TestCompleteFreesCarWhenNoOtherApproved(t *testing.T) {
	f := newBookingFixture()
	dealerID := primitive.NewObjectID()
	car := f.addCar(dealerID, 30)

	ctx := context.Background()
	rental, err := f.svc.RequestRental(ctx, primitive.NewObjectID(), car.ID, "2026-03-10", "2026-03-12", validPhone)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, dealerID, models.UserRoleDealer, rental.ID, models.RentalStatusApproved)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, dealerID, models.UserRoleDealer, rental.ID, models.RentalStatusCompleted)
	require.NoError(t, err)

	stored, err := f.cars.GetByID(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarAvailable, stored.Availability)
}

func TestRejectKeepsCarRentedWhileAnotherApprovedExists(t *testing.T) {
	f := newBookingFixture()
	dealerID := primitive.NewObjectID()
	car := f.addCar(dealerID, 30)
	f.cars.UpdateAvailability(context.Background(), car.ID, models.CarRented)

	// Two approved rentals is drift the ledger can carry; rejecting one
	// must not free the car while the other still stands.
	doomed := f.rentals.put(&models.Rental{
		UserID: primitive.NewObjectID(),
		CarID:  car.ID,
		Status: models.RentalStatusApproved,
	})
	f.rentals.put(&models.Rental{
		UserID: primitive.NewObjectID(),
		CarID:  car.ID,
		Status: models.RentalStatusApproved,
	})

	ctx := context.Background()
	_, err := f.svc.UpdateStatus(ctx, dealerID, models.UserRoleDealer, doomed.ID, models.RentalStatusRejected)
	require.NoError(t, err)

	stored, err := f.cars.GetByID(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarRented, stored.Availability)
}

func TestCancelFreesCarUnconditionally(t *testing.T) {
	f := newBookingFixture()
	dealerID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	car := f.addCar(dealerID, 30)

	ctx := context.Background()
	rental, err := f.svc.RequestRental(ctx, userID, car.ID, "2026-03-10", "2026-03-12", validPhone)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, dealerID, models.UserRoleDealer, rental.ID, models.RentalStatusApproved)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, primitive.NewObjectID(), rental.ID)
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))

	cancelled, err := f.svc.Cancel(ctx, userID, rental.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RentalStatusCancelled, cancelled.Status)

	stored, err := f.cars.GetByID(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarAvailable, stored.Availability)

	_, err = f.svc.Cancel(ctx, userID, rental.ID)
	assert.Equal(t, utils.KindInvalidState, utils.KindOf(err))
}

func TestCancelSurvivesDeletedCar(t *testing.T) {
	f := newBookingFixture()
	userID := primitive.NewObjectID()
	car := f.addCar(primitive.NewObjectID(), 30)

	ctx := context.Background()
	rental, err := f.svc.RequestRental(ctx, userID, car.ID, "2026-03-10", "2026-03-12", validPhone)
	require.NoError(t, err)

	require.NoError(t, f.cars.Delete(ctx, car.ID))

	cancelled, err := f.svc.Cancel(ctx, userID, rental.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RentalStatusCancelled, cancelled.Status)
}

func TestDeleteDoesNotReconcileAvailability(t *testing.T) {
	f := newBookingFixture()
	dealerID := primitive.NewObjectID()
	car := f.addCar(dealerID, 30)

	ctx := context.Background()
	rental, err := f.svc.RequestRental(ctx, primitive.NewObjectID(), car.ID, "2026-03-10", "2026-03-12", validPhone)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, dealerID, models.UserRoleDealer, rental.ID, models.RentalStatusApproved)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, dealerID, models.UserRoleDealer, rental.ID))

	// The car stays rented; only an explicit reconcile repairs it.
	stored, err := f.cars.GetByID(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarRented, stored.Availability)

	availability, err := f.svc.ReconcileCarAvailability(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarAvailable, availability)
}

func TestDeleteRequiresOwnershipUnlessAdmin(t *testing.T) {
	f := newBookingFixture()
	car := f.addCar(primitive.NewObjectID(), 30)

	ctx := context.Background()
	rental, err := f.svc.RequestRental(ctx, primitive.NewObjectID(), car.ID, "2026-03-10", "2026-03-12", validPhone)
	require.NoError(t, err)

	err = f.svc.Delete(ctx, primitive.NewObjectID(), models.UserRoleDealer, rental.ID)
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))

	assert.NoError(t, f.svc.Delete(ctx, primitive.NewObjectID(), models.UserRoleAdmin, rental.ID))
}

func TestReconcileDerivesFromLedgerAndSaleState(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	// Sold car: unavailable regardless of the ledger.
	sold := f.cars.put(&models.Car{
		DealerID:     primitive.NewObjectID(),
		IsSold:       true,
		Availability: models.CarAvailable,
	})
	availability, err := f.svc.ReconcileCarAvailability(ctx, sold.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarUnavailable, availability)

	// Approved rental: rented.
	rented := f.addCar(primitive.NewObjectID(), 30)
	f.rentals.put(&models.Rental{
		UserID: primitive.NewObjectID(),
		CarID:  rented.ID,
		Status: models.RentalStatusApproved,
	})
	availability, err = f.svc.ReconcileCarAvailability(ctx, rented.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarRented, availability)

	stored, err := f.cars.GetByID(ctx, rented.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarRented, stored.Availability)

	// Reconciling twice is idempotent.
	availability, err = f.svc.ReconcileCarAvailability(ctx, rented.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarRented, availability)

	_, err = f.svc.ReconcileCarAvailability(ctx, primitive.NewObjectID())
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestDealerRentalsSpanAllDealerCars(t *testing.T) {
	f := newBookingFixture()
	dealerID := primitive.NewObjectID()
	carA := f.addCar(dealerID, 30)
	carB := f.addCar(dealerID, 45)
	other := f.addCar(primitive.NewObjectID(), 50)

	ctx := context.Background()
	_, err := f.svc.RequestRental(ctx, primitive.NewObjectID(), carA.ID, "2026-03-10", "2026-03-12", validPhone)
	require.NoError(t, err)
	_, err = f.svc.RequestRental(ctx, primitive.NewObjectID(), carB.ID, "2026-03-10", "2026-03-12", validPhone)
	require.NoError(t, err)
	_, err = f.svc.RequestRental(ctx, primitive.NewObjectID(), other.ID, "2026-03-10", "2026-03-12", validPhone)
	require.NoError(t, err)

	rentals, total, err := f.svc.DealerRentals(ctx, dealerID, &utils.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, rentals, 2)
}
