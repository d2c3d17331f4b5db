package services

import (
	"context"

	"carxpress/internal/models"
	"carxpress/internal/repositories/interfaces"
	"carxpress/internal/utils"
	"carxpress/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingService coordinates the rental ledger and the car catalog so
// the two stay consistent: a car never holds more than one approved
// rental, and its availability flag always tracks the ledger.
type BookingService interface {
	// Booking lifecycle
	RequestRental(ctx context.Context, userID, carID primitive.ObjectID, startDate, endDate, phone string) (*models.Rental, error)
	UpdateStatus(ctx context.Context, actorID primitive.ObjectID, actorRole models.UserRole, rentalID primitive.ObjectID, target models.RentalStatus) (*models.Rental, error)
	Cancel(ctx context.Context, actorID, rentalID primitive.ObjectID) (*models.Rental, error)
	Delete(ctx context.Context, actorID primitive.ObjectID, actorRole models.UserRole, rentalID primitive.ObjectID) error

	// Consistency repair
	ReconcileCarAvailability(ctx context.Context, carID primitive.ObjectID) (models.CarAvailability, error)

	// Listings
	GetRental(ctx context.Context, actorID primitive.ObjectID, actorRole models.UserRole, rentalID primitive.ObjectID) (*models.Rental, error)
	MyRentals(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rental, int64, error)
	DealerRentals(ctx context.Context, dealerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rental, int64, error)
	ListRentals(ctx context.Context, status models.RentalStatus, params *utils.PaginationParams) ([]*models.Rental, int64, error)
}

type bookingService struct {
	rentalRepo interfaces.RentalRepository
	carRepo    interfaces.CarRepository
	txn        TransactionRunner
	logger     *logger.Logger
}

func NewBookingService(rentalRepo interfaces.RentalRepository, carRepo interfaces.CarRepository, txn TransactionRunner, logger *logger.Logger) BookingService {
	return &bookingService{
		rentalRepo: rentalRepo,
		carRepo:    carRepo,
		txn:        txn,
		logger:     logger,
	}
}

// RequestRental creates a pending booking. Checks run in a fixed order
// and the first failure wins; nothing is written until all pass. A
// pending request never blocks other pending requests, only an
// existing approved rental does.
func (s *bookingService) RequestRental(ctx context.Context, userID, carID primitive.ObjectID, startDate, endDate, phone string) (*models.Rental, error) {
	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}

	if !utils.IsValidBahrainPhone(phone) {
		return nil, utils.NewInvalidInput("phone number is not a valid Bahraini number")
	}

	start, err := utils.ParseDate(startDate)
	if err != nil {
		return nil, utils.NewInvalidInput("start date must be formatted as YYYY-MM-DD")
	}
	end, err := utils.ParseDate(endDate)
	if err != nil {
		return nil, utils.NewInvalidInput("end date must be formatted as YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, utils.NewInvalidInput("end date must not precede start date")
	}

	hasPending, err := s.rentalRepo.ExistsPendingForUserAndCar(ctx, userID, carID)
	if err != nil {
		return nil, err
	}
	if hasPending {
		return nil, utils.NewConflict("you already have a pending request for this car")
	}

	isRented, err := s.rentalRepo.ExistsApprovedForCar(ctx, carID, primitive.NilObjectID)
	if err != nil {
		return nil, err
	}
	if isRented {
		return nil, utils.NewConflict("car is already rented")
	}

	days := utils.InclusiveDays(start, end)
	rental := &models.Rental{
		UserID:     userID,
		CarID:      carID,
		StartDate:  start,
		EndDate:    end,
		TotalPrice: float64(days) * car.PricePerDay,
		Status:     models.RentalStatusPending,
		UserPhone:  utils.NormalizePhone(phone),
	}

	if err := s.rentalRepo.Create(ctx, rental); err != nil {
		return nil, err
	}
	if err := s.carRepo.AddRental(ctx, carID, rental.ID); err != nil {
		return nil, err
	}

	s.logger.LogRentalEvent(rental.ID, utils.EventRentalRequested, map[string]interface{}{
		"car_id":      carID.Hex(),
		"days":        days,
		"total_price": rental.TotalPrice,
	})

	return rental, nil
}

// UpdateStatus drives the dealer/admin transitions: approve, reject,
// complete. Approval rejects every competing pending rental and marks
// the car rented; reject/complete re-derive availability from the
// remaining ledger. The car record is always the last write.
func (s *bookingService) UpdateStatus(ctx context.Context, actorID primitive.ObjectID, actorRole models.UserRole, rentalID primitive.ObjectID, target models.RentalStatus) (*models.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	car, err := s.carRepo.GetByID(ctx, rental.CarID)
	if err != nil {
		return nil, err
	}

	if actorRole != models.UserRoleAdmin && car.DealerID != actorID {
		return nil, utils.NewForbidden("only the car's dealer or an admin may change this rental")
	}

	if !target.Valid() {
		return nil, utils.NewInvalidInput("unknown rental status")
	}
	if !rental.Status.CanTransitionTo(target) {
		return nil, utils.NewInvalidState("rental cannot move from " + string(rental.Status) + " to " + string(target))
	}

	from := rental.Status
	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.rentalRepo.UpdateStatus(ctx, rentalID, from, target); err != nil {
			return err
		}

		switch target {
		case models.RentalStatusApproved:
			rejected, err := s.rentalRepo.RejectOtherPending(ctx, rental.CarID, rentalID)
			if err != nil {
				return err
			}
			if rejected > 0 {
				s.logger.WithRentalID(rentalID).WithCarID(rental.CarID).
					Infof("cascade-rejected %d competing pending rentals", rejected)
			}
			// Re-read before the final car write so an interleaved
			// mutation (sale, delete) is not silently overwritten.
			if _, err := s.carRepo.GetByID(ctx, rental.CarID); err != nil {
				return err
			}
			return s.carRepo.UpdateAvailability(ctx, rental.CarID, models.CarRented)

		case models.RentalStatusRejected, models.RentalStatusCompleted:
			return s.rederiveAvailability(ctx, rental.CarID, rentalID)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	rental.Status = target
	s.logger.LogRentalEvent(rentalID, rentalEventFor(target), map[string]interface{}{
		"car_id": rental.CarID.Hex(),
		"from":   string(from),
	})

	return rental, nil
}

// Cancel lets the requester withdraw a pending or approved booking.
// Cancellation always frees the car, even when another approved rental
// exists; this mirrors the documented legacy policy.
func (s *bookingService) Cancel(ctx context.Context, actorID, rentalID primitive.ObjectID) (*models.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	if rental.UserID != actorID {
		return nil, utils.NewForbidden("only the requester may cancel a rental")
	}
	if rental.Status.Terminal() {
		return nil, utils.NewInvalidState("rental is already " + string(rental.Status))
	}

	from := rental.Status
	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.rentalRepo.UpdateStatus(ctx, rentalID, from, models.RentalStatusCancelled); err != nil {
			return err
		}

		err := s.carRepo.UpdateAvailability(ctx, rental.CarID, models.CarAvailable)
		if utils.IsKind(err, utils.KindNotFound) {
			// The car may have been hard-deleted; the cancellation still stands.
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	rental.Status = models.RentalStatusCancelled
	s.logger.LogRentalEvent(rentalID, utils.EventRentalCancelled, map[string]interface{}{
		"car_id": rental.CarID.Hex(),
		"from":   string(from),
	})

	return rental, nil
}

// Delete hard-deletes a rental record. Availability is deliberately not
// reconciled here; ReconcileCarAvailability repairs a car left rented
// by deleting its approved rental.
func (s *bookingService) Delete(ctx context.Context, actorID primitive.ObjectID, actorRole models.UserRole, rentalID primitive.ObjectID) error {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return err
	}

	if actorRole != models.UserRoleAdmin {
		car, err := s.carRepo.GetByID(ctx, rental.CarID)
		if err != nil {
			return err
		}
		if car.DealerID != actorID {
			return utils.NewForbidden("only the car's dealer or an admin may delete this rental")
		}
	}

	return s.rentalRepo.Delete(ctx, rentalID)
}

// ReconcileCarAvailability re-derives a car's availability from the
// rental ledger, self-healing drift left by partial failures.
func (s *bookingService) ReconcileCarAvailability(ctx context.Context, carID primitive.ObjectID) (models.CarAvailability, error) {
	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return "", err
	}

	derived := models.CarAvailable
	if car.IsSold {
		derived = models.CarUnavailable
	} else {
		hasApproved, err := s.rentalRepo.ExistsApprovedForCar(ctx, carID, primitive.NilObjectID)
		if err != nil {
			return "", err
		}
		if hasApproved {
			derived = models.CarRented
		}
	}

	if car.Availability != derived {
		s.logger.WithCarID(carID).
			Warnf("availability drift repaired: %s -> %s", car.Availability, derived)
		if err := s.carRepo.UpdateAvailability(ctx, carID, derived); err != nil {
			return "", err
		}
	}

	return derived, nil
}

func (s *bookingService) GetRental(ctx context.Context, actorID primitive.ObjectID, actorRole models.UserRole, rentalID primitive.ObjectID) (*models.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	if actorRole == models.UserRoleAdmin || rental.UserID == actorID {
		return rental, nil
	}

	car, err := s.carRepo.GetByID(ctx, rental.CarID)
	if err == nil && car.DealerID == actorID {
		return rental, nil
	}

	return nil, utils.NewForbidden("you may not view this rental")
}

func (s *bookingService) MyRentals(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rental, int64, error) {
	return s.rentalRepo.GetByUserID(ctx, userID, params)
}

func (s *bookingService) DealerRentals(ctx context.Context, dealerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rental, int64, error) {
	cars, err := s.carRepo.GetByDealerID(ctx, dealerID)
	if err != nil {
		return nil, 0, err
	}

	carIDs := make([]primitive.ObjectID, 0, len(cars))
	for _, car := range cars {
		carIDs = append(carIDs, car.ID)
	}

	return s.rentalRepo.GetByCarIDs(ctx, carIDs, params)
}

func (s *bookingService) ListRentals(ctx context.Context, status models.RentalStatus, params *utils.PaginationParams) ([]*models.Rental, int64, error) {
	return s.rentalRepo.List(ctx, status, params)
}

func rentalEventFor(status models.RentalStatus) string {
	switch status {
	case models.RentalStatusApproved:
		return utils.EventRentalApproved
	case models.RentalStatusRejected:
		return utils.EventRentalRejected
	case models.RentalStatusCompleted:
		return utils.EventRentalCompleted
	case models.RentalStatusCancelled:
		return utils.EventRentalCancelled
	}
	return utils.EventRentalRequested
}

// rederiveAvailability frees the car unless some other rental is still
// approved. Used by the reject and complete transitions.
func (s *bookingService) rederiveAvailability(ctx context.Context, carID, exclude primitive.ObjectID) error {
	otherApproved, err := s.rentalRepo.ExistsApprovedForCar(ctx, carID, exclude)
	if err != nil {
		return err
	}
	if otherApproved {
		return nil
	}
	return s.carRepo.UpdateAvailability(ctx, carID, models.CarAvailable)
}
