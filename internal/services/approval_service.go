package services

import (
	"context"
	"time"

	"carxpress/internal/models"
	"carxpress/internal/repositories/interfaces"
	"carxpress/internal/utils"
	"carxpress/pkg/logger"
	"carxpress/pkg/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CascadeResult reports how many records a destructive cascade removed.
type CascadeResult struct {
	CarsDeleted      int64 `json:"cars_deleted"`
	RentalsDeleted   int64 `json:"rentals_deleted"`
	ApprovalsDeleted int64 `json:"approvals_deleted"`
}

// ApprovalService runs the dealer role gate: approval requests, admin
// review, and the destructive downgrade / user-deletion cascades.
type ApprovalService interface {
	RequestDealer(ctx context.Context, userID primitive.ObjectID, phone, description string) (*models.Approval, error)
	Review(ctx context.Context, adminID, approvalID primitive.ObjectID, status models.ApprovalStatus) (*models.Approval, error)

	Get(ctx context.Context, actorID primitive.ObjectID, actorRole models.UserRole, approvalID primitive.ObjectID) (*models.Approval, error)
	MyRequests(ctx context.Context, userID primitive.ObjectID) ([]*models.Approval, error)
	List(ctx context.Context, status models.ApprovalStatus, params *utils.PaginationParams) ([]*models.Approval, int64, error)

	CascadeDealerDowngrade(ctx context.Context, dealerID primitive.ObjectID) (*CascadeResult, error)
	CascadeUserDeletion(ctx context.Context, userID primitive.ObjectID) (*CascadeResult, error)
}

type approvalService struct {
	approvalRepo interfaces.ApprovalRepository
	userRepo     interfaces.UserRepository
	carRepo      interfaces.CarRepository
	rentalRepo   interfaces.RentalRepository
	storage      storage.Provider
	txn          TransactionRunner
	logger       *logger.Logger
}

func NewApprovalService(
	approvalRepo interfaces.ApprovalRepository,
	userRepo interfaces.UserRepository,
	carRepo interfaces.CarRepository,
	rentalRepo interfaces.RentalRepository,
	provider storage.Provider,
	txn TransactionRunner,
	logger *logger.Logger,
) ApprovalService {
	return &approvalService{
		approvalRepo: approvalRepo,
		userRepo:     userRepo,
		carRepo:      carRepo,
		rentalRepo:   rentalRepo,
		storage:      provider,
		txn:          txn,
		logger:       logger,
	}
}

// RequestDealer files a dealer-role request. Users holding the dealer
// (or admin) role cannot apply, and at most one request per user may be
// pending.
func (s *approvalService) RequestDealer(ctx context.Context, userID primitive.ObjectID, phone, description string) (*models.Approval, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.Role != models.UserRoleUser {
		return nil, utils.NewConflict("account already holds an elevated role")
	}

	hasPending, err := s.approvalRepo.HasPendingForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if hasPending {
		return nil, utils.NewConflict("you already have a pending approval request")
	}

	if !utils.IsValidBahrainPhone(phone) {
		return nil, utils.NewInvalidInput("phone number is not a valid Bahraini number")
	}

	approval := &models.Approval{
		UserID:      userID,
		Phone:       utils.NormalizePhone(phone),
		Description: description,
		Status:      models.ApprovalStatusPending,
	}
	if err := s.approvalRepo.Create(ctx, approval); err != nil {
		return nil, err
	}

	return approval, nil
}

// Review decides a pending request. Approve promotes the requester to
// dealer and stamps reviewer + timestamp; reject stamps the reviewer
// and clears any approval timestamp. Both are terminal.
func (s *approvalService) Review(ctx context.Context, adminID, approvalID primitive.ObjectID, status models.ApprovalStatus) (*models.Approval, error) {
	if status != models.ApprovalStatusApproved && status != models.ApprovalStatusRejected {
		return nil, utils.NewInvalidInput("review status must be approved or rejected")
	}

	approval, err := s.approvalRepo.GetByID(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	if approval.Status != models.ApprovalStatusPending {
		return nil, utils.NewInvalidState("approval request has already been decided")
	}

	now := time.Now()
	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if status == models.ApprovalStatusApproved {
			if err := s.approvalRepo.MarkApproved(ctx, approvalID, adminID, now); err != nil {
				return err
			}
			return s.userRepo.UpdateRole(ctx, approval.UserID, models.UserRoleDealer)
		}
		return s.approvalRepo.MarkRejected(ctx, approvalID, adminID)
	})
	if err != nil {
		return nil, err
	}

	approval.Status = status
	approval.AdminID = &adminID
	if status == models.ApprovalStatusApproved {
		approval.ApprovedAt = &now
		s.logger.LogUserAction(approval.UserID, utils.EventDealerApproved, map[string]interface{}{
			"approval_id": approvalID.Hex(),
			"admin_id":    adminID.Hex(),
		})
	} else {
		approval.ApprovedAt = nil
	}

	return approval, nil
}

func (s *approvalService) Get(ctx context.Context, actorID primitive.ObjectID, actorRole models.UserRole, approvalID primitive.ObjectID) (*models.Approval, error) {
	approval, err := s.approvalRepo.GetByID(ctx, approvalID)
	if err != nil {
		return nil, err
	}

	if actorRole != models.UserRoleAdmin && approval.UserID != actorID {
		return nil, utils.NewForbidden("you may not view this approval request")
	}

	return approval, nil
}

func (s *approvalService) MyRequests(ctx context.Context, userID primitive.ObjectID) ([]*models.Approval, error) {
	return s.approvalRepo.GetByUserID(ctx, userID)
}

func (s *approvalService) List(ctx context.Context, status models.ApprovalStatus, params *utils.PaginationParams) ([]*models.Approval, int64, error) {
	return s.approvalRepo.List(ctx, status, params)
}

// CascadeDealerDowngrade demotes a dealer to a plain user and deletes
// everything their dealership owned: rentals on their cars first, then
// the cars (releasing stored images), then their approval records.
// Destructive and irreversible.
func (s *approvalService) CascadeDealerDowngrade(ctx context.Context, dealerID primitive.ObjectID) (*CascadeResult, error) {
	user, err := s.userRepo.GetByID(ctx, dealerID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.UserRoleDealer {
		return nil, utils.NewInvalidState("user is not a dealer")
	}

	if err := s.userRepo.UpdateRole(ctx, dealerID, models.UserRoleUser); err != nil {
		return nil, err
	}

	result, err := s.deleteDealership(ctx, dealerID)
	if err != nil {
		return nil, err
	}

	approvals, err := s.approvalRepo.DeleteByUserID(ctx, dealerID)
	if err != nil {
		return nil, err
	}
	result.ApprovalsDeleted = approvals

	s.logger.LogUserAction(dealerID, utils.EventDealerDowngraded, map[string]interface{}{
		"cars_deleted":      result.CarsDeleted,
		"rentals_deleted":   result.RentalsDeleted,
		"approvals_deleted": result.ApprovalsDeleted,
	})

	return result, nil
}

// CascadeUserDeletion removes a user and every record tied to them:
// their dealership (if any), rentals they requested, their approval
// records, and finally the user itself.
func (s *approvalService) CascadeUserDeletion(ctx context.Context, userID primitive.ObjectID) (*CascadeResult, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	result, err := s.deleteDealership(ctx, userID)
	if err != nil {
		return nil, err
	}

	requested, err := s.rentalRepo.DeleteByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	result.RentalsDeleted += requested

	approvals, err := s.approvalRepo.DeleteByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	result.ApprovalsDeleted = approvals

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return nil, err
	}

	return result, nil
}

// deleteDealership removes the rentals on a dealer's cars, then the
// cars themselves. Rentals go first so no rental ever references a
// deleted car mid-cascade. Image handles are released best-effort.
func (s *approvalService) deleteDealership(ctx context.Context, dealerID primitive.ObjectID) (*CascadeResult, error) {
	cars, err := s.carRepo.GetByDealerID(ctx, dealerID)
	if err != nil {
		return nil, err
	}

	carIDs := make([]primitive.ObjectID, 0, len(cars))
	for _, car := range cars {
		carIDs = append(carIDs, car.ID)
	}

	rentals, err := s.rentalRepo.DeleteByCarIDs(ctx, carIDs)
	if err != nil {
		return nil, err
	}

	for _, car := range cars {
		s.releaseImages(ctx, car)
	}

	carsDeleted, err := s.carRepo.DeleteByDealerID(ctx, dealerID)
	if err != nil {
		return nil, err
	}

	return &CascadeResult{
		CarsDeleted:    carsDeleted,
		RentalsDeleted: rentals,
	}, nil
}

func (s *approvalService) releaseImages(ctx context.Context, car *models.Car) {
	if s.storage == nil {
		return
	}
	for _, image := range car.Images {
		if err := s.storage.Delete(ctx, image.Key); err != nil {
			s.logger.WithCarID(car.ID).WithError(err).
				Warnf("failed to release image %s", image.Key)
		}
	}
}
