package interfaces

import (
	"context"
	"time"

	"carxpress/internal/models"
	"carxpress/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ApprovalRepository interface {
	Create(ctx context.Context, approval *models.Approval) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Approval, error)

	HasPendingForUser(ctx context.Context, userID primitive.ObjectID) (bool, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.Approval, error)
	List(ctx context.Context, status models.ApprovalStatus, params *utils.PaginationParams) ([]*models.Approval, int64, error)

	// Both decision writes are guarded on the request still being
	// pending; a request already decided surfaces as invalid_state.
	MarkApproved(ctx context.Context, id, adminID primitive.ObjectID, approvedAt time.Time) error
	MarkRejected(ctx context.Context, id, adminID primitive.ObjectID) error

	DeleteByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error)
}
