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

type approvalRepository struct {
	collection *mongo.Collection
}

func NewApprovalRepository(db *mongo.Database) interfaces.ApprovalRepository {
	return &approvalRepository{
		collection: db.Collection("approvals"),
	}
}

func (r *approvalRepository) Create(ctx context.Context, approval *models.Approval) error {
	approval.ID = primitive.NewObjectID()
	approval.CreatedAt = time.Now()
	approval.UpdatedAt = time.Now()

	if approval.Status == "" {
		approval.Status = models.ApprovalStatusPending
	}

	_, err := r.collection.InsertOne(ctx, approval)
	if err != nil {
		return fmt.Errorf("failed to create approval: %w", err)
	}

	return nil
}

func (r *approvalRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Approval, error) {
	var approval models.Approval
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&approval)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFound("approval request")
		}
		return nil, fmt.Errorf("failed to get approval: %w", err)
	}

	return &approval, nil
}

func (r *approvalRepository) HasPendingForUser(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"user_id": userID,
		"status":  models.ApprovalStatusPending,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check pending approval: %w", err)
	}

	return count > 0, nil
}

func (r *approvalRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.Approval, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find approvals by user ID: %w", err)
	}
	defer cursor.Close(ctx)

	var approvals []*models.Approval
	for cursor.Next(ctx) {
		var approval models.Approval
		if err := cursor.Decode(&approval); err != nil {
			return nil, fmt.Errorf("failed to decode approval: %w", err)
		}
		approvals = append(approvals, &approval)
	}

	return approvals, nil
}

func (r *approvalRepository) List(ctx context.Context, status models.ApprovalStatus, params *utils.PaginationParams) ([]*models.Approval, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count approvals: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find approvals: %w", err)
	}
	defer cursor.Close(ctx)

	var approvals []*models.Approval
	for cursor.Next(ctx) {
		var approval models.Approval
		if err := cursor.Decode(&approval); err != nil {
			return nil, 0, fmt.Errorf("failed to decode approval: %w", err)
		}
		approvals = append(approvals, &approval)
	}

	return approvals, total, nil
}

func (r *approvalRepository) MarkApproved(ctx context.Context, id, adminID primitive.ObjectID, approvedAt time.Time) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.ApprovalStatusPending},
		bson.M{"$set": bson.M{
			"status":      models.ApprovalStatusApproved,
			"admin_id":    adminID,
			"approved_at": approvedAt,
			"updated_at":  time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to approve request: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewInvalidState("approval request has already been decided")
	}

	return nil
}

func (r *approvalRepository) MarkRejected(ctx context.Context, id, adminID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.ApprovalStatusPending},
		bson.M{
			"$set": bson.M{
				"status":     models.ApprovalStatusRejected,
				"admin_id":   adminID,
				"updated_at": time.Now(),
			},
			"$unset": bson.M{"approved_at": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to reject request: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewInvalidState("approval request has already been decided")
	}

	return nil
}

func (r *approvalRepository) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete approvals by user ID: %w", err)
	}

	return result.DeletedCount, nil
}
