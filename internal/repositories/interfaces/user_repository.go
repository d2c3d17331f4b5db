package interfaces

import (
	"context"

	"carxpress/internal/models"
	"carxpress/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	UpdateRole(ctx context.Context, id primitive.ObjectID, role models.UserRole) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error)
	GetCountByRole(ctx context.Context, role models.UserRole) (int64, error)
}
