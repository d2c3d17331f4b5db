package services

import (
	"context"

	"carxpress/internal/models"
	"carxpress/internal/repositories/interfaces"
	"carxpress/internal/utils"
	"carxpress/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type AuthResponse struct {
	User   *models.User     `json:"user"`
	Tokens *utils.TokenPair `json:"tokens"`
}

// AuthService issues the opaque {id, role} identity the rest of the
// system consumes, plus the admin user-management surface. Destructive
// user deletion goes through ApprovalService's cascade, not here.
type AuthService interface {
	Signup(ctx context.Context, username, password string) (*AuthResponse, error)
	Signin(ctx context.Context, username, password string) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*utils.TokenPair, error)

	GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	ListUsers(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error)
	UpdateUserRole(ctx context.Context, userID primitive.ObjectID, role models.UserRole) (*models.User, error)
}

type authService struct {
	userRepo  interfaces.UserRepository
	jwtSecret string
	logger    *logger.Logger
}

func NewAuthService(userRepo interfaces.UserRepository, jwtSecret string, logger *logger.Logger) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

func (s *authService) Signup(ctx context.Context, username, password string) (*AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.NewInternal("failed to hash password", err)
	}

	user := &models.User{
		Username:       username,
		HashedPassword: string(hash),
		Role:           models.UserRoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := utils.GenerateTokenPair(user.ID, user.Username, string(user.Role), s.jwtSecret)
	if err != nil {
		return nil, utils.NewInternal("failed to issue tokens", err)
	}

	s.logger.LogUserAction(user.ID, utils.EventUserRegistered, nil)

	return &AuthResponse{User: user, Tokens: tokens}, nil
}

func (s *authService) Signin(ctx context.Context, username, password string) (*AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return nil, utils.NewUnauthenticated(utils.ErrInvalidCredentials)
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return nil, utils.NewUnauthenticated(utils.ErrInvalidCredentials)
	}

	tokens, err := utils.GenerateTokenPair(user.ID, user.Username, string(user.Role), s.jwtSecret)
	if err != nil {
		return nil, utils.NewInternal("failed to issue tokens", err)
	}

	return &AuthResponse{User: user, Tokens: tokens}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	claims, err := utils.ValidateToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, utils.NewUnauthenticated(utils.ErrInvalidToken)
	}

	// Re-read the user so a role change since issuance is reflected.
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return nil, utils.NewUnauthenticated(utils.ErrInvalidToken)
		}
		return nil, err
	}

	tokens, err := utils.GenerateTokenPair(user.ID, user.Username, string(user.Role), s.jwtSecret)
	if err != nil {
		return nil, utils.NewInternal("failed to issue tokens", err)
	}

	return tokens, nil
}

func (s *authService) GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *authService) ListUsers(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error) {
	return s.userRepo.List(ctx, params)
}

// UpdateUserRole handles the plain role flips. Demoting a dealer runs
// the destructive downgrade cascade instead; callers route that case to
// ApprovalService.CascadeDealerDowngrade.
func (s *authService) UpdateUserRole(ctx context.Context, userID primitive.ObjectID, role models.UserRole) (*models.User, error) {
	if !role.Valid() {
		return nil, utils.NewInvalidInput("unknown role")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}

	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}

	user.Role = role
	return user, nil
}
