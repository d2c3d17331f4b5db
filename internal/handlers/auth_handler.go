package handlers

import (
	"carxpress/internal/middleware"
	"carxpress/internal/models"
	"carxpress/internal/services"
	"carxpress/internal/utils"
	"carxpress/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuthHandler struct {
	authService     services.AuthService
	approvalService services.ApprovalService
}

func NewAuthHandler(authService services.AuthService, approvalService services.ApprovalService) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		approvalService: approvalService,
	}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var request validators.SignupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateSignup(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToDetails())
		return
	}

	response, err := h.authService.Signup(c.Request.Context(), request.Username, request.Password)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Account created", response)
}

func (h *AuthHandler) Signin(c *gin.Context) {
	var request validators.SigninRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	response, err := h.authService.Signin(c.Request.Context(), request.Username, request.Password)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Signed in", response)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var request struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	tokens, err := h.authService.Refresh(c.Request.Context(), request.RefreshToken)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Tokens refreshed", tokens)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile retrieved", user)
}

// Admin user management

func (h *AuthHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.authService.ListUsers(c.Request.Context(), params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Users retrieved", users, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// UpdateUserRole flips a user's role. Demoting a dealer runs the full
// downgrade cascade.
func (h *AuthHandler) UpdateUserRole(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	var request validators.UserRoleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToDetails())
		return
	}

	if models.UserRole(request.Role) == models.UserRoleUser {
		current, err := h.authService.GetUser(c.Request.Context(), userID)
		if err != nil {
			utils.AppErrorResponse(c, err)
			return
		}
		if current.Role == models.UserRoleDealer {
			result, err := h.approvalService.CascadeDealerDowngrade(c.Request.Context(), userID)
			if err != nil {
				utils.AppErrorResponse(c, err)
				return
			}
			utils.SuccessResponse(c, "Dealer downgraded", result)
			return
		}
	}

	user, err := h.authService.UpdateUserRole(c.Request.Context(), userID, models.UserRole(request.Role))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Role updated", user)
}

// DeleteUser removes a user and cascades over every record tied to
// them.
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	result, err := h.approvalService.CascadeUserDeletion(c.Request.Context(), userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "User deleted", result)
}
