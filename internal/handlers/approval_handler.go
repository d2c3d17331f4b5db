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

type ApprovalHandler struct {
	approvalService services.ApprovalService
}

func NewApprovalHandler(approvalService services.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{
		approvalService: approvalService,
	}
}

// RequestDealer files a dealer-role request for the caller.
func (h *ApprovalHandler) RequestDealer(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request validators.ApprovalCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateApprovalCreate(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToDetails())
		return
	}

	approval, err := h.approvalService.RequestDealer(c.Request.Context(), userID, request.Phone, request.Description)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Approval requested", approval)
}

func (h *ApprovalHandler) GetApproval(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	role, _ := middleware.CurrentUserRole(c)

	approvalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid approval ID")
		return
	}

	approval, err := h.approvalService.Get(c.Request.Context(), userID, role, approvalID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Approval retrieved", approval)
}

func (h *ApprovalHandler) MyRequests(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	approvals, err := h.approvalService.MyRequests(c.Request.Context(), userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Approval requests retrieved", approvals)
}

// ListApprovals is the admin review queue; ?status= filters it.
func (h *ApprovalHandler) ListApprovals(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	status := models.ApprovalStatus(c.Query("status"))

	approvals, total, err := h.approvalService.List(c.Request.Context(), status, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Approvals retrieved", approvals, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// ReviewApproval decides a pending request: approve or reject.
func (h *ApprovalHandler) ReviewApproval(c *gin.Context) {
	adminID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	approvalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid approval ID")
		return
	}

	var request validators.ApprovalStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToDetails())
		return
	}

	approval, err := h.approvalService.Review(c.Request.Context(), adminID, approvalID,
		models.ApprovalStatus(request.Status))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Approval reviewed", approval)
}

// DowngradeDealer runs the destructive dealer downgrade cascade.
func (h *ApprovalHandler) DowngradeDealer(c *gin.Context) {
	dealerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid dealer ID")
		return
	}

	result, err := h.approvalService.CascadeDealerDowngrade(c.Request.Context(), dealerID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Dealer downgraded", result)
}
