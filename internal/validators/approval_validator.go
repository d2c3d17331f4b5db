package validators

type ApprovalCreateRequest struct {
	Phone       string `json:"phone" validate:"required,bahrain_phone"`
	Description string `json:"description" validate:"required,min=10,max=500"`
}

type ApprovalStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

type UserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin dealer user"`
}

func ValidateApprovalCreate(req *ApprovalCreateRequest) ValidationErrors {
	return ValidateStruct(req)
}
