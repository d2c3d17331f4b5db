package validators

import (
	"carxpress/internal/utils"
)

type RentalCreateRequest struct {
	StartDate string `json:"start_date" validate:"required,booking_date"`
	EndDate   string `json:"end_date" validate:"required,booking_date"`
	UserPhone string `json:"user_phone" validate:"required,bahrain_phone"`
}

type RentalStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected completed"`
}

func ValidateRentalCreate(req *RentalCreateRequest) ValidationErrors {
	errors := ValidateStruct(req)
	if len(errors) > 0 {
		return errors
	}

	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return errors
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		return errors
	}

	if end.Before(start) {
		errors = append(errors, ValidationError{
			Field:   "end_date",
			Message: "End date must not precede start date",
		})
	}

	if utils.InclusiveDays(start, end) > utils.MaxRentalDays {
		errors = append(errors, ValidationError{
			Field:   "end_date",
			Message: "Booking window exceeds the maximum rental length",
		})
	}

	return errors
}
