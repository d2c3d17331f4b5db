package validators

import (
	"time"

	"carxpress/internal/models"
)

type CarCreateRequest struct {
	Brand        string  `form:"brand" json:"brand" validate:"required,car_brand"`
	Model        string  `form:"model" json:"model" validate:"omitempty,max=50"`
	Type         string  `form:"type" json:"type" validate:"omitempty,car_type"`
	Year         int     `form:"year" json:"year" validate:"required"`
	Location     string  `form:"location" json:"location" validate:"omitempty,max=100"`
	Mileage      float64 `form:"mileage" json:"mileage" validate:"omitempty,min=0"`
	ListingType  string  `form:"listing_type" json:"listing_type" validate:"required,oneof=rent sale"`
	PricePerDay  float64 `form:"price_per_day" json:"price_per_day" validate:"omitempty,min=0"`
	SalePrice    float64 `form:"sale_price" json:"sale_price" validate:"omitempty,min=0"`
	IsCompatible bool    `form:"is_compatible" json:"is_compatible"`
	DealerPhone  string  `form:"dealer_phone" json:"dealer_phone" validate:"required,bahrain_phone"`
}

type CarUpdateRequest struct {
	Brand        string   `form:"brand" json:"brand" validate:"omitempty,car_brand"`
	Model        string   `form:"model" json:"model" validate:"omitempty,max=50"`
	Type         string   `form:"type" json:"type" validate:"omitempty,car_type"`
	Year         int      `form:"year" json:"year" validate:"omitempty"`
	Location     string   `form:"location" json:"location" validate:"omitempty,max=100"`
	Mileage      float64  `form:"mileage" json:"mileage" validate:"omitempty,min=0"`
	ListingType  string   `form:"listing_type" json:"listing_type" validate:"omitempty,oneof=rent sale"`
	PricePerDay  float64  `form:"price_per_day" json:"price_per_day" validate:"omitempty,min=0"`
	SalePrice    float64  `form:"sale_price" json:"sale_price" validate:"omitempty,min=0"`
	IsCompatible *bool    `form:"is_compatible" json:"is_compatible"`
	DealerPhone  string   `form:"dealer_phone" json:"dealer_phone" validate:"omitempty,bahrain_phone"`
	RemoveKeys   []string `form:"remove_keys" json:"remove_keys"`
}

type ReviewCreateRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=1000"`
}

func ValidateCarCreate(req *CarCreateRequest) ValidationErrors {
	errors := ValidateStruct(req)

	errors = append(errors, validateModelYear(req.Year)...)
	errors = append(errors, validateListingPrice(req.ListingType, req.PricePerDay, req.SalePrice)...)

	return errors
}

func ValidateCarUpdate(req *CarUpdateRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if req.Year != 0 {
		errors = append(errors, validateModelYear(req.Year)...)
	}
	if req.ListingType != "" {
		errors = append(errors, validateListingPrice(req.ListingType, req.PricePerDay, req.SalePrice)...)
	}

	return errors
}

func validateModelYear(year int) ValidationErrors {
	var errors ValidationErrors

	if year < models.MinModelYear || year > time.Now().Year() {
		errors = append(errors, ValidationError{
			Field:   "year",
			Message: "Model year is outside the accepted range",
		})
	}

	return errors
}

// validateListingPrice enforces the price-per-day XOR sale-price rule:
// a rental listing carries a daily price, a sale listing a sale price.
func validateListingPrice(listingType string, pricePerDay, salePrice float64) ValidationErrors {
	var errors ValidationErrors

	switch listingType {
	case "rent":
		if pricePerDay <= 0 {
			errors = append(errors, ValidationError{
				Field:   "price_per_day",
				Message: "Rental listings require a positive daily price",
			})
		}
	case "sale":
		if salePrice <= 0 {
			errors = append(errors, ValidationError{
				Field:   "sale_price",
				Message: "Sale listings require a positive sale price",
			})
		}
	}

	return errors
}
