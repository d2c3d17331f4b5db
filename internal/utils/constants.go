package utils

import "time"

// Application Constants
const (
	AppName    = "CarXpress"
	AppVersion = "1.0.0"

	// Default values
	DefaultCurrency    = "BHD"
	DefaultCountryCode = "+973"
	DefaultTimeZone    = "UTC"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL  = 24 * time.Hour
	JWTRefreshTokenTTL = 7 * 24 * time.Hour
	PasswordMinLength  = 8
	PasswordMaxLength  = 128

	// Listing Constants
	MaxListingImages  = 5
	MaxReviewRating   = 5
	MinReviewRating   = 1
	MaxCommentLength  = 1000
	MaxRentalDays     = 90
	DateLayout        = "2006-01-02"

	// File Upload
	MaxImageSize = 5 * 1024 * 1024 // 5MB
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidCredentials = "invalid credentials"
	ErrUserNotFound       = "user not found"
	ErrUserExists         = "user already exists"
	ErrInvalidToken       = "invalid token"
	ErrInvalidInput       = "invalid input"
	ErrInternalServer     = "internal server error"
	ErrUnauthorized       = "unauthorized"
	ErrForbidden          = "forbidden"
	ErrValidationFailed   = "validation failed"
	ErrFileUploadFailed   = "file upload failed"
)

// Cache Keys
const (
	CacheUserPrefix    = "user:"
	CacheCarPrefix     = "car:"
	CacheCatalogPrefix = "catalog:"
	CacheSessionPrefix = "session:"
)

// Event Types
const (
	EventUserRegistered   = "user_registered"
	EventRentalRequested  = "rental_requested"
	EventRentalApproved   = "rental_approved"
	EventRentalRejected   = "rental_rejected"
	EventRentalCompleted  = "rental_completed"
	EventRentalCancelled  = "rental_cancelled"
	EventCarSold          = "car_sold"
	EventDealerApproved   = "dealer_approved"
	EventDealerDowngraded = "dealer_downgraded"
)

// File Types
var AllowedImageTypes = []string{"jpg", "jpeg", "png", "webp"}
