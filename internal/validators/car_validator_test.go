package validators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validCreateRequest() *CarCreateRequest {
	return &CarCreateRequest{
		Brand:       "Toyota",
		Model:       "Corolla",
		Type:        "Sedan",
		Year:        2022,
		Location:    "Manama",
		ListingType: "rent",
		PricePerDay: 25,
		DealerPhone: "+97333123456",
	}
}

func TestValidateCarCreate(t *testing.T) {
	assert.Empty(t, ValidateCarCreate(validCreateRequest()))

	req := validCreateRequest()
	req.Brand = "Yugo"
	assert.NotEmpty(t, ValidateCarCreate(req))

	req = validCreateRequest()
	req.Type = "Rocket"
	assert.NotEmpty(t, ValidateCarCreate(req))

	req = validCreateRequest()
	req.DealerPhone = "12345"
	assert.NotEmpty(t, ValidateCarCreate(req))

	req = validCreateRequest()
	req.ListingType = "lease"
	assert.NotEmpty(t, ValidateCarCreate(req))
}

func TestValidateCarCreateModelYear(t *testing.T) {
	req := validCreateRequest()
	req.Year = 1999
	assert.NotEmpty(t, ValidateCarCreate(req))

	req = validCreateRequest()
	req.Year = time.Now().Year() + 1
	assert.NotEmpty(t, ValidateCarCreate(req))

	req = validCreateRequest()
	req.Year = time.Now().Year()
	assert.Empty(t, ValidateCarCreate(req))
}

func TestValidateCarCreatePriceMatchesListingKind(t *testing.T) {
	// A rental listing needs a daily price, a sale listing a sale price.
	req := validCreateRequest()
	req.PricePerDay = 0
	errs := ValidateCarCreate(req)
	assert.NotEmpty(t, errs)
	assert.Contains(t, errs.ToDetails(), "price_per_day")

	req = validCreateRequest()
	req.ListingType = "sale"
	req.PricePerDay = 0
	errs = ValidateCarCreate(req)
	assert.NotEmpty(t, errs)
	assert.Contains(t, errs.ToDetails(), "sale_price")

	req.SalePrice = 15000
	assert.Empty(t, ValidateCarCreate(req))
}

func TestValidateCarUpdateSkipsOmittedFields(t *testing.T) {
	assert.Empty(t, ValidateCarUpdate(&CarUpdateRequest{}))

	assert.Empty(t, ValidateCarUpdate(&CarUpdateRequest{Location: "Riffa"}))

	errs := ValidateCarUpdate(&CarUpdateRequest{Year: 1985})
	assert.NotEmpty(t, errs)

	// Switching listing kind re-triggers the price rule.
	errs = ValidateCarUpdate(&CarUpdateRequest{ListingType: "sale"})
	assert.NotEmpty(t, errs)
	assert.Empty(t, ValidateCarUpdate(&CarUpdateRequest{ListingType: "sale", SalePrice: 9000}))
}
