package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CarAvailability string
type CarBrand string
type CarType string

const (
	CarAvailable   CarAvailability = "available"
	CarRented      CarAvailability = "rented"
	CarUnavailable CarAvailability = "unavailable"
)

const (
	CarTypeSUV         CarType = "SUV"
	CarTypeSedan       CarType = "Sedan"
	CarTypeTruck       CarType = "Truck"
	CarTypeOffRoad     CarType = "Off-Road"
	CarTypeConvertible CarType = "Convertible"
	CarTypeHatchback   CarType = "Hatchback"
	CarTypeLuxury      CarType = "Luxury"
	CarTypeElectric    CarType = "Electric"
	CarTypeSports      CarType = "Sports"
	CarTypeVan         CarType = "Van"
	CarTypeMuscle      CarType = "Muscle"
	CarTypeCoupe       CarType = "Coupe"
	CarTypeHybrid      CarType = "Hybrid"
)

// MinModelYear is the oldest model year accepted for a listing.
const MinModelYear = 2000

var CarBrands = []CarBrand{
	"Toyota", "Honda", "Ford", "Chevrolet", "BMW",
	"Mercedes-Benz", "Audi", "Volkswagen", "Hyundai", "Kia",
	"Nissan", "Tesla", "Lexus", "Mazda", "Subaru",
	"Jeep", "Dodge", "GMC", "Porsche", "Land Rover",
}

var CarTypes = []CarType{
	CarTypeSUV, CarTypeSedan, CarTypeTruck, CarTypeOffRoad,
	CarTypeConvertible, CarTypeHatchback, CarTypeLuxury, CarTypeElectric,
	CarTypeSports, CarTypeVan, CarTypeMuscle, CarTypeCoupe, CarTypeHybrid,
}

func (b CarBrand) Valid() bool {
	for _, known := range CarBrands {
		if b == known {
			return true
		}
	}
	return false
}

func (t CarType) Valid() bool {
	for _, known := range CarTypes {
		if t == known {
			return true
		}
	}
	return false
}

// CarImage is one stored listing photo: public URL plus the storage
// handle used for deletion.
type CarImage struct {
	URL string `json:"url" bson:"url"`
	Key string `json:"key" bson:"key"`
}

type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Rating    int                `json:"rating" bson:"rating" validate:"required,min=1,max=5"`
	Comment   string             `json:"comment" bson:"comment"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Car is a marketplace listing. PricePerDay is set for rental listings,
// SalePrice for sale listings (ForSale decides which). A sold car keeps
// ForSale=false, Availability=unavailable and BuyerID set, permanently.
type Car struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	DealerID     primitive.ObjectID   `json:"dealer_id" bson:"dealer_id" validate:"required"`
	Brand        CarBrand             `json:"brand" bson:"brand" validate:"required"`
	Model        string               `json:"model" bson:"model"`
	Type         CarType              `json:"type" bson:"type"`
	Year         int                  `json:"year" bson:"year" validate:"required"`
	Location     string               `json:"location" bson:"location"`
	Mileage      float64              `json:"mileage" bson:"mileage"`
	PricePerDay  float64              `json:"price_per_day,omitempty" bson:"price_per_day,omitempty"`
	SalePrice    float64              `json:"sale_price,omitempty" bson:"sale_price,omitempty"`
	ForSale      bool                 `json:"for_sale" bson:"for_sale" default:"false"`
	IsSold       bool                 `json:"is_sold" bson:"is_sold" default:"false"`
	BuyerID      *primitive.ObjectID  `json:"buyer_id,omitempty" bson:"buyer_id,omitempty"`
	Availability CarAvailability      `json:"availability" bson:"availability" default:"available"`
	IsCompatible bool                 `json:"is_compatible" bson:"is_compatible" default:"false"`
	DealerPhone  string               `json:"dealer_phone" bson:"dealer_phone"`
	Images       []CarImage           `json:"images" bson:"images"`
	Rentals      []primitive.ObjectID `json:"rentals" bson:"rentals"`
	Reviews      []Review             `json:"reviews" bson:"reviews"`
	CreatedAt    time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at" bson:"updated_at"`
}
