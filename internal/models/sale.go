package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Sale is the immutable record of a completed purchase. It is written
// exactly once per car and never updated; PaymentStatus is recorded as
// reported, not enforced.
type Sale struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CarID         primitive.ObjectID `json:"car_id" bson:"car_id" validate:"required"`
	DealerID      primitive.ObjectID `json:"dealer_id" bson:"dealer_id" validate:"required"`
	BuyerID       primitive.ObjectID `json:"buyer_id" bson:"buyer_id" validate:"required"`
	SalePrice     float64            `json:"sale_price" bson:"sale_price" validate:"required"`
	PaymentStatus PaymentStatus      `json:"payment_status" bson:"payment_status" default:"pending"`
	SoldAt        time.Time          `json:"sold_at" bson:"sold_at"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
}
