package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusApproved  RentalStatus = "approved"
	RentalStatusRejected  RentalStatus = "rejected"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusCancelled RentalStatus = "cancelled"
)

func (s RentalStatus) Valid() bool {
	switch s {
	case RentalStatusPending, RentalStatusApproved, RentalStatusRejected,
		RentalStatusCompleted, RentalStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s RentalStatus) Terminal() bool {
	switch s {
	case RentalStatusRejected, RentalStatusCompleted, RentalStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo encodes the rental state machine:
//
//	pending  -> approved | rejected | cancelled
//	approved -> completed | rejected | cancelled
func (s RentalStatus) CanTransitionTo(target RentalStatus) bool {
	switch s {
	case RentalStatusPending:
		return target == RentalStatusApproved || target == RentalStatusRejected || target == RentalStatusCancelled
	case RentalStatusApproved:
		return target == RentalStatusCompleted || target == RentalStatusRejected || target == RentalStatusCancelled
	}
	return false
}

// Rental is one booking request against a car. Dates are day-granular;
// TotalPrice is the inclusive day count times the car's PricePerDay at
// request time.
type Rental struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID     primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	CarID      primitive.ObjectID `json:"car_id" bson:"car_id" validate:"required"`
	StartDate  time.Time          `json:"start_date" bson:"start_date" validate:"required"`
	EndDate    time.Time          `json:"end_date" bson:"end_date" validate:"required"`
	TotalPrice float64            `json:"total_price" bson:"total_price"`
	Status     RentalStatus       `json:"status" bson:"status" default:"pending"`
	UserPhone  string             `json:"user_phone" bson:"user_phone"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

// Days returns the inclusive day count of the booking window;
// StartDate == EndDate counts as one day.
func (r *Rental) Days() int {
	return int(r.EndDate.Sub(r.StartDate).Hours()/24) + 1
}
