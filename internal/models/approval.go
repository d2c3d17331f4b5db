package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected:
		return true
	}
	return false
}

// Approval tracks one dealer-role request. A user holds at most one
// pending approval; approved/rejected are terminal.
type Approval struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID      primitive.ObjectID  `json:"user_id" bson:"user_id" validate:"required"`
	Phone       string              `json:"phone" bson:"phone" validate:"required"`
	Description string              `json:"description" bson:"description" validate:"required"`
	Status      ApprovalStatus      `json:"status" bson:"status" default:"pending"`
	AdminID     *primitive.ObjectID `json:"admin_id,omitempty" bson:"admin_id,omitempty"`
	ApprovedAt  *time.Time          `json:"approved_at,omitempty" bson:"approved_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" bson:"updated_at"`
}
