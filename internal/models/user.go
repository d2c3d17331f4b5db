package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	UserRoleUser   UserRole = "user"
	UserRoleDealer UserRole = "dealer"
	UserRoleAdmin  UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleUser, UserRoleDealer, UserRoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username       string             `json:"username" bson:"username" validate:"required,min=3,max=50"`
	HashedPassword string             `json:"-" bson:"hashed_password"`
	Role           UserRole           `json:"role" bson:"role" default:"user"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

func (u *User) IsDealer() bool {
	return u.Role == UserRoleDealer
}
