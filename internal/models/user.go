package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles
const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

type User struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	Role        string    `json:"role"`
	CurrentPlan string    `json:"current_plan"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the elevated role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type CreateUserRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=64"`
	Email       string `json:"email" validate:"required,email"`
	FullName    string `json:"full_name" validate:"required,max=120"`
	Role        string `json:"role" validate:"omitempty,oneof=user manager admin"`
	CurrentPlan string `json:"current_plan" validate:"omitempty,oneof=hourly daily weekly monthly"`
}

type UpdateUserRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,min=1,max=120"`
	Email       *string `json:"email" validate:"omitempty,email"`
	CurrentPlan *string `json:"current_plan"`
}

// ProfileUpdate carries name and email changes that must be written in the
// same transaction as a plan change.
type ProfileUpdate struct {
	FullName string
	Email    string
}

type ChangePlanRequest struct {
	PlanType string `json:"plan_type"`
}
