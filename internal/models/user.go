package models

import "time"

// Role separates the two sides of the marketplace.
const (
	RolePassenger = "passenger"
	RoleDriver    = "driver"
)

// User is a registered account, either a passenger or a driver.
type User struct {
	ID             string    `json:"id" db:"id"` // UUID string from DB
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	Phone          string    `json:"phone,omitempty" db:"phone"`
	Role           string    `json:"role" db:"role"`
	AvatarURL      string    `json:"avatar_url,omitempty" db:"avatar_url"`
	AuthProvider   string    `json:"auth_provider" db:"auth_provider"`
	AuthProviderID string    `json:"-" db:"auth_provider_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,e164"`
	Role     string `json:"role" validate:"required,oneof=passenger driver"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}

// UserUpdateData defines fields that can be updated for a user profile.
type UserUpdateData struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,e164"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}
