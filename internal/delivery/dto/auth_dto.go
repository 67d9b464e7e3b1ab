package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// RegisterRequest carries the signup form. The profile picture travels as a
// separate multipart file part.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Age      int    `json:"age" validate:"gte=0,lte=150"`
	Gender   string `json:"gender" validate:"required,oneof=Male Female Other"`
	Address  string `json:"address" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin patient"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int64         `json:"expires_in"`
	User         *UserResponse `json:"user,omitempty"`
}

type UserResponse struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Name           string    `json:"name"`
	Age            int       `json:"age"`
	Gender         string    `json:"gender"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	Address        string    `json:"address"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}
