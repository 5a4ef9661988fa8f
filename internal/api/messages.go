package api

import "time"

type RegisterRequest struct {
	Email           string `json:"email" validate:"required,max=255"`
	Password        string `json:"password" validate:"required,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	Name            string `json:"name" validate:"required,min=3,max=50"`
	PersonalityType string `json:"personality_type" validate:"max=20"`
}

type LoginRequest struct {
	Credential string `json:"credential" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ValidateTokenRequest struct {
	Token string `json:"token"`
}

type UpdateProfileRequest struct {
	UID             string  `json:"uid" validate:"omitempty,uuid"`
	Email           *string `json:"email,omitempty" validate:"omitempty,max=255"`
	Password        *string `json:"password,omitempty" validate:"omitempty,max=72"`
	Name            *string `json:"name,omitempty" validate:"omitempty,min=3,max=50"`
	PersonalityType *string `json:"personality_type,omitempty" validate:"omitempty,max=20"`
}

type GetProfileRequest struct {
	Email string `json:"email" validate:"required"`
}

type MeRequest struct{}

// Account is the public view of a registered account. It never carries the password hash.
type Account struct {
	UID             string     `json:"uid"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PersonalityType string     `json:"personality_type"`
	IsActive        bool       `json:"is_active"`
	IsVerified      bool       `json:"is_verified"`
	CreatedAt       time.Time  `json:"created_at"`
	LastLogin       *time.Time `json:"last_login"`
}

type TokenResponse struct {
	UID          string `json:"uid,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type ValidateTokenResponse struct {
	Valid   bool   `json:"valid"`
	Email   string `json:"email,omitempty"`
	UID     string `json:"uid,omitempty"`
	Message string `json:"message"`
}
