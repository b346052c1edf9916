package auth

import (
	"github.com/mfigueroa/openshelf-backend/internal/profiles"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the token pair and account produced by a login.
type LoginResponse struct {
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	User         *profiles.ProfileDTO `json:"user"`
}

// RegisterRequest contains the self-service signup payload. Accounts start as
// students; staff roles are assigned by an admin afterwards.
type RegisterRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
}

// RegisterResponse returns the new account. The verification token rides in
// the response until an outbound mailer delivers it instead.
type RegisterResponse struct {
	User              *profiles.ProfileDTO `json:"user"`
	VerificationToken string               `json:"verification_token"`
}
