package dto

import (
	"time"

	"github.com/voteguard/voteguard-api/internal/models"
)

// RegisterRequest is the aggregated registration wizard payload. The server
// re-validates every step because the client state machine cannot be trusted.
type RegisterRequest struct {
	Name             string   `json:"name" validate:"required,min=2,max=255"`
	Email            string   `json:"email" validate:"required,email"`
	Phone            string   `json:"phone" validate:"required,min=7,max=32"`
	Password         string   `json:"password" validate:"required,min=8"`
	ConfirmPassword  string   `json:"confirm_password" validate:"required"`
	Role             string   `json:"role" validate:"required,oneof=voter admin superadmin"`
	SecurityAnswers  []string `json:"security_answers"`
	IDDocumentNumber string   `json:"id_document_number"`
	BiometricConsent bool     `json:"biometric_consent"`
}

// LoginRequest authenticates an existing user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SendOTPRequest asks for a one-time code on one channel.
type SendOTPRequest struct {
	Channel     string `json:"channel" validate:"required,oneof=email sms"`
	Destination string `json:"destination" validate:"required"`
}

// VerifyOTPRequest submits a code for checking.
type VerifyOTPRequest struct {
	Channel     string `json:"channel" validate:"required,oneof=email sms"`
	Destination string `json:"destination" validate:"required"`
	Code        string `json:"code" validate:"required,len=6"`
}

// UserResponse serializes an authenticated user.
type UserResponse struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Status      string     `json:"status"`
	Roles       []string   `json:"roles"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AuthResponse carries the session token alongside the user profile.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// NewUserResponse maps a user model to its response shape.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Phone:       user.Phone,
		Status:      user.Status,
		Roles:       user.RoleNames(),
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
