package dto

import "github.com/spec-kit/storefront/internal/domain"

// UserRegisterRequest payload for new customers.
type UserRegisterRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token in the body.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UserResponse is the public view of a customer.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Message      string        `json:"message"`
	User         *UserResponse `json:"user,omitempty"`
	Token        string        `json:"token"`
	RefreshToken string        `json:"refreshToken"`
	ExpiresIn    string        `json:"expiresIn"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{ID: user.ID, Name: user.Name, Email: user.Email}
}

// NewAuthResponse maps an issued pair.
func NewAuthResponse(message string, user *domain.User, pair domain.CredentialPair) AuthResponse {
	return AuthResponse{
		Message:      message,
		User:         NewUserResponse(user),
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}
}
