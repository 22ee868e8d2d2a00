package dto

// AdminLoginRequest payload.
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AdminSessionResponse describes the authenticated administrator.
type AdminSessionResponse struct {
	Subject string `json:"subject"`
	Role    string `json:"role"`
}
