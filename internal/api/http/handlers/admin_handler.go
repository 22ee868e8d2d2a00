package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront/internal/api/dto"
	"github.com/spec-kit/storefront/internal/auth"
	"github.com/spec-kit/storefront/internal/service"
	apperrors "github.com/spec-kit/storefront/pkg/util/errorutil"
)

// AdminHandler exposes the administrator endpoints.
type AdminHandler struct {
	auth      *service.AuthService
	validator *RequestValidator
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService, validator *RequestValidator) *AdminHandler {
	return &AdminHandler{auth: authService, validator: validator}
}

// Login handles POST /api/user/adminLogin.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := h.validator.Validate(req); err != nil {
		return err
	}

	session, err := h.auth.LoginAdmin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return apperrors.NewUnauthorized(err.Error())
		}
		return apperrors.MapError(err)
	}

	return c.JSON(dto.NewAuthResponse("Admin login successful", nil, session.Pair))
}

// Session handles GET /api/admin/session.
func (h *AdminHandler) Session(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || !principal.IsAdmin() {
		return apperrors.NewUnauthorized("admin access required")
	}
	return c.JSON(dto.AdminSessionResponse{Subject: principal.Subject, Role: string(principal.Kind)})
}
