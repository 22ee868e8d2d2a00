package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront/internal/api/dto"
	"github.com/spec-kit/storefront/internal/auth"
	"github.com/spec-kit/storefront/internal/service"
	apperrors "github.com/spec-kit/storefront/pkg/util/errorutil"
)

// UsersHandler exposes auth endpoints for customers.
type UsersHandler struct {
	auth      *service.AuthService
	validator *RequestValidator
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, validator *RequestValidator) *UsersHandler {
	return &UsersHandler{auth: authService, validator: validator}
}

// Register handles POST /api/user/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := h.validator.Validate(req); err != nil {
		return err
	}

	session, err := h.auth.RegisterUser(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return apperrors.NewConflict(err.Error(), nil)
		}
		return apperrors.MapError(err)
	}

	return c.Status(http.StatusCreated).JSON(dto.NewAuthResponse("User created successfully", session.User, session.Pair))
}

// Login handles POST /api/user/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := h.validator.Validate(req); err != nil {
		return err
	}

	session, err := h.auth.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return apperrors.NewUnauthorized(err.Error())
		}
		return apperrors.MapError(err)
	}

	return c.JSON(dto.NewAuthResponse("Login successful", session.User, session.Pair))
}

// Refresh handles POST /api/user/refresh.
func (h *UsersHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewBadRequest("invalid payload")
		}
	}

	session, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return refreshError(err)
	}

	return c.JSON(dto.NewAuthResponse("Token refreshed successfully", nil, session.Pair))
}

// Profile handles GET /api/user/profile.
func (h *UsersHandler) Profile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"user": dto.NewUserResponse(principal.User)})
}

func refreshError(err error) error {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return apperrors.NewUnauthorized("refresh token required")
	case errors.Is(err, auth.ErrWrongTokenKind):
		return apperrors.NewUnauthorized("invalid token type")
	case errors.Is(err, auth.ErrPrincipalNotFound):
		return apperrors.NewUnauthorized("user not found")
	case errors.Is(err, auth.ErrInvalidToken):
		return apperrors.NewUnauthorized("invalid refresh token")
	default:
		return apperrors.NewInternalError(err)
	}
}
