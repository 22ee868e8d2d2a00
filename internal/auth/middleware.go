package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront/internal/domain"
	apperrors "github.com/spec-kit/storefront/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// AuthMiddleware validates access tokens and loads principals.
type AuthMiddleware struct {
	verifier *Verifier
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(verifier *Verifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Handle authenticates user-scoped routes, which expect "Authorization: Bearer <token>".
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("access denied, no token provided")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	return m.authenticate(c, parts[1])
}

// HandleAdmin authenticates admin-scoped routes, which expect the bare token as the header value.
// A Bearer prefixed header is not a valid token under this scheme and is rejected.
func (m *AuthMiddleware) HandleAdmin(c *fiber.Ctx) error {
	token := c.Get(fiber.HeaderAuthorization)
	if token == "" {
		return apperrors.NewUnauthorized("access denied, no token provided")
	}
	return m.authenticate(c, token)
}

func (m *AuthMiddleware) authenticate(c *fiber.Ctx, token string) error {
	res := m.verifier.ResolvePrincipal(c.UserContext(), token)
	if !res.Valid {
		return rejection(res.Reason)
	}
	c.Locals(principalKey, res.Principal)
	return c.Next()
}

func rejection(reason error) error {
	switch {
	case errors.Is(reason, ErrMissingToken):
		return apperrors.NewUnauthorized("access denied, no token provided")
	case errors.Is(reason, ErrWrongTokenKind):
		return apperrors.NewUnauthorized("invalid token type")
	case errors.Is(reason, ErrPrincipalNotFound):
		return apperrors.NewUnauthorized("user not found")
	case errors.Is(reason, ErrMalformedToken), errors.Is(reason, ErrInvalidToken):
		return apperrors.NewUnauthorized("invalid or expired token")
	default:
		return apperrors.MapError(reason)
	}
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*domain.Principal)
	return principal, ok
}
