package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/storefront/internal/domain"
)

const refreshTypeClaim = "refresh"

// TokenManager issues and parses HS256 signed tokens with one process-wide secret.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

// Option customizes a TokenManager.
type Option func(*TokenManager)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(tm *TokenManager) {
		if now != nil {
			tm.now = now
		}
	}
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, opts ...Option) *TokenManager {
	tm := &TokenManager{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// Claims describes the JWT payload. Access tokens leave Type empty.
type Claims struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// Kind maps the wire type claim onto the tagged token kind.
func (c *Claims) Kind() domain.TokenKind {
	if c.Type == refreshTypeClaim {
		return domain.TokenKindRefresh
	}
	return domain.TokenKindAccess
}

func (c *Claims) payload() *domain.TokenPayload {
	p := &domain.TokenPayload{Subject: c.ID, Kind: c.Kind()}
	if c.IssuedAt != nil {
		p.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p
}

// Issue signs a token for subject valid for lifetime from now.
func (tm *TokenManager) Issue(subject string, kind domain.TokenKind, lifetime time.Duration) (string, error) {
	if lifetime <= 0 {
		return "", ErrInvalidLifetime
	}
	if strings.TrimSpace(subject) == "" {
		return "", errors.New("token subject must not be empty")
	}

	now := tm.now()
	claims := &Claims{
		ID: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}
	if kind == domain.TokenKindRefresh {
		claims.Type = refreshTypeClaim
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Decode parses a token without checking its signature or expiry.
// The result must never be used for trust decisions.
func (tm *TokenManager) Decode(tokenStr string) (*domain.TokenPayload, error) {
	return DecodeUnverified(tokenStr)
}

// DecodeUnverified parses the payload of a token without any key.
func DecodeUnverified(tokenStr string) (*domain.TokenPayload, error) {
	if tokenStr == "" {
		return nil, ErrMalformedToken
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return claims.payload(), nil
}

// ParseToken validates signature and expiry and returns the claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMissingToken
	}
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	if claims.Type != "" && claims.Type != refreshTypeClaim {
		return nil, fmt.Errorf("%w: unknown token type %q", ErrInvalidToken, claims.Type)
	}
	return claims, nil
}

// Verification is the outcome of Verify. Callers branch on Valid.
type Verification struct {
	Valid   bool
	Payload *domain.TokenPayload
	Reason  error
}

// Verify checks signature and expiry. It never fails; the reason is carried in the result.
func (tm *TokenManager) Verify(tokenStr string) Verification {
	claims, err := tm.ParseToken(tokenStr)
	if err != nil {
		return Verification{Valid: false, Reason: err}
	}
	return Verification{Valid: true, Payload: claims.payload()}
}
