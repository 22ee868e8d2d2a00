package auth

import (
	"time"

	"github.com/spec-kit/storefront/internal/domain"
)

const (
	// AccessTokenLifetime is fixed; callers cannot mint longer lived access tokens.
	AccessTokenLifetime = 24 * time.Hour
	// RefreshTokenLifetime is fixed at seven days.
	RefreshTokenLifetime = 7 * 24 * time.Hour
	// AccessTokenExpiresIn is the lifetime reported to clients.
	AccessTokenExpiresIn = "1d"
)

// Issuer mints access/refresh pairs after a successful login, registration or refresh.
type Issuer struct {
	tokens *TokenManager
}

// NewIssuer builds an issuer on top of the token manager.
func NewIssuer(tokens *TokenManager) *Issuer {
	return &Issuer{tokens: tokens}
}

// IssuePair always issues both tokens with the fixed lifetimes.
func (i *Issuer) IssuePair(subject string) (domain.CredentialPair, error) {
	access, err := i.tokens.Issue(subject, domain.TokenKindAccess, AccessTokenLifetime)
	if err != nil {
		return domain.CredentialPair{}, err
	}
	refresh, err := i.tokens.Issue(subject, domain.TokenKindRefresh, RefreshTokenLifetime)
	if err != nil {
		return domain.CredentialPair{}, err
	}
	return domain.CredentialPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    AccessTokenExpiresIn,
	}, nil
}
