package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/repository"
)

// Resolution is the outcome of resolving a token to a principal. Callers branch on Valid.
type Resolution struct {
	Valid     bool
	Principal *domain.Principal
	Reason    error
}

// Verifier turns tokens into principals. The principal is looked up on every call.
type Verifier struct {
	tokens  *TokenManager
	users   repository.UserRepository
	adminID string
}

// NewVerifier constructs a verifier. Tokens whose subject equals adminID resolve to the administrator.
func NewVerifier(tokens *TokenManager, users repository.UserRepository, adminID string) *Verifier {
	return &Verifier{tokens: tokens, users: users, adminID: adminID}
}

// ResolvePrincipal resolves an access token.
func (v *Verifier) ResolvePrincipal(ctx context.Context, token string) Resolution {
	return v.Resolve(ctx, token, domain.TokenKindAccess)
}

// Resolve verifies the token, requires it to be of the given kind, then looks up its subject.
// Lookup failures other than a missing principal are reported as is.
func (v *Verifier) Resolve(ctx context.Context, token string, kind domain.TokenKind) Resolution {
	if token == "" {
		return Resolution{Reason: ErrMissingToken}
	}

	verification := v.tokens.Verify(token)
	if !verification.Valid {
		return Resolution{Reason: verification.Reason}
	}
	payload := verification.Payload
	if payload.Kind != kind {
		return Resolution{Reason: fmt.Errorf("%w: want %s, got %s", ErrWrongTokenKind, kind, payload.Kind)}
	}

	principal, err := v.lookup(ctx, payload.Subject)
	if err != nil {
		return Resolution{Reason: err}
	}
	return Resolution{Valid: true, Principal: principal}
}

func (v *Verifier) lookup(ctx context.Context, subject string) (*domain.Principal, error) {
	if v.adminID != "" && subject == v.adminID {
		return &domain.Principal{Kind: domain.PrincipalKindAdmin, Subject: subject}, nil
	}

	user, err := v.users.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("lookup principal: %w", err)
	}
	return &domain.Principal{Kind: domain.PrincipalKindUser, Subject: subject, User: user}, nil
}
