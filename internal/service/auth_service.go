package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront/internal/auth"
	"github.com/spec-kit/storefront/internal/config"
	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/events"
	"github.com/spec-kit/storefront/internal/repository"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when registering an email already on file.
	ErrEmailTaken = errors.New("user already exists")
)

// Session is the result of a successful login, registration or refresh.
type Session struct {
	User *domain.User
	Pair domain.CredentialPair
}

// AuthService coordinates registration, login and token refresh flows.
type AuthService struct {
	users      repository.UserRepository
	issuer     *auth.Issuer
	verifier   *auth.Verifier
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	admin      config.AuthConfig
	now        func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tokens := deps.Tokens
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret)
	}
	return &AuthService{
		users:      deps.UserRepo,
		issuer:     auth.NewIssuer(tokens),
		verifier:   auth.NewVerifier(tokens, deps.UserRepo, cfg.Auth.AdminID),
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
		admin:      cfg.Auth,
		now:        time.Now,
	}
}

// RegisterUser creates a new customer account and opens a session for it.
func (s *AuthService) RegisterUser(ctx context.Context, name, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.issuer.IssuePair(user.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventUserRegistered, user.ID, domain.PrincipalKindUser, nil)
	return &Session{User: user, Pair: pair}, nil
}

// LoginUser authenticates a customer.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.publish(ctx, events.EventLoginFailed, "", domain.PrincipalKindUser, events.LoginFailedPayload{Email: email})
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.publish(ctx, events.EventLoginFailed, user.ID, domain.PrincipalKindUser, events.LoginFailedPayload{Email: email})
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuer.IssuePair(user.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventUserLoggedIn, user.ID, domain.PrincipalKindUser, nil)
	return &Session{User: user, Pair: pair}, nil
}

// LoginAdmin authenticates the store administrator against the configured credentials.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (*Session, error) {
	if s.admin.AdminEmail == "" || s.admin.AdminPassword == "" {
		return nil, ErrInvalidCredentials
	}
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.admin.AdminEmail)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.AdminPassword)) == 1
	if !emailOK || !passwordOK {
		s.publish(ctx, events.EventLoginFailed, "", domain.PrincipalKindAdmin, events.LoginFailedPayload{Email: email, Admin: true})
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuer.IssuePair(s.admin.AdminID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventAdminLoggedIn, s.admin.AdminID, domain.PrincipalKindAdmin, nil)
	return &Session{Pair: pair}, nil
}

// Refresh exchanges a refresh token for a brand new pair.
//
// The steps run in order and every rejection returns before anything is minted:
// missing token, invalid signature or expiry, wrong kind, unknown principal.
// The presented refresh token is not revoked; it stays usable until its own expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	res := s.verifier.Resolve(ctx, refreshToken, domain.TokenKindRefresh)
	if !res.Valid {
		err := refreshRejection(res.Reason)
		s.publish(ctx, events.EventRefreshRejected, "", "", events.RefreshRejectedPayload{Reason: err.Error()})
		return nil, err
	}

	pair, err := s.issuer.IssuePair(res.Principal.Subject)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventSessionRefreshed, res.Principal.Subject, res.Principal.Kind, nil)
	return &Session{User: res.Principal.User, Pair: pair}, nil
}

// refreshRejection reports malformed tokens as invalid ones; other reasons pass through.
func refreshRejection(reason error) error {
	if errors.Is(reason, auth.ErrMalformedToken) {
		return fmt.Errorf("%w: %v", auth.ErrInvalidToken, reason)
	}
	return reason
}

// Verifier exposes the token verifier for middleware usage.
func (s *AuthService) Verifier() *auth.Verifier {
	return s.verifier
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, subject string, kind domain.PrincipalKind, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Principal: kind,
		Timestamp: s.now().UTC(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("auth event handler failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}
