package auth

import "errors"

var (
	// ErrMissingToken is returned when no token was presented.
	ErrMissingToken = errors.New("missing token")
	// ErrMalformedToken is returned when the input is not a well-formed signed token.
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidToken covers bad signatures, expired tokens and otherwise unusable claims.
	ErrInvalidToken = errors.New("invalid signature or expired token")
	// ErrWrongTokenKind is returned when an access token is used where a refresh token is required, or the reverse.
	ErrWrongTokenKind = errors.New("wrong token kind")
	// ErrPrincipalNotFound is returned when a valid token's subject no longer resolves.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrInvalidLifetime is returned when a token is requested with a non-positive lifetime.
	ErrInvalidLifetime = errors.New("token lifetime must be positive")
)
