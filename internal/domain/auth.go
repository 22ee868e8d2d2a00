package domain

import "time"

// TokenKind tags a credential token with the operation allowed to consume it.
type TokenKind int

const (
	// TokenKindAccess authorizes individual API calls. It carries no type claim on the wire.
	TokenKindAccess TokenKind = iota
	// TokenKindRefresh can only be exchanged for a new credential pair.
	TokenKindRefresh
)

func (k TokenKind) String() string {
	switch k {
	case TokenKindAccess:
		return "access"
	case TokenKindRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// TokenPayload is the decoded content of a credential token.
type TokenPayload struct {
	Subject   string
	Kind      TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// CredentialPair is what a client holds for one authenticated session.
type CredentialPair struct {
	AccessToken  string
	RefreshToken string
	// ExpiresIn is the human readable access token lifetime, e.g. "1d".
	ExpiresIn string
}

// PrincipalKind differentiates customers from the store administrator.
type PrincipalKind string

const (
	PrincipalKindUser  PrincipalKind = "USER"
	PrincipalKindAdmin PrincipalKind = "ADMIN"
)

// Principal is the identity a verified token resolves to.
type Principal struct {
	Kind    PrincipalKind
	Subject string
	User    *User
}

// IsAdmin reports whether the principal is the store administrator.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Kind == PrincipalKindAdmin
}
