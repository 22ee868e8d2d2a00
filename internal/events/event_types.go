package events

import (
	"time"

	"github.com/spec-kit/storefront/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered   EventType = "user_registered"
	EventUserLoggedIn     EventType = "user_logged_in"
	EventAdminLoggedIn    EventType = "admin_logged_in"
	EventLoginFailed      EventType = "login_failed"
	EventSessionRefreshed EventType = "session_refreshed"
	EventRefreshRejected  EventType = "refresh_rejected"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string               `json:"id"`
	Type      EventType            `json:"type"`
	Subject   string               `json:"subject,omitempty"`
	Principal domain.PrincipalKind `json:"principal,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   interface{}          `json:"payload,omitempty"`
}

// LoginFailedPayload payload.
type LoginFailedPayload struct {
	Email string `json:"email"`
	Admin bool   `json:"admin"`
}

// RefreshRejectedPayload payload.
type RefreshRejectedPayload struct {
	Reason string `json:"reason"`
}
