package events

import "time"

// EventType labels audit events emitted by the auth layer.
type EventType string

const (
	EventUserRegistered EventType = "auth.user_registered"
	EventUserLoggedIn   EventType = "auth.user_logged_in"
	EventUserLoggedOut  EventType = "auth.user_logged_out"
	EventTokenRevoked   EventType = "auth.token_revoked"
)

// Event is an audit record published into the in-process dispatcher.
type Event struct {
	Type       EventType
	UserID     string
	Email      string
	Provider   string
	OccurredAt time.Time
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType EventType, userID, email, provider string) Event {
	return Event{
		Type:       eventType,
		UserID:     userID,
		Email:      email,
		Provider:   provider,
		OccurredAt: time.Now(),
	}
}
