package models

// Account event types published after successful account operations.
const (
	EventUserRegistered = "user.registered"
	EventUserLoggedIn   = "user.logged_in"
	EventUserUpdated    = "user.updated"
	EventUserLoggedOut  = "user.logged_out"
	EventUserDeleted    = "user.deleted"
)

// AccountEvent represents an account lifecycle event sent to Kafka
type AccountEvent struct {
	EventID   string `json:"event_id"`  // Unique event ID
	Type      string `json:"type"`      // One of the Event* constants
	UserID    int64  `json:"user_id"`   // Affected user
	Username  string `json:"username"`  // Affected user's username
	Timestamp int64  `json:"timestamp"` // Unix timestamp
}
