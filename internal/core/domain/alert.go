package domain

import "time"

// DefaultAlertChannel is the pub/sub channel alerts are published on.
const DefaultAlertChannel = "security_alerts"

// Event types.
const (
	EventHoneytokenAccess = "honeytoken_access"
	EventLoginAttempt     = "login_attempt"
)

// AlertEvent is published once per recorded access of a known honeytoken.
type AlertEvent struct {
	EventType   string    `json:"event_type"`
	TokenID     string    `json:"token_id"`
	IPAddress   string    `json:"ip_address"`
	Context     string    `json:"context"`
	Timestamp   time.Time `json:"timestamp"`
	AccessCount int64     `json:"access_count"`
}

// NewAccessAlert builds the alert for a record that has just been accessed.
// AccessCount is the post-increment value.
func NewAccessAlert(h *Honeytoken, ip string) AlertEvent {
	ev := AlertEvent{
		EventType:   EventHoneytokenAccess,
		TokenID:     h.TokenID,
		IPAddress:   ip,
		Context:     h.Context,
		AccessCount: h.AccessCount,
	}
	if h.LastAccessed != nil {
		ev.Timestamp = *h.LastAccessed
	}
	return ev
}

// LoginAttemptEvent is published for every submission of the bait login form.
// Password carries the submitted value verbatim; it must never be logged.
type LoginAttemptEvent struct {
	EventType string    `json:"event_type"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	IPAddress string    `json:"ip_address"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
}
