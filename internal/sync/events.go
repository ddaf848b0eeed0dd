package sync

import "time"

const EventWelcome = "welcome"

// Event is one message pushed to the open tabs of a profile.
type Event struct {
	Type    string    `json:"type"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}
