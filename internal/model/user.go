package model

import "time"

// User is the authenticated seeker profile.
type User struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

// Session is the locally persisted login state.
type Session struct {
	Token     string
	UserID    string
	Phone     string
	Name      string
	ExpiresAt time.Time
}

// Expired reports whether the session token is past its expiry.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Location is the seeker's last known position, cached locally.
// Acquisition is out of scope; the value arrives from the frontend.
type Location struct {
	Latitude  float64
	Longitude float64
	Label     string
	UpdatedAt time.Time
}

// Notification is one in-app notification entry.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
