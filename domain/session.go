package domain

import "time"

// Session references the currently authenticated user. The service keeps at
// most one active session at a time; it never expires on its own and is
// cleared only by an explicit logout.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) IsActive() bool {
	return s != nil && s.UserID != ""
}
