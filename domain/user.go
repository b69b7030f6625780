package domain

import "time"

// Roles assignable to a user. Every self-registered account starts as RoleUser.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents a registered identity in the directory.
//
// Password is stored and compared as plain text. This mirrors the demo the
// service models and is an intentional simplification, not a pattern to copy.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Bio       string    `json:"bio,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Sanitized returns a copy safe to hand to transport layers.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}
