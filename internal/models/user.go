package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a user of the store.
type User struct {
	Email        string     `json:"email" firestore:"email"`
	Name         string     `json:"nome" firestore:"nome"`
	UID          string     `json:"uid,omitempty" firestore:"uid,omitempty"`
	PasswordHash string     `json:"-" firestore:"-"` // local identity strategy only
	Role         string     `json:"role" firestore:"role"`
	CreatedAt    time.Time  `json:"criado_em" firestore:"criado_em"`
	LastLoginAt  *time.Time `json:"ultimo_login,omitempty" firestore:"ultimo_login,omitempty"`
}

// IsAdmin reports whether the user holds the elevated role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
