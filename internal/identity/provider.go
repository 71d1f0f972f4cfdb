// Package identity verifies who a user is. A deployment selects exactly one
// Provider: "local" keeps a bcrypt hash on the user row and signs its own
// tokens, "firebase" delegates every credential operation to Firebase Auth
// and never sees a stored password.
package identity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmailExists        = errors.New("identity: email already registered")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	ErrInvalidToken       = errors.New("identity: invalid token")
	ErrUserNotFound       = errors.New("identity: user not found")
	ErrUnsupported        = errors.New("identity: operation not supported by provider")
)

// RegisterInput is what a provider needs to create an account.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Account is the result of a registration. Exactly one of UID (delegated
// provider) or PasswordHash (local provider) is normally set.
type Account struct {
	UID          string
	PasswordHash string
}

// Session is returned by a successful login.
type Session struct {
	UID       string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// Claims is the verified content of a session token.
type Claims struct {
	UID       string
	Email     string
	ExpiresAt time.Time
}

// Provider is one identity strategy.
type Provider interface {
	Name() string
	Register(ctx context.Context, in RegisterInput) (Account, error)
	Authenticate(ctx context.Context, email, password string) (Session, error)
	VerifyToken(ctx context.Context, token string) (Claims, error)
	// PasswordResetLink returns ErrUserNotFound when the email is unknown.
	PasswordResetLink(ctx context.Context, email string) (string, error)
}

// AccountRemover is implemented by providers that keep accounts outside the
// user table, so a failed signup can undo Register.
type AccountRemover interface {
	RemoveAccount(ctx context.Context, uid string) error
}

// PasswordResetter is implemented by providers that complete a reset
// themselves. It returns the account email and the new password hash.
type PasswordResetter interface {
	ResetPassword(ctx context.Context, resetToken, newPassword string) (email, passwordHash string, err error)
}
