package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"
)

// DefaultSignInURL is the Identity Toolkit password sign-in endpoint.
const DefaultSignInURL = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

// AuthClient is the subset of *auth.Client the provider uses.
type AuthClient interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	PasswordResetLink(ctx context.Context, email string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
}

// FirebaseConfig configures the firebase provider.
type FirebaseConfig struct {
	// APIKey is the web API key used for password sign-in.
	APIKey    string
	SignInURL string
	Timeout   time.Duration
}

// FirebaseProvider delegates account creation, sign-in, token verification
// and reset links to Firebase Auth.
type FirebaseProvider struct {
	client    AuthClient
	apiKey    string
	signInURL string
	timeout   time.Duration
}

// NewFirebaseProvider creates the firebase provider.
func NewFirebaseProvider(client AuthClient, cfg FirebaseConfig) *FirebaseProvider {
	p := &FirebaseProvider{
		client:    client,
		apiKey:    cfg.APIKey,
		signInURL: cfg.SignInURL,
		timeout:   cfg.Timeout,
	}
	if p.signInURL == "" {
		p.signInURL = DefaultSignInURL
	}
	if p.timeout <= 0 {
		p.timeout = 10 * time.Second
	}
	return p
}

func (p *FirebaseProvider) Name() string { return "firebase" }

func (p *FirebaseProvider) Register(ctx context.Context, in RegisterInput) (Account, error) {
	params := (&auth.UserToCreate{}).
		Email(in.Email).
		Password(in.Password).
		DisplayName(in.Name)
	record, err := p.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return Account{}, ErrEmailExists
		}
		return Account{}, fmt.Errorf("firebase create user: %w", err)
	}
	return Account{UID: record.UID}, nil
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID   string `json:"localId"`
	Email     string `json:"email"`
	IDToken   string `json:"idToken"`
	ExpiresIn string `json:"expiresIn"`
	Error     *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Authenticate signs in through the Identity Toolkit REST API. Every
// credential rejection (unknown email, wrong password, disabled user) maps to
// ErrInvalidCredentials.
func (p *FirebaseProvider) Authenticate(_ context.Context, email, password string) (Session, error) {
	if p.apiKey == "" {
		return Session{}, fmt.Errorf("firebase sign-in: API key not configured")
	}

	agent := fiber.Post(p.signInURL + "?key=" + p.apiKey)
	agent.JSON(signInRequest{Email: email, Password: password, ReturnSecureToken: true})
	agent.Timeout(p.timeout)
	if err := agent.Parse(); err != nil {
		return Session{}, fmt.Errorf("firebase sign-in: %w", err)
	}

	var resp signInResponse
	code, _, errs := agent.Struct(&resp)
	if len(errs) > 0 && code == 0 {
		return Session{}, fmt.Errorf("firebase sign-in: %w", errors.Join(errs...))
	}
	if code >= fiber.StatusBadRequest || resp.IDToken == "" {
		if resp.Error != nil && isCredentialError(resp.Error.Message) {
			return Session{}, ErrInvalidCredentials
		}
		if code >= fiber.StatusInternalServerError || resp.Error == nil {
			return Session{}, fmt.Errorf("firebase sign-in: unexpected status %d", code)
		}
		return Session{}, ErrInvalidCredentials
	}

	return Session{
		UID:       resp.LocalID,
		Email:     resp.Email,
		Token:     resp.IDToken,
		ExpiresAt: time.Now().Add(time.Duration(cast.ToInt64(resp.ExpiresIn)) * time.Second),
	}, nil
}

func isCredentialError(message string) bool {
	// Messages look like "INVALID_PASSWORD" or "TOO_MANY_ATTEMPTS_TRY_LATER : ...".
	code := strings.TrimSpace(strings.SplitN(message, ":", 2)[0])
	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED", "INVALID_EMAIL":
		return true
	}
	return false
}

func (p *FirebaseProvider) VerifyToken(ctx context.Context, token string) (Claims, error) {
	verified, err := p.client.VerifyIDToken(ctx, token)
	if err != nil {
		if tokenRejected(err) {
			return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		// Key fetch, network or configuration failure.
		return Claims{}, fmt.Errorf("firebase verify id token: %w", err)
	}
	email, _ := verified.Claims["email"].(string)
	return Claims{
		UID:       verified.UID,
		Email:     email,
		ExpiresAt: time.Unix(verified.Expires, 0),
	}, nil
}

func (p *FirebaseProvider) PasswordResetLink(ctx context.Context, email string) (string, error) {
	link, err := p.client.PasswordResetLink(ctx, email)
	if err != nil {
		if auth.IsEmailNotFound(err) || auth.IsUserNotFound(err) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("firebase password reset link: %w", err)
	}
	return link, nil
}

// RemoveAccount deletes the Firebase account created by Register.
func (p *FirebaseProvider) RemoveAccount(ctx context.Context, uid string) error {
	if err := p.client.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("firebase delete user %s: %w", uid, err)
	}
	return nil
}

// tokenRejected reports whether err says the token itself is bad, as
// opposed to Firebase being unreachable.
func tokenRejected(err error) bool {
	return auth.IsIDTokenInvalid(err) ||
		auth.IsIDTokenExpired(err) ||
		auth.IsIDTokenRevoked(err) ||
		auth.IsUserDisabled(err) ||
		auth.IsTenantIDMismatch(err)
}
