package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"mixmodas/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

const (
	purposeSession = "session"
	purposeReset   = "reset"
)

// LocalConfig configures the local provider.
type LocalConfig struct {
	JWTSecret     string
	TokenDuration time.Duration // default 24h
	ResetDuration time.Duration // default 1h
	// ResetURL is the page that receives ?token=<reset token>.
	ResetURL string
}

// LocalProvider hashes passwords with bcrypt and issues HS256 tokens.
type LocalProvider struct {
	users         repositories.UserRepository
	jwtSecret     []byte
	tokenDuration time.Duration
	resetDuration time.Duration
	resetURL      string
}

// NewLocalProvider creates the local provider. users is only read: the auth
// service owns user rows.
func NewLocalProvider(users repositories.UserRepository, cfg LocalConfig) *LocalProvider {
	p := &LocalProvider{
		users:         users,
		jwtSecret:     []byte(cfg.JWTSecret),
		tokenDuration: cfg.TokenDuration,
		resetDuration: cfg.ResetDuration,
		resetURL:      cfg.ResetURL,
	}
	if p.tokenDuration <= 0 {
		p.tokenDuration = 24 * time.Hour // Token valid for 24 hours
	}
	if p.resetDuration <= 0 {
		p.resetDuration = time.Hour
	}
	if p.resetURL == "" {
		p.resetURL = "/redefinir-senha"
	}
	return p
}

func (p *LocalProvider) Name() string { return "local" }

// Register hashes the password. Duplicate detection is left to the caller,
// which owns the user store.
func (p *LocalProvider) Register(_ context.Context, in RegisterInput) (Account, error) {
	hash, err := hashPassword(in.Password)
	if err != nil {
		return Account{}, err
	}
	return Account{PasswordHash: hash}, nil
}

// Authenticate compares password against the stored hash. Unknown email and
// wrong password both yield ErrInvalidCredentials.
func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (Session, error) {
	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("failed to load user: %w", err)
	}
	if user.PasswordHash == "" {
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	expires := time.Now().Add(p.tokenDuration)
	token, err := p.sign(user.Email, purposeSession, expires)
	if err != nil {
		return Session{}, err
	}
	return Session{Email: user.Email, Token: token, ExpiresAt: expires}, nil
}

func (p *LocalProvider) VerifyToken(_ context.Context, token string) (Claims, error) {
	email, expires, err := p.parse(token, purposeSession)
	if err != nil {
		return Claims{}, err
	}
	return Claims{Email: email, ExpiresAt: expires}, nil
}

// PasswordResetLink returns ResetURL carrying a short-lived signed token.
func (p *LocalProvider) PasswordResetLink(ctx context.Context, email string) (string, error) {
	if _, err := p.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	token, err := p.sign(email, purposeReset, time.Now().Add(p.resetDuration))
	if err != nil {
		return "", err
	}
	sep := "?"
	if strings.Contains(p.resetURL, "?") {
		sep = "&"
	}
	return p.resetURL + sep + "token=" + url.QueryEscape(token), nil
}

// ResetPassword validates a reset token and hashes the new password.
func (p *LocalProvider) ResetPassword(_ context.Context, resetToken, newPassword string) (string, string, error) {
	email, _, err := p.parse(resetToken, purposeReset)
	if err != nil {
		return "", "", err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return "", "", err
	}
	return email, hash, nil
}

func (p *LocalProvider) sign(email, purpose string, expires time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":   email,
		"purpose": purpose,
		"exp":     expires.Unix(),
		"iat":     time.Now().Unix(),
	})
	signed, err := token.SignedString(p.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

// parse validates signature, expiry and purpose. A reset token is never
// accepted as a session token and vice versa.
func (p *LocalProvider) parse(tokenString, purpose string) (string, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.jwtSecret, nil
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", time.Time{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	if email == "" || claims["purpose"] != purpose {
		return "", time.Time{}, ErrInvalidToken
	}
	var expires time.Time
	if exp, ok := claims["exp"].(float64); ok {
		expires = time.Unix(int64(exp), 0)
	}
	return email, expires, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}
