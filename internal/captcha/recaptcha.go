// Package captcha checks reCAPTCHA tokens submitted with signup and login.
package captcha

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DefaultVerifyURL is Google's siteverify endpoint.
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// ErrFailed is returned when the token is missing or rejected.
var ErrFailed = errors.New("captcha verification failed")

// Verifier checks a client CAPTCHA token.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// Disabled accepts every token. It is used when no secret is configured.
type Disabled struct{}

func (Disabled) Verify(context.Context, string, string) error { return nil }

// Recaptcha verifies tokens against the siteverify API.
type Recaptcha struct {
	secret    string
	verifyURL string
	timeout   time.Duration
}

// New returns Disabled when secret is empty, otherwise a Recaptcha verifier.
func New(secret, verifyURL string, timeout time.Duration) Verifier {
	if secret == "" {
		zap.L().Warn("CAPTCHA secret not set, signup and login are not CAPTCHA protected")
		return Disabled{}
	}
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Recaptcha{secret: secret, verifyURL: verifyURL, timeout: timeout}
}

type siteVerifyResponse struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

func (r *Recaptcha) Verify(_ context.Context, token, remoteIP string) error {
	if token == "" {
		return ErrFailed
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("secret", r.secret)
	args.Set("response", token)
	if remoteIP != "" {
		args.Set("remoteip", remoteIP)
	}

	agent := fiber.Post(r.verifyURL)
	agent.Form(args)
	agent.Timeout(r.timeout)
	if err := agent.Parse(); err != nil {
		return fmt.Errorf("captcha request: %w", err)
	}

	var resp siteVerifyResponse
	code, _, errs := agent.Struct(&resp)
	if len(errs) > 0 {
		return fmt.Errorf("captcha request: %w", errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		return fmt.Errorf("captcha request: unexpected status %d", code)
	}
	if !resp.Success {
		zap.L().Info("captcha rejected", zap.Strings("error_codes", resp.ErrorCodes))
		return ErrFailed
	}
	return nil
}
