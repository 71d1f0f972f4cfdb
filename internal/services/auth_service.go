package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mixmodas/internal/captcha"
	"mixmodas/internal/identity"
	"mixmodas/internal/mail"
	"mixmodas/internal/models"
	"mixmodas/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

// maxPasswordBytes is bcrypt's input limit. The validator's max counts runes,
// so the byte length is checked separately.
const maxPasswordBytes = 72

const msgPasswordLength = "A senha deve ter entre 6 e 72 caracteres"

// SignupInput is the body of POST /api/cadastro.
type SignupInput struct {
	Name     string `json:"nome" form:"nome" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"senha" form:"senha" validate:"required,min=6,max=72"`
	Captcha  string `json:"recaptcha" form:"recaptcha"`
	RemoteIP string `json:"-" form:"-"`
}

// LoginInput is the body of POST /api/login.
type LoginInput struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"senha" form:"senha" validate:"required"`
	Captcha  string `json:"recaptcha" form:"recaptcha"`
	RemoteIP string `json:"-" form:"-"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	UID   string
	Email string
	Name  string
	Role  string
	Token string
}

// AuthService handles signup, login and token verification on top of one
// identity provider. It owns the user rows; the provider only deals with
// credentials.
type AuthService struct {
	userRepo repositories.UserRepository
	provider identity.Provider
	captcha  captcha.Verifier
	mailer   mail.Mailer
}

// NewAuthService creates a new AuthService. A nil verifier or mailer falls
// back to captcha.Disabled and mail.LogMailer.
func NewAuthService(userRepo repositories.UserRepository, provider identity.Provider, verifier captcha.Verifier, mailer mail.Mailer) *AuthService {
	if verifier == nil {
		verifier = captcha.Disabled{}
	}
	if mailer == nil {
		mailer = mail.LogMailer{}
	}
	return &AuthService{
		userRepo: userRepo,
		provider: provider,
		captcha:  verifier,
		mailer:   mailer,
	}
}

// ProviderName reports the configured identity strategy.
func (s *AuthService) ProviderName() string {
	return s.provider.Name()
}

// Signup registers a new user and returns the provider uid (empty for the
// local strategy).
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (string, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return "", signupValidationError(err)
	}
	if len(in.Password) > maxPasswordBytes {
		return "", newError(ErrValidation, msgPasswordLength)
	}
	if err := s.checkCaptcha(ctx, in.Captcha, in.RemoteIP); err != nil {
		return "", err
	}

	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return "", newError(ErrConflict, MsgEmailTaken)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return "", fmt.Errorf("failed to check email: %w", err)
	}

	account, err := s.provider.Register(ctx, identity.RegisterInput{
		Email:    in.Email,
		Password: in.Password,
		Name:     in.Name,
	})
	if err != nil {
		if errors.Is(err, identity.ErrEmailExists) {
			return "", newError(ErrConflict, MsgEmailTaken)
		}
		return "", fmt.Errorf("failed to register with %s provider: %w", s.provider.Name(), err)
	}

	user := &models.User{
		Email:        in.Email,
		Name:         in.Name,
		UID:          account.UID,
		PasswordHash: account.PasswordHash,
		Role:         models.RoleUser,
		CreatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.removeProviderAccount(ctx, account.UID)
		if errors.Is(err, repositories.ErrDuplicate) {
			return "", newError(ErrConflict, MsgEmailTaken)
		}
		return "", fmt.Errorf("failed to register user: %w", err)
	}

	zap.L().Info("user registered", zap.String("email", user.Email), zap.String("provider", s.provider.Name()))
	return account.UID, nil
}

// Login authenticates the user and refreshes its last-login time. Unknown
// email and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, newError(ErrValidation, MsgEmailPasswordNeeded)
	}
	if err := s.checkCaptcha(ctx, in.Captcha, in.RemoteIP); err != nil {
		return nil, err
	}

	session, err := s.provider.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, newError(ErrInvalidCredentials, MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	user, err := s.ensureUser(ctx, in.Email, session.UID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		zap.L().Warn("failed to refresh last login", zap.String("email", user.Email), zap.Error(err))
	}

	return &LoginResult{
		UID:   user.UID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		Token: session.Token,
	}, nil
}

// VerifyToken resolves a session token to its stored user. The role always
// comes from the user row.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, newError(ErrInvalidToken, MsgInvalidToken)
	}
	claims, err := s.provider.VerifyToken(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			zap.L().Debug("token rejected", zap.Error(err))
			return nil, newError(ErrInvalidToken, MsgInvalidToken)
		}
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	if claims.Email == "" {
		return nil, newError(ErrInvalidToken, MsgInvalidToken)
	}
	return s.ensureUser(ctx, normalizeEmail(claims.Email), claims.UID)
}

// RequestPasswordReset asks the provider for a reset link and mails it.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return newError(ErrValidation, MsgEmailRequired)
	}

	link, err := s.provider.PasswordResetLink(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return newError(ErrNotFound, MsgEmailNotFound)
		}
		return fmt.Errorf("failed to create reset link: %w", err)
	}
	if err := s.mailer.SendPasswordReset(ctx, email, link); err != nil {
		return err
	}
	return nil
}

// ResetPassword completes a reset for providers that handle it locally.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	resetter, ok := s.provider.(identity.PasswordResetter)
	if !ok {
		return newError(ErrValidation, "Redefinição de senha é feita pelo link enviado por email")
	}
	if resetToken == "" || len(newPassword) < 6 || len(newPassword) > maxPasswordBytes {
		return newError(ErrValidation, "Token e nova senha (entre 6 e 72 caracteres) são obrigatórios")
	}

	email, hash, err := resetter.ResetPassword(ctx, resetToken, newPassword)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return newError(ErrInvalidToken, MsgInvalidToken)
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return newError(ErrInvalidToken, MsgInvalidToken)
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	user.PasswordHash = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to store new password: %w", err)
	}
	return nil
}

// Promote grants the admin role to an existing user.
func (s *AuthService) Promote(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, "Usuário não encontrado")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.IsAdmin() {
		return user, nil
	}
	user.Role = models.RoleAdmin
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to promote user: %w", err)
	}
	return user, nil
}

// ensureUser loads the user row, creating a plain user for accounts that
// exist at a delegated provider but were never registered through signup.
func (s *AuthService) ensureUser(ctx context.Context, email, uid string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if uid == "" {
		// Local tokens and sessions always have a row behind them.
		return nil, newError(ErrInvalidToken, MsgInvalidToken)
	}

	user = &models.User{
		Email:     email,
		UID:       uid,
		Role:      models.RoleUser,
		CreatedAt: time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil && !errors.Is(err, repositories.ErrDuplicate) {
		return nil, fmt.Errorf("failed to create user row: %w", err)
	}
	zap.L().Info("created user row for provider account", zap.String("email", email), zap.String("uid", uid))
	return user, nil
}

// removeProviderAccount undoes Register after the user row could not be
// written, so the email is not left taken at the provider.
func (s *AuthService) removeProviderAccount(ctx context.Context, uid string) {
	remover, ok := s.provider.(identity.AccountRemover)
	if !ok || uid == "" {
		return
	}
	if err := remover.RemoveAccount(ctx, uid); err != nil {
		zap.L().Warn("orphaned provider account after failed signup",
			zap.String("uid", uid), zap.String("provider", s.provider.Name()), zap.Error(err))
		return
	}
	zap.L().Info("removed provider account after failed signup", zap.String("uid", uid))
}

func (s *AuthService) checkCaptcha(ctx context.Context, token, remoteIP string) error {
	if err := s.captcha.Verify(ctx, token, remoteIP); err != nil {
		if errors.Is(err, captcha.ErrFailed) {
			return newError(ErrValidation, MsgCaptchaFailed)
		}
		return fmt.Errorf("failed to verify captcha: %w", err)
	}
	return nil
}

func signupValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, e := range verrs {
			switch {
			case e.Tag() == "required":
				return newError(ErrValidation, MsgAllFieldsRequired)
			case e.Field() == "Email":
				return newError(ErrValidation, "Email inválido")
			case e.Field() == "Password":
				return newError(ErrValidation, msgPasswordLength)
			}
		}
	}
	return newError(ErrValidation, MsgAllFieldsRequired)
}
