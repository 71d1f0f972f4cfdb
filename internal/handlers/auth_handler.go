package handlers

import (
	"mixmodas/internal/middleware"
	"mixmodas/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// FirebaseWebConfig is the public web configuration served to the browser
// SDK. None of it is secret.
type FirebaseWebConfig struct {
	APIKey            string `json:"apiKey"`
	AuthDomain        string `json:"authDomain"`
	ProjectID         string `json:"projectId"`
	StorageBucket     string `json:"storageBucket,omitempty"`
	MessagingSenderID string `json:"messagingSenderId,omitempty"`
	AppID             string `json:"appId,omitempty"`
}

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	webConfig   *FirebaseWebConfig
}

// NewAuthHandler creates a new AuthHandler. webConfig may be nil when the
// browser SDK is not used.
func NewAuthHandler(authService *services.AuthService, webConfig *FirebaseWebConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		webConfig:   webConfig,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/cadastro", h.HandleSignup)
	router.Post("/login", h.HandleLogin)
	router.Post("/verify-token", h.HandleVerifyToken)
	router.Post("/esqueci-senha", h.HandleForgotPassword)
	router.Post("/redefinir-senha", h.HandleResetPassword)
	router.Get("/firebase-config", h.HandleFirebaseConfig)
}

// HandleSignup handles new user registration.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var in services.SignupInput
	if err := c.BodyParser(&in); err != nil {
		zap.L().Debug("invalid signup body", zap.Error(err))
		return respondError(c, invalid(services.MsgAllFieldsRequired))
	}
	in.RemoteIP = c.IP()

	uid, err := h.authService.Signup(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}

	resp := fiber.Map{"success": true}
	if uid != "" {
		resp["uid"] = uid
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// HandleLogin authenticates a user and issues a session token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var in services.LoginInput
	if err := c.BodyParser(&in); err != nil {
		zap.L().Debug("invalid login body", zap.Error(err))
		return respondError(c, invalid(services.MsgEmailPasswordNeeded))
	}
	in.RemoteIP = c.IP()

	result, err := h.authService.Login(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}

	resp := fiber.Map{
		"success": true,
		"email":   result.Email,
		"role":    result.Role,
		"nome":    result.Name,
		"token":   result.Token,
	}
	if result.UID != "" {
		resp["uid"] = result.UID
	}
	return c.JSON(resp)
}

// HandleVerifyToken returns the profile behind a token sent in the body or
// as a bearer header.
func (h *AuthHandler) HandleVerifyToken(c *fiber.Ctx) error {
	var body struct {
		Token string `json:"token" form:"token"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return respondError(c, invalid("Corpo da requisição inválido"))
		}
	}
	token := body.Token
	if token == "" {
		token = middleware.BearerToken(c)
	}

	user, err := h.authService.VerifyToken(c.UserContext(), token)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"uid":     user.UID,
		"email":   user.Email,
		"nome":    user.Name,
		"role":    user.Role,
	})
}

// HandleForgotPassword mails a password reset link.
func (h *AuthHandler) HandleForgotPassword(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email" form:"email"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, invalid(services.MsgEmailRequired))
	}
	if err := h.authService.RequestPasswordReset(c.UserContext(), body.Email); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Link de redefinição enviado para o email",
	})
}

// HandleResetPassword completes a reset started by HandleForgotPassword.
func (h *AuthHandler) HandleResetPassword(c *fiber.Ctx) error {
	var body struct {
		Token    string `json:"token" form:"token"`
		Password string `json:"senha" form:"senha"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, invalid("Corpo da requisição inválido"))
	}
	if err := h.authService.ResetPassword(c.UserContext(), body.Token, body.Password); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleFirebaseConfig serves the browser SDK configuration.
func (h *AuthHandler) HandleFirebaseConfig(c *fiber.Ctx) error {
	if h.webConfig == nil || h.webConfig.APIKey == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Firebase não configurado"})
	}
	return c.JSON(h.webConfig)
}
