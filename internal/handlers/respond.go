package handlers

import (
	"errors"

	"mixmodas/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const msgInternal = "Erro no servidor"

// statusFor maps a service error kind to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrConflict):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes {"error": msg}. Service errors carry their own client
// message; anything else is logged and answered with a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		return c.Status(statusFor(svcErr)).JSON(fiber.Map{"error": svcErr.Message})
	}
	zap.L().Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msgInternal})
}

// invalid builds a validation error answered with 400 and msg.
func invalid(msg string) error {
	return &services.Error{Kind: services.ErrValidation, Message: msg}
}

// chain returns middleware followed by handler in a fresh slice.
func chain(middleware []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(middleware)+1)
	handlers = append(handlers, middleware...)
	return append(handlers, handler)
}

// ErrorHandler is the catch-all for errors that escape the handlers: unknown
// routes, body limits and recovered panics.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		msg := fe.Message
		switch fe.Code {
		case fiber.StatusNotFound:
			msg = "Recurso não encontrado"
		case fiber.StatusInternalServerError:
			zap.L().Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			msg = msgInternal
		}
		return c.Status(fe.Code).JSON(fiber.Map{"error": msg})
	}
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		return respondError(c, err)
	}
	zap.L().Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msgInternal})
}
