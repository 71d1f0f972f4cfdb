package handlers

import (
	"strings"

	"mixmodas/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// WishlistHandler handles HTTP requests for the wishlist.
type WishlistHandler struct {
	service  *services.WishlistService
	validate *validator.Validate
}

// NewWishlistHandler creates a new WishlistHandler.
func NewWishlistHandler(service *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the wishlist routes with the Fiber app.
func (h *WishlistHandler) RegisterRoutes(router fiber.Router) {
	wishlistRoutes := router.Group("/lista_desejos")
	wishlistRoutes.Get("/", h.HandleList)
	wishlistRoutes.Post("/", h.HandleAdd)
	wishlistRoutes.Delete("/", h.HandleRemove)
}

// wishlistRequest is the body of POST and DELETE. produto_id may arrive as
// a number or a string.
type wishlistRequest struct {
	Email     string      `json:"usuario_email" validate:"required"`
	ProductID interface{} `json:"produto_id" validate:"required"`
}

func (h *WishlistHandler) parse(c *fiber.Ctx) (string, string, error) {
	var req wishlistRequest
	switch {
	case len(c.Body()) == 0:
	case strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON):
		if err := c.BodyParser(&req); err != nil {
			zap.L().Debug("invalid wishlist body", zap.Error(err))
			return "", "", invalid("Corpo da requisição inválido")
		}
	default:
		req.Email = c.FormValue("usuario_email")
		if v := c.FormValue("produto_id"); v != "" {
			req.ProductID = v
		}
	}
	// DELETE clients may not send a body.
	if req.Email == "" {
		req.Email = c.Query("usuario_email")
	}
	if req.ProductID == nil && c.Query("produto_id") != "" {
		req.ProductID = c.Query("produto_id")
	}
	if err := h.validate.Struct(req); err != nil {
		return "", "", invalid(services.MsgAllFieldsRequired)
	}
	return req.Email, cast.ToString(req.ProductID), nil
}

// HandleList returns the products on ?email='s wishlist.
func (h *WishlistHandler) HandleList(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext(), c.Query("email"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleAdd puts a product on a wishlist.
func (h *WishlistHandler) HandleAdd(c *fiber.Ctx) error {
	email, productID, err := h.parse(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := h.service.AddProduct(c.UserContext(), email, productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "id": id})
}

// HandleRemove takes a product off a wishlist.
func (h *WishlistHandler) HandleRemove(c *fiber.Ctx) error {
	email, productID, err := h.parse(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.RemoveProduct(c.UserContext(), email, productID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
