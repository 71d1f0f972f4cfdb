package handlers

import (
	"mixmodas/internal/middleware"
	"mixmodas/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// CartHandler serves the signed-in user's cart. The cart is keyed by the
// authenticated email, never by anything the client sends.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// RegisterRoutes registers the cart routes behind auth.
func (h *CartHandler) RegisterRoutes(router fiber.Router, auth ...fiber.Handler) {
	cartRoutes := router.Group("/carrinho")
	cartRoutes.Get("/", chain(auth, h.HandleGet)...)
	cartRoutes.Delete("/", chain(auth, h.HandleClear)...)
	cartRoutes.Post("/itens", chain(auth, h.HandleAddItem)...)
	cartRoutes.Put("/itens/:produtoId", chain(auth, h.HandleSetQuantity)...)
	cartRoutes.Delete("/itens/:produtoId", chain(auth, h.HandleRemoveItem)...)
}

// cartItemRequest accepts produto_id and quantidade as numbers or strings.
type cartItemRequest struct {
	ProductID interface{} `json:"produto_id"`
	Quantity  interface{} `json:"quantidade"`
}

func (h *CartHandler) parse(c *fiber.Ctx) (cartItemRequest, error) {
	var req cartItemRequest
	if len(c.Body()) == 0 {
		return req, nil
	}
	if err := c.BodyParser(&req); err != nil {
		zap.L().Debug("invalid cart body", zap.Error(err))
		return req, invalid("Corpo da requisição inválido")
	}
	return req, nil
}

func quantityOf(v interface{}, fallback int) (int, error) {
	if v == nil || v == "" {
		return fallback, nil
	}
	n, err := services.ParseInt(v)
	if err != nil {
		return 0, invalid(services.MsgInvalidQuantity)
	}
	return n, nil
}

func currentEmail(c *fiber.Ctx) string {
	if user := middleware.CurrentUser(c); user != nil {
		return user.Email
	}
	return ""
}

// HandleGet returns the priced cart.
func (h *CartHandler) HandleGet(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(c.UserContext(), currentEmail(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}

// HandleAddItem adds units of a product; quantidade defaults to 1.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	req, err := h.parse(c)
	if err != nil {
		return respondError(c, err)
	}
	quantity, err := quantityOf(req.Quantity, 1)
	if err != nil {
		return respondError(c, err)
	}
	cart, err := h.service.AddItem(c.UserContext(), currentEmail(c), cast.ToString(req.ProductID), quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}

// HandleSetQuantity replaces a line's quantity; zero removes the line.
func (h *CartHandler) HandleSetQuantity(c *fiber.Ctx) error {
	req, err := h.parse(c)
	if err != nil {
		return respondError(c, err)
	}
	if req.Quantity == nil {
		return respondError(c, invalid(services.MsgInvalidQuantity))
	}
	quantity, err := quantityOf(req.Quantity, 0)
	if err != nil {
		return respondError(c, err)
	}
	cart, err := h.service.SetQuantity(c.UserContext(), currentEmail(c), c.Params("produtoId"), quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	cart, err := h.service.RemoveItem(c.UserContext(), currentEmail(c), c.Params("produtoId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	if err := h.service.Clear(c.UserContext(), currentEmail(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
