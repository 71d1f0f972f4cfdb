package handlers

import (
	"bytes"
	"errors"

	"mixmodas/internal/services"
	"mixmodas/internal/uploads"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	uploads *uploads.Store
}

// NewProductHandler creates a new ProductHandler. uploads may be nil, in
// which case image files are rejected.
func NewProductHandler(service *services.ProductService, uploads *uploads.Store) *ProductHandler {
	return &ProductHandler{
		service: service,
		uploads: uploads,
	}
}

// RegisterRoutes registers the product routes. admin guards every mutation
// and the export.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, admin ...fiber.Handler) {
	productRoutes := router.Group("/produtos")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/export.csv", chain(admin, h.HandleExportCSV)...)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Post("/", chain(admin, h.HandleCreateProduct)...)
	productRoutes.Put("/:id", chain(admin, h.HandleUpdateProduct)...)
	productRoutes.Delete("/:id", chain(admin, h.HandleDeleteProduct)...)
}

// HandleListProducts lists products, optionally filtered by ?categoria=.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext(), c.Query("categoria"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a product from a JSON, form or multipart body.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	in, saved, err := h.readProduct(c)
	if err != nil {
		return respondError(c, err)
	}

	product, err := h.service.CreateProduct(c.UserContext(), in)
	if err != nil {
		h.discard(saved)
		return respondError(c, err)
	}

	zap.L().Info("product created", zap.String("id", product.ID), zap.String("categoria", product.Category))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"produto": product,
	})
}

// HandleUpdateProduct updates an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	in, saved, err := h.readProduct(c)
	if err != nil {
		return respondError(c, err)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), in)
	if err != nil {
		h.discard(saved)
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"produto": product,
	})
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	zap.L().Info("product deleted", zap.String("id", id))
	return c.JSON(fiber.Map{"success": true})
}

// HandleExportCSV streams the catalog as CSV.
func (h *ProductHandler) HandleExportCSV(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.ExportCSV(c.UserContext(), &buf); err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="produtos.csv"`)
	return c.Send(buf.Bytes())
}

// readProduct parses the body and stores an uploaded image, returning the
// saved public path so it can be discarded if the write fails.
func (h *ProductHandler) readProduct(c *fiber.Ctx) (services.ProductInput, string, error) {
	in, err := productInput(c)
	if err != nil {
		zap.L().Debug("invalid product body", zap.Error(err))
		return nil, "", invalid("Corpo da requisição inválido")
	}

	file, err := uploadedImage(c)
	if err != nil {
		return nil, "", invalid("Erro no upload da imagem")
	}
	if file == nil {
		return in, "", nil
	}
	if h.uploads == nil {
		return nil, "", invalid("Upload de imagens desabilitado")
	}

	path, err := h.uploads.Save(file, c.SaveFile)
	if err != nil {
		if errors.Is(err, uploads.ErrExtensionNotAllowed) {
			return nil, "", invalid("Formato de imagem não permitido")
		}
		return nil, "", err
	}
	in["imagem"] = path
	return in, path, nil
}

func (h *ProductHandler) discard(path string) {
	if path == "" || h.uploads == nil {
		return
	}
	if err := h.uploads.Remove(path); err != nil {
		zap.L().Warn("failed to remove orphan upload", zap.String("path", path), zap.Error(err))
	}
}
