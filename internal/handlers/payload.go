package handlers

import (
	"errors"
	"mime/multipart"
	"strings"

	"mixmodas/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// productInput reads a product submission from a JSON, urlencoded or
// multipart body. Only keys present in the body end up in the input.
func productInput(c *fiber.Ctx) (services.ProductInput, error) {
	in := services.ProductInput{}
	ctype := strings.ToLower(c.Get(fiber.HeaderContentType))

	switch {
	case strings.HasPrefix(ctype, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return nil, err
		}
		for key, values := range form.Value {
			if len(values) > 0 {
				in[key] = values[0]
			}
		}
	case strings.HasPrefix(ctype, fiber.MIMEApplicationForm):
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			in[string(key)] = string(value)
		})
	default:
		if len(c.Body()) == 0 {
			return in, nil
		}
		if err := c.App().Config().JSONDecoder(c.Body(), &in); err != nil {
			return nil, err
		}
	}
	return in, nil
}

// uploadedImage returns the imagem file of a multipart body, or nil.
func uploadedImage(c *fiber.Ctx) (*multipart.FileHeader, error) {
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	file, err := c.FormFile("imagem")
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	if file.Size == 0 && file.Filename == "" {
		return nil, nil
	}
	return file, nil
}
