package product

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/digital-store-backend/internal/web"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Get("/products/:id", h.getProduct)
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Post("/products", h.createProduct)
	r.Put("/products/:id", h.updateProduct)
	r.Delete("/products/:id", h.deleteProduct)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := web.ParseID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	var in CreateInput
	if err := web.Bind(c, &in); err != nil {
		return err
	}
	view, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := web.ParseID(c, "id")
	if err != nil {
		return err
	}
	var in UpdateInput
	if err := web.Bind(c, &in); err != nil {
		return err
	}
	if err := h.service.Update(c.UserContext(), id, in); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, err := web.ParseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
