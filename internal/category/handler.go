package category

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
	r.Get("/categories/search", h.search)
	r.Get("/categories/:id", h.getCategory)
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Post("/categories", h.createCategory)
	r.Put("/categories/:id", h.updateCategory)
	r.Delete("/categories/:id", h.deleteCategory)
}

func (h *Handler) search(c *fiber.Ctx) error {
	limit, err := web.QueryInt(c, "limit", DefaultLimit)
	if err != nil {
		return err
	}
	page, err := web.QueryInt(c, "page", 1)
	if err != nil {
		return err
	}

	q := SearchQuery{Limit: limit, Page: page, Fields: ParseFields(c.Query("fields"))}
	switch c.Query("use_in_menu") {
	case "true":
		v := true
		q.UseInMenu = &v
	case "false":
		v := false
		q.UseInMenu = &v
	}

	res, err := h.service.Search(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *Handler) getCategory(c *fiber.Ctx) error {
	id, err := web.ParseID(c, "id")
	if err != nil {
		return err
	}
	cat, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(cat)
}

func (h *Handler) createCategory(c *fiber.Ctx) error {
	var in Input
	if err := web.Bind(c, &in); err != nil {
		return err
	}
	cat, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(cat)
}

func (h *Handler) updateCategory(c *fiber.Ctx) error {
	id, err := web.ParseID(c, "id")
	if err != nil {
		return err
	}
	var in Input
	if err := web.Bind(c, &in); err != nil {
		return err
	}
	if err := h.service.Update(c.UserContext(), id, in); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) deleteCategory(c *fiber.Ctx) error {
	id, err := web.ParseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
