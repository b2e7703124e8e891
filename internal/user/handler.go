package user

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
	r.Post("/users", h.createUser)
	r.Post("/auth/token", h.login)
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/users/:id", h.getUser)
	r.Put("/users/:id", h.updateUser)
	r.Delete("/users/:id", h.deleteUser)
}

func (h *Handler) createUser(c *fiber.Ctx) error {
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

func (h *Handler) login(c *fiber.Ctx) error {
	var in LoginInput
	if err := web.Bind(c, &in); err != nil {
		return err
	}
	session, err := h.service.Login(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(session)
}

func (h *Handler) getUser(c *fiber.Ctx) error {
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

func (h *Handler) updateUser(c *fiber.Ctx) error {
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

func (h *Handler) deleteUser(c *fiber.Ctx) error {
	id, err := web.ParseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
