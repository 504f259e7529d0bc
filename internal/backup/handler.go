package backup

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/backups", h.create)
	app.Get("/api/v1/backups", h.list)
}

func (h *Handler) create(c *fiber.Ctx) error {
	b, err := h.service.Create(c.UserContext())
	if errors.Is(err, ErrNoWorkbook) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "no workbook to back up yet"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(b)
}

func (h *Handler) list(c *fiber.Ctx) error {
	backups, err := h.service.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(backups)
}
