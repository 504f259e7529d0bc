package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/isoilaj/caregiver-registry/internal/auth"
	"github.com/isoilaj/caregiver-registry/internal/registry"
	"github.com/isoilaj/caregiver-registry/internal/usecase"
)

type MaintenanceHandler struct {
	usecase usecase.MaintenanceUsecase
}

func NewMaintenanceHandler(usecase usecase.MaintenanceUsecase) *MaintenanceHandler {
	return &MaintenanceHandler{usecase: usecase}
}

func (h *MaintenanceHandler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/maintenance/integrity", h.Integrity)
	app.Post("/api/v1/maintenance/migrate-phones", h.MigratePhones)
	app.Post("/api/v1/maintenance/dedupe", h.Deduplicate)
}

func (h *MaintenanceHandler) Integrity(c *fiber.Ctx) error {
	issues, err := h.usecase.Check(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	if issues == nil {
		issues = []registry.Issue{}
	}
	return c.JSON(fiber.Map{"healthy": len(issues) == 0, "issues": issues})
}

func (h *MaintenanceHandler) MigratePhones(c *fiber.Ctx) error {
	operator, err := auth.OperatorFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	n, err := h.usecase.MigratePhones(c.UserContext(), operator)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"updated": n})
}

func (h *MaintenanceHandler) Deduplicate(c *fiber.Ctx) error {
	operator, err := auth.OperatorFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	res, err := h.usecase.Deduplicate(c.UserContext(), operator)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(res)
}
