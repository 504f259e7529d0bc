package caregiver

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/isoilaj/caregiver-registry/internal/auth"
	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
	"github.com/isoilaj/caregiver-registry/internal/interface/presenter"
	"github.com/isoilaj/caregiver-registry/internal/registry"
	"github.com/isoilaj/caregiver-registry/internal/usecase"
)

type Handler struct {
	service   *Service
	presenter *presenter.RegistryPresenter
}

func NewHandler(service *Service, presenter *presenter.RegistryPresenter) *Handler {
	return &Handler{service: service, presenter: presenter}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/caregivers", h.list)
	app.Get("/api/v1/caregivers/:id", h.get)
	app.Post("/api/v1/caregivers", h.create)
	app.Put("/api/v1/caregivers/:id", h.update)
	app.Delete("/api/v1/caregivers/:id", h.delete)
	app.Patch("/api/v1/caregivers/:id/status", h.setStatus)
}

// FilterFromQuery reads the caregiver filter from query parameters.
func FilterFromQuery(c *fiber.Ctx) registry.CaregiverFilter {
	return registry.CaregiverFilter{
		Search:         c.Query("q"),
		Gender:         c.Query("gender"),
		AgeGroup:       c.Query("ageGroup"),
		Profession:     c.Query("profession"),
		ZonalLeader:    c.Query("zonalLeader"),
		EducationLevel: c.Query("educationLevel"),
		Status:         c.Query("status"),
	}
}

func (h *Handler) list(c *fiber.Ctx) error {
	caregivers, err := h.service.List(c.UserContext(), FilterFromQuery(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(h.presenter.Caregivers(caregivers))
}

func (h *Handler) get(c *fiber.Ctx) error {
	cg, children, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.presenter.CaregiverWithChildren(cg, children))
}

func (h *Handler) create(c *fiber.Ctx) error {
	operator, err := auth.OperatorFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	var payload usecase.CaregiverInput
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	in, err := payload.Entity()
	if err != nil {
		return respondError(c, err)
	}

	created, merged, err := h.service.Create(c.UserContext(), operator, in)
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusCreated
	if merged {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(fiber.Map{
		"caregiver": h.presenter.Caregiver(created),
		"merged":    merged,
	})
}

func (h *Handler) update(c *fiber.Ctx) error {
	operator, err := auth.OperatorFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	var payload usecase.CaregiverInput
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	in, err := payload.Entity()
	if err != nil {
		return respondError(c, err)
	}

	updated, err := h.service.Update(c.UserContext(), operator, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.presenter.Caregiver(updated))
}

func (h *Handler) delete(c *fiber.Ctx) error {
	operator, err := auth.OperatorFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id := c.Params("id")
	removed, err := h.service.Delete(c.UserContext(), operator, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": id, "childrenRemoved": removed})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) setStatus(c *fiber.Ctx) error {
	operator, err := auth.OperatorFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	var payload statusRequest
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updated, err := h.service.SetStatus(c.UserContext(), operator, c.Params("id"), entity.VerificationStatus(payload.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.presenter.Caregiver(updated))
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, registry.ErrCaregiverNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "caregiver not found"})
	case errors.Is(err, registry.ErrNameRequired),
		errors.Is(err, registry.ErrInvalidStatus),
		errors.Is(err, usecase.ErrInvalidDate),
		errors.Is(err, usecase.ErrInvalidAge):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
