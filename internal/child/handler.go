package child

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/isoilaj/caregiver-registry/internal/auth"
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
	app.Get("/api/v1/children", h.list)
	app.Get("/api/v1/children/:id", h.get)
	app.Post("/api/v1/children", h.create)
	app.Put("/api/v1/children/:id", h.update)
	app.Delete("/api/v1/children/:id", h.delete)
}

// FilterFromQuery reads the child filter from query parameters.
func FilterFromQuery(c *fiber.Ctx) registry.ChildFilter {
	return registry.ChildFilter{
		Search:         c.Query("q"),
		Gender:         c.Query("gender"),
		AgeGroup:       c.Query("ageGroup"),
		EducationLevel: c.Query("educationLevel"),
		ClassLevel:     c.Query("classLevel"),
		Profession:     c.Query("profession"),
		CaregiverID:    c.Query("caregiverId"),
	}
}

func (h *Handler) list(c *fiber.Ctx) error {
	children, err := h.service.List(c.UserContext(), FilterFromQuery(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(h.presenter.Children(children))
}

func (h *Handler) get(c *fiber.Ctx) error {
	ch, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.presenter.Child(ch))
}

func (h *Handler) create(c *fiber.Ctx) error {
	operator, err := auth.OperatorFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	var payload usecase.ChildInput
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	in, err := payload.Entity()
	if err != nil {
		return respondError(c, err)
	}
	created, err := h.service.Create(c.UserContext(), operator, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.presenter.Child(created))
}

func (h *Handler) update(c *fiber.Ctx) error {
	operator, err := auth.OperatorFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	var payload usecase.ChildInput
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
	return c.JSON(h.presenter.Child(updated))
}

func (h *Handler) delete(c *fiber.Ctx) error {
	operator, err := auth.OperatorFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id := c.Params("id")
	if err := h.service.Delete(c.UserContext(), operator, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": id})
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, registry.ErrChildNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "child not found"})
	case errors.Is(err, registry.ErrCaregiverNotFound):
		// a child cannot point at a caregiver that does not exist
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "caregiver not found"})
	case errors.Is(err, registry.ErrNameRequired),
		errors.Is(err, usecase.ErrInvalidDate),
		errors.Is(err, usecase.ErrInvalidAge):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
