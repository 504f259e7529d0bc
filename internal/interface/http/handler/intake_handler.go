// Package handler adapts HTTP requests to the registry use cases.
package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/isoilaj/caregiver-registry/internal/auth"
	"github.com/isoilaj/caregiver-registry/internal/interface/presenter"
	"github.com/isoilaj/caregiver-registry/internal/registry"
	"github.com/isoilaj/caregiver-registry/internal/usecase"
)

// IntakeHandler accepts whole form submissions: a caregiver and the rows of
// its children.
type IntakeHandler struct {
	usecase   usecase.IntakeUsecase
	presenter *presenter.RegistryPresenter
}

func NewIntakeHandler(usecase usecase.IntakeUsecase, presenter *presenter.RegistryPresenter) *IntakeHandler {
	return &IntakeHandler{usecase: usecase, presenter: presenter}
}

func (h *IntakeHandler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/intake", h.Submit)
}

type intakeResponse struct {
	Caregiver presenter.CaregiverResponse `json:"caregiver"`
	Merged    bool                        `json:"merged"`
	Created   int                         `json:"created"`
	Updated   int                         `json:"updated"`
	Removed   int                         `json:"removed"`
}

func (h *IntakeHandler) Submit(c *fiber.Ctx) error {
	operator, err := auth.OperatorFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	var input usecase.IntakeInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid json body"})
	}

	res, err := h.usecase.Submit(c.UserContext(), operator, input)
	var rowErr *registry.RowError
	switch {
	case errors.As(err, &rowErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": rowErr.Error(), "rows": rowErr.Rows})
	case errors.Is(err, registry.ErrNameRequired), errors.Is(err, registry.ErrInvalidStatus),
		errors.Is(err, usecase.ErrInvalidDate), errors.Is(err, usecase.ErrInvalidAge):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, registry.ErrCaregiverNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	status := fiber.StatusCreated
	if res.Merged {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(intakeResponse{
		Caregiver: h.presenter.CaregiverWithChildren(res.Caregiver, res.Children),
		Merged:    res.Merged,
		Created:   res.Created,
		Updated:   res.Updated,
		Removed:   res.Removed,
	})
}
