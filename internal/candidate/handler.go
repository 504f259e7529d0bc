package candidate

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/isoilaj/caregiver-registry/internal/auth"
	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
	"github.com/isoilaj/caregiver-registry/internal/infrastructure/workbook"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/candidates", h.list)
	app.Get("/api/v1/candidates/stats", h.stats)
	app.Post("/api/v1/candidates/upload", h.upload)
	app.Put("/api/v1/candidates/:id", h.update)
	app.Patch("/api/v1/candidates/status", h.setStatus)
	app.Delete("/api/v1/candidates", h.delete)
}

type candidateResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	UploadedAt string `json:"uploadDate"`
	Notes      string `json:"notes,omitempty"`
	VerifiedAt string `json:"verifiedDate,omitempty"`
	VerifiedBy string `json:"verifiedBy,omitempty"`
}

func toResponse(c entity.Candidate) candidateResponse {
	r := candidateResponse{
		ID:         c.ID,
		Name:       c.Name,
		Status:     string(c.Status),
		UploadedAt: c.UploadedAt.UTC().Format(time.RFC3339),
		Notes:      c.Notes,
		VerifiedBy: c.VerifiedBy,
	}
	if c.VerifiedAt != nil {
		r.VerifiedAt = c.VerifiedAt.UTC().Format(time.RFC3339)
	}
	return r
}

func (h *Handler) list(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext(), c.Query("status"), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]candidateResponse, 0, len(list))
	for _, cand := range list {
		out = append(out, toResponse(cand))
	}
	return c.JSON(out)
}

func (h *Handler) stats(c *fiber.Ctx) error {
	st, err := h.service.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(st)
}

func (h *Handler) upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "file is required"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	defer src.Close()

	res, err := h.service.Upload(c.UserContext(), fh.Filename, src, c.FormValue("column"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) update(c *fiber.Ctx) error {
	var payload struct {
		Name  string `json:"name"`
		Notes string `json:"notes"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	updated, err := h.service.Update(c.UserContext(), c.Params("id"), payload.Name, payload.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toResponse(updated))
}

func (h *Handler) setStatus(c *fiber.Ctx) error {
	operator, err := auth.OperatorFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	var payload struct {
		IDs    []string `json:"ids"`
		Status string   `json:"status"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if len(payload.IDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "ids are required"})
	}
	n, err := h.service.SetStatus(c.UserContext(), payload.IDs, payload.Status, operator)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}

func (h *Handler) delete(c *fiber.Ctx) error {
	var payload struct {
		IDs []string `json:"ids"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if len(payload.IDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "ids are required"})
	}
	n, err := h.service.Delete(c.UserContext(), payload.IDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": n})
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrNoNameColumn),
		errors.Is(err, ErrNameRequired), errors.Is(err, workbook.ErrUnsupportedFile):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
