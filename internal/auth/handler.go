package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/v1/sign-in", h.signIn)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/me", h.me)
}

type signInRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *Handler) signIn(c *fiber.Ctx) error {
	payload := new(signInRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	err := h.service.Authenticate(payload.Name, payload.Password)
	switch {
	case errors.Is(err, ErrNotConfigured):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": err.Error()})
	case err != nil:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid name or password"})
	}

	signed, expires, err := h.service.IssueToken(payload.Name)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to generate token"})
	}
	return c.JSON(fiber.Map{
		"message":   "Sign-in successful",
		"operator":  payload.Name,
		"token":     signed,
		"expiresAt": expires.UTC(),
	})
}

func (h *Handler) me(c *fiber.Ctx) error {
	name, err := OperatorFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	return c.JSON(fiber.Map{"operator": name})
}

// Middleware rejects requests without a valid operator token. Routes
// registered after it on the app are protected.
func Middleware(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: []byte(secret),
	})
}

// OperatorFromCtx extracts the operator claim from the JWT token stored in
// c.Locals("user").
func OperatorFromCtx(c *fiber.Ctx) (string, error) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return "", fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", fiber.ErrUnauthorized
	}
	name, ok := claims["operator"].(string)
	if !ok || name == "" {
		return "", fiber.ErrUnauthorized
	}
	return name, nil
}
