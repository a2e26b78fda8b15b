package user

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/drone-shop-backend/internal/interface/presenter"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

type registerRequest struct {
	ExternalIdentity string  `json:"external_identity"`
	Email            string  `json:"email"`
	FullName         string  `json:"full_name"`
	Role             string  `json:"role"`
	Phone            *string `json:"phone"`
	Address          *string `json:"address"`
}

type loginRequest struct {
	ExternalIdentity string `json:"external_identity"`
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.All("/api/v1/auth", h.dispatch)
}

// dispatch selects by action first; each action accepts a single method.
func (h *Handler) dispatch(c *fiber.Ctx) error {
	var (
		method string
		next   fiber.Handler
	)
	switch c.Query("action") {
	case "register":
		method, next = fiber.MethodPost, h.register
	case "login":
		method, next = fiber.MethodPost, h.login
	case "getUser":
		method, next = fiber.MethodGet, h.getUser
	default:
		return presenter.InvalidAction(c)
	}
	if c.Method() != method {
		return presenter.MethodNotAllowed(c)
	}
	return next(c)
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(registerRequest)
	if err := c.BodyParser(payload); err != nil {
		return presenter.Failure(c, fiber.StatusBadRequest, "Invalid request body")
	}

	u, err := h.service.Register(c.UserContext(), User{
		ExternalIdentity: payload.ExternalIdentity,
		Email:            payload.Email,
		FullName:         payload.FullName,
		Role:             Role(payload.Role),
		Phone:            payload.Phone,
		Address:          payload.Address,
	})
	if err != nil {
		return presenter.Error(c, h.log, err)
	}
	return presenter.Success(c, fiber.StatusOK, fiber.Map{"message": "User registered successfully", "user": u})
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return presenter.Failure(c, fiber.StatusBadRequest, "Invalid request body")
	}
	u, err := h.service.Login(c.UserContext(), payload.ExternalIdentity)
	if err != nil {
		return presenter.Error(c, h.log, err)
	}
	return presenter.Success(c, fiber.StatusOK, fiber.Map{"message": "Login successful", "user": u})
}

func (h *Handler) getUser(c *fiber.Ctx) error {
	u, err := h.service.GetUser(c.UserContext(), c.Query("external_identity"))
	if err != nil {
		return presenter.Error(c, h.log, err)
	}
	return presenter.Success(c, fiber.StatusOK, fiber.Map{"user": u})
}
