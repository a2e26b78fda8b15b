package category

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/drone-shop-backend/internal/interface/presenter"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(s *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: s, log: log}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.All("/api/v1/categories", h.dispatch)
}

func (h *Handler) dispatch(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodGet {
		return presenter.MethodNotAllowed(c)
	}
	items, err := h.service.List(c.UserContext(), c.QueryInt("limit"))
	if err != nil {
		return presenter.Error(c, h.log, err)
	}
	return presenter.Success(c, fiber.StatusOK, fiber.Map{"categories": items, "count": len(items)})
}
