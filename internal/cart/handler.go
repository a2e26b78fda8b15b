package cart

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/drone-shop-backend/internal/interface/presenter"
)

// Handler delegates cart operations to the cart service.
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
	app.All("/api/v1/cart", h.dispatch)
}

type addRequest struct {
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
	Quantity  *int  `json:"quantity"`
}

type updateRequest struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

func (h *Handler) dispatch(c *fiber.Ctx) error {
	switch c.Method() {
	case fiber.MethodGet:
		if c.Query("action") != "byUser" {
			return presenter.InvalidAction(c)
		}
		return h.list(c)
	case fiber.MethodPost:
		return h.add(c)
	case fiber.MethodPut:
		return h.update(c)
	case fiber.MethodDelete:
		return h.remove(c)
	default:
		return presenter.MethodNotAllowed(c)
	}
}

func (h *Handler) list(c *fiber.Ctx) error {
	summary, err := h.service.List(c.UserContext(), presenter.QueryID(c, "user_id"))
	if err != nil {
		return presenter.Error(c, h.log, err)
	}
	return presenter.Success(c, fiber.StatusOK, fiber.Map{
		"cart_items": summary.Items,
		"total":      summary.Total,
		"count":      summary.Count,
	})
}

func (h *Handler) add(c *fiber.Ctx) error {
	payload := new(addRequest)
	if err := c.BodyParser(payload); err != nil {
		return presenter.Failure(c, fiber.StatusBadRequest, "Invalid request body")
	}
	qty := 1
	if payload.Quantity != nil {
		qty = *payload.Quantity
	}

	id, err := h.service.Add(c.UserContext(), payload.UserID, payload.ProductID, qty)
	if err != nil {
		return presenter.Error(c, h.log, err)
	}
	return presenter.Success(c, fiber.StatusOK, fiber.Map{
		"message":      "Item added to cart",
		"cart_item_id": id,
	})
}

func (h *Handler) update(c *fiber.Ctx) error {
	payload := new(updateRequest)
	if err := c.BodyParser(payload); err != nil {
		return presenter.Failure(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.service.Update(c.UserContext(), payload.ID, payload.Quantity); err != nil {
		return presenter.Error(c, h.log, err)
	}
	return presenter.Success(c, fiber.StatusOK, fiber.Map{"message": "Cart item updated successfully"})
}

func (h *Handler) remove(c *fiber.Ctx) error {
	if err := h.service.Remove(c.UserContext(), presenter.QueryID(c, "id")); err != nil {
		return presenter.Error(c, h.log, err)
	}
	return presenter.Success(c, fiber.StatusOK, fiber.Map{"message": "Item removed from cart"})
}
