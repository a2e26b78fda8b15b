package order

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/drone-shop-backend/internal/interface/presenter"
)

// Handler exposes order placement, status changes and order reads.
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
	app.All("/api/v1/orders", h.dispatch)
}

type placeOrderRequest struct {
	UserID          int64  `json:"user_id"`
	DeliveryDate    string `json:"delivery_date"`
	DeliveryTime    string `json:"delivery_time"`
	DeliveryAddress string `json:"delivery_address"`
}

type updateStatusRequest struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

func (h *Handler) dispatch(c *fiber.Ctx) error {
	switch c.Method() {
	case fiber.MethodGet:
		switch c.Query("action") {
		case "byUser":
			return h.listByUser(c)
		case "bySeller":
			return h.listBySeller(c)
		case "":
			return h.getOrder(c)
		default:
			return presenter.InvalidAction(c)
		}
	case fiber.MethodPost:
		return h.placeOrder(c)
	case fiber.MethodPut:
		if c.Query("action") != "updateStatus" {
			return presenter.InvalidAction(c)
		}
		return h.updateStatus(c)
	default:
		return presenter.MethodNotAllowed(c)
	}
}

func (h *Handler) placeOrder(c *fiber.Ctx) error {
	payload := new(placeOrderRequest)
	if err := c.BodyParser(payload); err != nil {
		return presenter.Failure(c, fiber.StatusBadRequest, "Invalid request body")
	}

	placed, err := h.service.PlaceOrder(c.UserContext(), payload.UserID, DeliveryInfo{
		Date:    payload.DeliveryDate,
		Time:    payload.DeliveryTime,
		Address: payload.DeliveryAddress,
	})
	if err != nil {
		return presenter.Error(c, h.log, err)
	}
	return presenter.Success(c, fiber.StatusOK, fiber.Map{
		"message":      "Order created successfully",
		"order_id":     placed.OrderID,
		"total_amount": placed.TotalAmount,
		"items":        placed.Items,
		"created_at":   placed.CreatedAt,
	})
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	payload := new(updateStatusRequest)
	if err := c.BodyParser(payload); err != nil {
		return presenter.Failure(c, fiber.StatusBadRequest, "Invalid request body")
	}
	status := Status(payload.Status)
	if err := h.service.UpdateStatus(c.UserContext(), payload.OrderID, status); err != nil {
		return presenter.Error(c, h.log, err)
	}
	return presenter.Success(c, fiber.StatusOK, fiber.Map{
		"message": "Order status updated successfully",
		"status":  status,
	})
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	o, err := h.service.Get(c.UserContext(), presenter.QueryID(c, "id"))
	if err != nil {
		return presenter.Error(c, h.log, err)
	}
	return presenter.Success(c, fiber.StatusOK, fiber.Map{"order": o})
}

func (h *Handler) listByUser(c *fiber.Ctx) error {
	orders, err := h.service.ListByUser(c.UserContext(), presenter.QueryID(c, "user_id"))
	if err != nil {
		return presenter.Error(c, h.log, err)
	}
	return presenter.Success(c, fiber.StatusOK, fiber.Map{"orders": orders})
}

func (h *Handler) listBySeller(c *fiber.Ctx) error {
	orders, err := h.service.ListBySeller(c.UserContext(), presenter.QueryID(c, "seller_id"))
	if err != nil {
		return presenter.Error(c, h.log, err)
	}
	return presenter.Success(c, fiber.StatusOK, fiber.Map{"orders": orders})
}
