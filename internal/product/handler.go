package product

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wichananm65/drone-shop-backend/internal/interface/presenter"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.All("/api/v1/products", h.dispatch)
}

type createRequest struct {
	SellerID      int64           `json:"seller_id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Category      string          `json:"category"`
	ImageURL      *string         `json:"image_url"`
}

type updateRequest struct {
	ID int64 `json:"id"`
	Changes
}

func (h *Handler) dispatch(c *fiber.Ctx) error {
	switch c.Method() {
	case fiber.MethodGet:
		switch c.Query("action") {
		case "bySeller":
			return h.listBySeller(c)
		case "":
			if c.Query("id") != "" {
				return h.getProduct(c)
			}
			return h.getProducts(c)
		default:
			return presenter.InvalidAction(c)
		}
	case fiber.MethodPost:
		return h.createProduct(c)
	case fiber.MethodPut:
		return h.updateProduct(c)
	case fiber.MethodDelete:
		return h.deleteProduct(c)
	default:
		return presenter.MethodNotAllowed(c)
	}
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext(), Filter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		return presenter.Error(c, h.log, err)
	}
	return presenter.Success(c, fiber.StatusOK, fiber.Map{"products": products, "count": len(products)})
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	p, err := h.service.Get(c.UserContext(), presenter.QueryID(c, "id"))
	if err != nil {
		return presenter.Error(c, h.log, err)
	}
	return presenter.Success(c, fiber.StatusOK, fiber.Map{"product": p})
}

func (h *Handler) listBySeller(c *fiber.Ctx) error {
	products, err := h.service.ListBySeller(c.UserContext(), presenter.QueryID(c, "seller_id"))
	if err != nil {
		return presenter.Error(c, h.log, err)
	}
	return presenter.Success(c, fiber.StatusOK, fiber.Map{"products": products, "count": len(products)})
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	payload := new(createRequest)
	if err := c.BodyParser(payload); err != nil {
		return presenter.Failure(c, fiber.StatusBadRequest, "Invalid request body")
	}
	p, err := h.service.Create(c.UserContext(), Product{
		SellerID:      payload.SellerID,
		Name:          payload.Name,
		Description:   payload.Description,
		Price:         payload.Price,
		StockQuantity: payload.StockQuantity,
		Category:      payload.Category,
		ImageURL:      payload.ImageURL,
	})
	if err != nil {
		return presenter.Error(c, h.log, err)
	}
	return presenter.Success(c, fiber.StatusOK, fiber.Map{
		"message":    "Product created successfully",
		"product_id": p.ID,
	})
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	payload := new(updateRequest)
	if err := c.BodyParser(payload); err != nil {
		return presenter.Failure(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.service.Update(c.UserContext(), payload.ID, payload.Changes); err != nil {
		return presenter.Error(c, h.log, err)
	}
	return presenter.Success(c, fiber.StatusOK, fiber.Map{"message": "Product updated successfully"})
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), presenter.QueryID(c, "id")); err != nil {
		return presenter.Error(c, h.log, err)
	}
	return presenter.Success(c, fiber.StatusOK, fiber.Map{"message": "Product deleted successfully"})
}
