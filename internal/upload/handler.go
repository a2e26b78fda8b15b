package upload

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/drone-shop-backend/internal/interface/presenter"
)

type Handler struct {
	store *Store
	log   *zap.Logger
}

func NewHandler(store *Store, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: store, log: log}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.All("/api/v1/upload", h.dispatch)
}

func (h *Handler) dispatch(c *fiber.Ctx) error {
	switch c.Method() {
	case fiber.MethodPost:
		return h.upload(c)
	case fiber.MethodDelete:
		return h.delete(c)
	default:
		return presenter.MethodNotAllowed(c)
	}
}

func (h *Handler) upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return presenter.Error(c, h.log, ErrNoFile)
	}
	if fh.Size > h.store.MaxBytes() {
		return presenter.Error(c, h.log, h.store.tooLarge())
	}
	f, err := fh.Open()
	if err != nil {
		return presenter.Failure(c, fiber.StatusBadRequest, "Upload error: "+err.Error())
	}
	defer f.Close()

	name, err := h.store.Save(f, fh.Size)
	if err != nil {
		return presenter.Error(c, h.log, err)
	}
	h.log.Info("image stored", zap.String("filename", name), zap.Int64("bytes", fh.Size))
	return presenter.Success(c, fiber.StatusOK, fiber.Map{
		"message":  "Image uploaded successfully",
		"filename": name,
		"imageUrl": URLPrefix + name,
	})
}

func (h *Handler) delete(c *fiber.Ctx) error {
	if err := h.store.Delete(c.Query("filename")); err != nil {
		return presenter.Error(c, h.log, err)
	}
	return presenter.Success(c, fiber.StatusOK, fiber.Map{"message": "Image deleted successfully"})
}
