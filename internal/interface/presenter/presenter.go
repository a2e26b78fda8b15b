package presenter

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/drone-shop-backend/internal/apperror"
)

// Success writes {"success": true, ...fields} with the given status.
func Success(c *fiber.Ctx, status int, fields fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

// Failure writes {"success": false, "message": msg}.
func Failure(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": msg})
}

// Error maps err to a status code through its apperror kind. Storage errors
// are logged with their cause and reported with a generic message.
func Error(c *fiber.Ctx, log *zap.Logger, err error) error {
	kind := apperror.KindOf(err)
	if kind == apperror.KindStorage && log != nil {
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Any("request_id", c.Locals("request_id")),
			zap.Error(err),
		)
	}
	return Failure(c, StatusFor(kind), apperror.Message(err))
}

// StatusFor returns the HTTP status for an error kind.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation, apperror.KindConflict:
		return fiber.StatusBadRequest
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindMethodNotAllowed:
		return fiber.StatusMethodNotAllowed
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders framework errors (unmatched routes, oversized bodies)
// in the same envelope as handler failures.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return Failure(c, fe.Code, fe.Message)
		}
		return Error(c, log, err)
	}
}

// MethodNotAllowed is the fallback branch of every method dispatcher.
func MethodNotAllowed(c *fiber.Ctx) error {
	return Failure(c, fiber.StatusMethodNotAllowed, "Method not allowed")
}

// InvalidAction is returned when the action query parameter is unknown.
func InvalidAction(c *fiber.Ctx) error {
	return Failure(c, fiber.StatusBadRequest, "Invalid action")
}

// QueryID parses a positive integer query parameter, returning 0 when it is
// absent or malformed.
func QueryID(c *fiber.Ctx, key string) int64 {
	id, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}
