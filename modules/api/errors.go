package api

import (
	"errors"

	domain "github.com/example/task-tracker-demo/domain/task"
	"github.com/gofiber/fiber/v2"
)

// writeError maps service errors onto HTTP status codes.
func (m *APIModule) writeError(c *fiber.Ctx, err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   codeValidation,
			Message: verr.Error(),
		})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   codeNotFound,
			Message: "Task not found",
		})
	case errors.Is(err, domain.ErrStoreUnavailable):
		m.logger.Error("Task store unavailable", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error:   codeStoreUnavailable,
			Message: "Task store is unavailable",
		})
	default:
		m.logger.Error("Unhandled error", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   codeServerError,
			Message: "Internal Server Error",
		})
	}
}

// invalidRequest reports an unparsable body or path parameter.
func invalidRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   codeInvalidRequest,
		Message: message,
	})
}

// errorHandler handles errors that escape route handlers, such as unknown
// routes and recovered panics.
func (m *APIModule) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	errCode := codeServerError
	switch {
	case code == fiber.StatusNotFound:
		errCode = codeNotFound
	case code >= 400 && code < 500:
		errCode = codeInvalidRequest
	default:
		m.logger.Error("HTTP error", "code", code, "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}
