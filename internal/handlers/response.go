package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/career-assistant/internal/apperror"
	"alfredoptarigan/career-assistant/internal/models"
)

// writeError renders err as {error, message, suggestion} with the status its kind maps to.
func writeError(c *fiber.Ctx, err error) error {
	appErr := apperror.From(err)
	return c.Status(appErr.Status).JSON(models.ErrorResponse{
		Error:      string(appErr.Kind),
		Message:    appErr.Message,
		Suggestion: appErr.Suggestion,
	})
}

func notFound(c *fiber.Ctx, message, suggestion string) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
		Error:      "not_found",
		Message:    message,
		Suggestion: suggestion,
	})
}

// ErrorHandler is the fiber ErrorHandler. Framework errors keep their status
// code and use the same body shape as application errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		tag := "request_error"
		switch fe.Code {
		case fiber.StatusNotFound:
			tag = "not_found"
		case fiber.StatusRequestEntityTooLarge:
			tag = "payload_too_large"
		case fiber.StatusMethodNotAllowed:
			tag = "method_not_allowed"
		}
		return c.Status(fe.Code).JSON(models.ErrorResponse{
			Error:   tag,
			Message: fe.Message,
		})
	}

	return writeError(c, err)
}
