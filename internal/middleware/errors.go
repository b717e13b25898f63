package middleware

import (
	"errors"
	"log/slog"

	"looplane/internal/apperrors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the single place errors become HTTP responses.
func ErrorHandler(mapper *apperrors.Mapper, logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		err = fromFiberError(err)
		status, body := mapper.Map(err)

		if status >= fiber.StatusInternalServerError {
			requestID, _ := c.Locals(requestIDHeader).(string)
			logger.Error("request failed",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.String("request_id", requestID),
				slog.Any("error", err),
			)
		}

		return c.Status(status).JSON(body)
	}
}

// fromFiberError classifies errors raised by fiber itself, such as unknown
// routes or unreadable bodies.
func fromFiberError(err error) error {
	var fe *fiber.Error
	if !errors.As(err, &fe) {
		return err
	}

	switch {
	case fe.Code == fiber.StatusNotFound || fe.Code == fiber.StatusMethodNotAllowed:
		return apperrors.Wrap(apperrors.CodeNotFound, fe.Message, fe)
	case fe.Code == fiber.StatusUnauthorized:
		return apperrors.Wrap(apperrors.CodeUnauthenticated, fe.Message, fe)
	case fe.Code == fiber.StatusForbidden:
		return apperrors.Wrap(apperrors.CodeForbidden, fe.Message, fe)
	case fe.Code == fiber.StatusConflict:
		return apperrors.Wrap(apperrors.CodeConflict, fe.Message, fe)
	case fe.Code >= fiber.StatusBadRequest && fe.Code < fiber.StatusInternalServerError:
		return apperrors.Wrap(apperrors.CodeValidation, fe.Message, fe)
	default:
		return apperrors.Internal(fe)
	}
}
