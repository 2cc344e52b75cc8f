package apperror

import (
	"github.com/fekuna/stockroom-service/pkg/logger"
	"github.com/fekuna/stockroom-service/pkg/response"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindInsufficientStock, KindValidation:
		return fiber.StatusBadRequest
	case KindConflict:
		return fiber.StatusConflict
	case KindTimeout:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// Respond writes the failure envelope for err. Internal errors are logged and
// shown as fallback.
func Respond(c *fiber.Ctx, log logger.ZapLogger, err error, fallback string) error {
	if KindOf(err) == KindInternal || KindOf(err) == KindTimeout {
		log.Error(fallback,
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return response.Fail(c, HTTPStatus(err), DisplayMessage(err, fallback))
}
