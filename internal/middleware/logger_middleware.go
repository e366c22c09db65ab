package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestID takes x-request-id from the client or generates one.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: "requestid",
	})
}

// Logger puts a request scoped logger in the user context, handlers pick it
// up with zerolog.Ctx.
func Logger(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid, _ := c.Locals("requestid").(string)
		lg := logger.With().Str("request_id", rid).Logger()
		c.SetUserContext(lg.WithContext(c.UserContext()))

		start := time.Now()
		lg.Debug().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("accepted")

		err := c.Next()
		if err != nil {
			// let the error handler write the response so the status is final
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		lg.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Str("took", time.Since(start).String()).
			Msg("served")
		return nil
	}
}
