package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/wichananm65/digital-store-backend/internal/apperr"
)

// New builds the process logger. Development gets a human readable console
// writer, every other environment writes JSON lines to stdout.
func New(env, level string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if env == "development" {
		cw := zerolog.NewConsoleWriter()
		cw.TimeFormat = time.RFC3339
		cw.FormatLevel = func(i interface{}) string {
			return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
		}
		out = cw
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// Named returns a child logger tagged with a component name.
func Named(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("name", name).Logger()
}

// Requests logs one line per request once the handler chain has finished.
// It must be registered after the requestid middleware to pick up the id.
func Requests(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = apperr.KindOf(err).Status()
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		event := logger.Info()
		if status >= fiber.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("request_id", requestID(c)).
			Str("method", c.Method()).
			Str("path", c.OriginalURL()).
			Str("from", c.IP()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Send()

		return err
	}
}

func requestID(c *fiber.Ctx) string {
	if v, ok := c.Locals("requestid").(string); ok {
		return v
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
