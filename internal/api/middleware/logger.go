// Package middleware holds the fiber middleware shared by the API
package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/talentpad/presale/internal/logger"
	"github.com/talentpad/presale/internal/metrics"
)

// Logger returns a middleware that logs HTTP requests and records their metrics.
// Errors returned by the chain are rendered here so the logged status is final.
func Logger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		latency := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Name

		metrics.ObserveHTTPRequest(c.Method(), route, status, latency)

		fields := logger.Fields{
			"status":  status,
			"latency": latency.String(),
			"ip":      c.IP(),
			"method":  c.Method(),
			"path":    c.Path(),
			"handler": route,
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			logger.ErrorWithFields("Request", fields)
		case status >= fiber.StatusBadRequest:
			logger.WarnWithFields("Request", fields)
		default:
			logger.InfoWithFields("Request", fields)
		}

		return nil
	}
}
