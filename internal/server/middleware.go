package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestIDLocal  = "requestid"
	requestIDHeader = "X-Request-ID"
)

// RequestLogger logs one entry per request, tagged with a fresh request id.
func RequestLogger(log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := uuid.NewString()

		c.Locals(requestIDLocal, requestID)
		c.Set(requestIDHeader, requestID)

		err := c.Next()
		if err != nil {
			// run the error handler now so the logged status is the one sent
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		statusCode := c.Response().StatusCode()
		entry := log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"http_method": c.Method(),
			"uri":         c.OriginalURL(),
			"status_code": statusCode,
			"latency_ms":  time.Since(start).Milliseconds(),
			"client_ip":   c.IP(),
		})

		switch {
		case err != nil:
			entry.WithError(err).Error("Request processing failed")
		case statusCode >= 500:
			entry.Error("Request completed with server error")
		case statusCode >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed")
		}

		return nil
	}
}

func requestLog(c *fiber.Ctx, log *logrus.Logger) *logrus.Entry {
	id, _ := c.Locals(requestIDLocal).(string)
	return log.WithField("request_id", id)
}
