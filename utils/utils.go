package utils

import (
	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorResponse creates a standardized error response
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	response := fiber.Map{
		"success": false,
		"error":   message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	return c.Status(status).JSON(response)
}

// SuccessResponse creates a standardized success response
func SuccessResponse(data interface{}) fiber.Map {
	return fiber.Map{
		"success": true,
		"data":    data,
	}
}

// QueryLimit reads a positive integer query parameter, clamped to max.
// Missing or malformed values give fallback.
func QueryLimit(c *fiber.Ctx, key string, fallback, max int) int {
	n := c.QueryInt(key, fallback)
	if n <= 0 {
		return fallback
	}
	if n > max {
		return max
	}
	return n
}

// LogError logs the error with its context and reports it to Sentry.
func LogError(errorType string, err error, context map[string]interface{}) {
	log := logrus.WithFields(logrus.Fields{
		"error_type": errorType,
		"error":      err.Error(),
	})
	for k, v := range context {
		log = log.WithField(k, v)
	}
	log.Error("Error occurred")

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error_type", errorType)
		for k, v := range context {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}

// LogEvent logs an event with structured data
func LogEvent(eventType string, data map[string]interface{}) {
	logrus.WithField("event_type", eventType).WithFields(logrus.Fields(data)).Info("Event")

	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Category: eventType,
		Data:     data,
		Level:    sentry.LevelInfo,
	})
}
