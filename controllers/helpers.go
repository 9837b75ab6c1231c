package controller

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"

	"teamdesk/config"
	"teamdesk/middleware"
	"teamdesk/models"
	"teamdesk/store"
	"teamdesk/utils"
)

// writeError maps store errors to HTTP statuses. Anything unrecognised is a
// 500 carrying the error text in details.
func writeError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Not found", err)
	case errors.Is(err, store.ErrConflict):
		return utils.ErrorResponse(c, fiber.StatusConflict, "Already exists", err)
	case errors.Is(err, store.ErrInvalidArgument):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request", err)
	case errors.Is(err, config.ErrDatabaseNotConfigured):
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Database not configured", nil)
	case errors.Is(err, context.DeadlineExceeded):
		return utils.ErrorResponse(c, fiber.StatusGatewayTimeout, "Request timed out", nil)
	}

	utils.LogError("store", err, map[string]interface{}{
		"method": c.Method(),
		"path":   c.Path(),
	})
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, message, err)
}

// recordActivity appends to the team's activity log. Failures are logged
// and do not fail the request.
func recordActivity(c *fiber.Ctx, st store.Activities, logger *logrus.Entry, teamID, action, entityType, entityID string) {
	if teamID == "" {
		return
	}
	entry := models.Activity{
		TeamID:     teamID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if userID := middleware.CurrentUserID(c); userID != "" {
		entry.ActorID = &userID
	}
	if _, err := st.InsertActivity(c.UserContext(), entry); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"team_id": teamID,
			"action":  action,
		}).Warn("Failed to record activity")
	}
}

func actorID(c *fiber.Ctx) *string {
	if id := middleware.CurrentUserID(c); id != "" {
		return &id
	}
	return nil
}

// slugify transliterates to ASCII, so "Équipe Café" becomes "equipe-cafe".
func slugify(s string) string {
	return slug.Make(s)
}

// teamKey derives a short uppercase key like "PLA" from a team name.
func teamKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(slugify(name)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == 3 {
			break
		}
	}
	return b.String()
}
