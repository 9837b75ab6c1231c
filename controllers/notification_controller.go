package controller

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"teamdesk/middleware"
	"teamdesk/models"
	"teamdesk/store"
	"teamdesk/utils"
	"teamdesk/worker"
)

const maxNotificationLimit = 200

type NotificationController struct {
	Notifications store.Notifications
	Feed          *worker.NotificationFeed
	Logger        *logrus.Entry
}

func NewNotificationController(st store.Notifications, feed *worker.NotificationFeed, logger *logrus.Entry) *NotificationController {
	return &NotificationController{
		Notifications: st,
		Feed:          feed,
		Logger:        logger,
	}
}

func (nc *NotificationController) ListNotifications(c *fiber.Ctx) error {
	limit := utils.QueryLimit(c, "limit", store.DefaultNotificationLimit, maxNotificationLimit)
	notifications, err := nc.Notifications.NotificationsByUserID(c.UserContext(), middleware.CurrentUserID(c), limit)
	if err != nil {
		return writeError(c, err, "Failed to list notifications")
	}
	return c.JSON(utils.SuccessResponse(notifications))
}

func (nc *NotificationController) MarkRead(c *fiber.Ctx) error {
	err := nc.Notifications.MarkNotificationRead(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err, "Failed to update notification")
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"read": true}))
}

// RequireUpgrade rejects plain HTTP requests to websocket routes.
func (nc *NotificationController) RequireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

type notificationMessage struct {
	Type string                `json:"type"`
	Data []models.Notification `json:"data"`
}

// Stream pushes unread notifications to the socket until the client goes away.
func (nc *NotificationController) Stream(conn *websocket.Conn) {
	defer conn.Close()

	userID, _ := conn.Locals(middleware.LocalUserID).(string)
	log := nc.Logger.WithField("user_id", userID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reads only detect the client closing the socket.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	err := nc.Feed.Run(ctx, userID, func(batch []models.Notification) error {
		return conn.WriteJSON(notificationMessage{Type: "notifications", Data: batch})
	})
	if err != nil {
		log.WithError(err).Debug("Notification stream closed")
	}
}
