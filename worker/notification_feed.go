package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"teamdesk/models"
	"teamdesk/store"
)

const defaultFeedInterval = 15 * time.Second

// NotificationFeed polls a user's notifications and hands unseen unread
// ones to a sender.
type NotificationFeed struct {
	store    store.Notifications
	interval time.Duration
	logger   *logrus.Entry
}

func NewNotificationFeed(st store.Notifications, interval time.Duration, logger *logrus.Entry) *NotificationFeed {
	if interval <= 0 {
		interval = defaultFeedInterval
	}
	return &NotificationFeed{
		store:    st,
		interval: interval,
		logger:   logger,
	}
}

// Run polls immediately and then on every tick until ctx is done or send
// fails. Each notification is sent at most once per Run.
func (nf *NotificationFeed) Run(ctx context.Context, userID string, send func([]models.Notification) error) error {
	log := nf.logger.WithField("user_id", userID)
	log.Debug("Starting notification feed")

	ticker := time.NewTicker(nf.interval)
	defer ticker.Stop()

	seen := make(map[string]struct{})
	for {
		if err := nf.poll(ctx, userID, seen, send); err != nil {
			return err
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			log.Debug("Stopping notification feed")
			return nil
		}
	}
}

func (nf *NotificationFeed) poll(ctx context.Context, userID string, seen map[string]struct{}, send func([]models.Notification) error) error {
	notifications, err := nf.store.NotificationsByUserID(ctx, userID, store.DefaultNotificationLimit)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		// Store hiccups are retried on the next tick.
		nf.logger.WithError(err).WithField("user_id", userID).Warn("Failed to poll notifications")
		return nil
	}

	var batch []models.Notification
	for _, n := range notifications {
		if n.Read {
			continue
		}
		if _, ok := seen[n.ID]; ok {
			continue
		}
		seen[n.ID] = struct{}{}
		batch = append(batch, n)
	}
	if len(batch) == 0 {
		return nil
	}
	return send(batch)
}
