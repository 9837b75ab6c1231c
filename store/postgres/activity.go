package postgres

import (
	"context"

	"teamdesk/models"
	"teamdesk/store"
)

func (s *Store) ActivityByTeamID(ctx context.Context, teamID string, limit int) ([]models.Activity, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	var rows []activityRow
	err = db.Where("team_id = ?", teamID).
		Order(newest("date")).
		Limit(limitOr(limit, store.DefaultActivityLimit)).
		Find(&rows).Error
	if err != nil {
		return nil, wrap("activity by team", err)
	}
	return mapAll(rows, mapActivity), nil
}

func (s *Store) InsertActivity(ctx context.Context, a models.Activity) (models.Activity, error) {
	if err := store.Required("team_id", a.TeamID); err != nil {
		return models.Activity{}, err
	}
	db, err := s.db(ctx)
	if err != nil {
		return models.Activity{}, err
	}
	row := activityRow{
		ID:         store.NewID(a.ID),
		TeamID:     a.TeamID,
		ActorID:    a.ActorID,
		Action:     a.Action,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		Date:       a.Date,
	}
	if row.Date.IsZero() {
		row.Date = s.now()
	}
	if err := db.Create(&row).Error; err != nil {
		return models.Activity{}, wrap("insert activity", err)
	}
	return mapActivity(row), nil
}

func (s *Store) NotificationsByUserID(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	var rows []notificationRow
	err = db.Where("user_id = ?", userID).
		Order(newest("created_at")).
		Limit(limitOr(limit, store.DefaultNotificationLimit)).
		Find(&rows).Error
	if err != nil {
		return nil, wrap("notifications by user", err)
	}
	return mapAll(rows, mapNotification), nil
}

func (s *Store) InsertNotification(ctx context.Context, n models.Notification) (models.Notification, error) {
	db, err := s.db(ctx)
	if err != nil {
		return models.Notification{}, err
	}
	row := notificationRow{
		ID:        store.NewID(n.ID),
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      nullable(n.Body),
		Read:      n.Read,
		CreatedAt: s.now(),
	}
	if err := db.Create(&row).Error; err != nil {
		return models.Notification{}, wrap("insert notification", err)
	}
	return mapNotification(row), nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, userID, id string) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}
	res := db.Model(&notificationRow{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return wrap("mark notification read", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("mark notification read", store.ErrNotFound)
	}
	return nil
}
