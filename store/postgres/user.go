package postgres

import (
	"context"
	"strings"
	"time"

	"teamdesk/models"
	"teamdesk/store"
)

func (s *Store) UserByID(ctx context.Context, id string) (models.User, error) {
	db, err := s.db(ctx)
	if err != nil {
		return models.User{}, err
	}
	var row userRow
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		return models.User{}, wrap("user "+id, err)
	}
	return mapUser(row), nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	db, err := s.db(ctx)
	if err != nil {
		return models.User{}, err
	}
	var row userRow
	if err := db.Where("email = ?", strings.ToLower(email)).First(&row).Error; err != nil {
		return models.User{}, wrap("user by email", err)
	}
	return mapUser(row), nil
}

func (s *Store) InsertUser(ctx context.Context, u models.User) (models.User, error) {
	db, err := s.db(ctx)
	if err != nil {
		return models.User{}, err
	}
	row := userRow{
		ID:           store.NewID(u.ID),
		Email:        strings.ToLower(u.Email),
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		CreatedAt:    s.now(),
	}
	if err := db.Create(&row).Error; err != nil {
		return models.User{}, wrap("insert user", err)
	}
	return mapUser(row), nil
}

func (s *Store) InsertAPIKey(ctx context.Context, k models.APIKey) (models.APIKey, error) {
	db, err := s.db(ctx)
	if err != nil {
		return models.APIKey{}, err
	}
	row := apiKeyRow{
		ID:        store.NewID(k.ID),
		UserID:    k.UserID,
		Name:      k.Name,
		Prefix:    k.Prefix,
		KeyHash:   k.KeyHash,
		CreatedAt: s.now(),
	}
	if err := db.Create(&row).Error; err != nil {
		return models.APIKey{}, wrap("insert api key", err)
	}
	return mapAPIKey(row), nil
}

func (s *Store) APIKeysByUserID(ctx context.Context, userID string) ([]models.APIKey, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	var rows []apiKeyRow
	if err := db.Where("user_id = ?", userID).Order(newest("created_at")).Find(&rows).Error; err != nil {
		return nil, wrap("api keys by user", err)
	}
	return mapAll(rows, mapAPIKey), nil
}

func (s *Store) APIKeyByHash(ctx context.Context, hash string) (models.APIKey, error) {
	db, err := s.db(ctx)
	if err != nil {
		return models.APIKey{}, err
	}
	var row apiKeyRow
	if err := db.Where("key_hash = ?", hash).First(&row).Error; err != nil {
		return models.APIKey{}, wrap("api key by hash", err)
	}
	return mapAPIKey(row), nil
}

func (s *Store) TouchAPIKey(ctx context.Context, id string, at time.Time) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}
	if err := db.Model(&apiKeyRow{}).Where("id = ?", id).Update("last_used_at", at).Error; err != nil {
		return wrap("touch api key", err)
	}
	return nil
}

func (s *Store) DeleteAPIKey(ctx context.Context, userID, id string) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}
	res := db.Where("id = ? AND user_id = ?", id, userID).Delete(&apiKeyRow{})
	if res.Error != nil {
		return wrap("delete api key", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("delete api key "+id, store.ErrNotFound)
	}
	return nil
}
