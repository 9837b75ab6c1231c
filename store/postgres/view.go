package postgres

import (
	"context"

	"teamdesk/models"
	"teamdesk/store"
)

func (s *Store) ViewsByTeamID(ctx context.Context, teamID string) ([]models.View, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	var rows []viewRow
	if err := db.Where("team_id = ?", teamID).Order(oldest("name")).Find(&rows).Error; err != nil {
		return nil, wrap("views by team", err)
	}
	return mapAll(rows, mapView), nil
}

func (s *Store) ViewsWithoutTeamID(ctx context.Context, workspaceID string) ([]models.View, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	var rows []viewRow
	err = db.Where("workspace_id = ? AND team_id IS NULL", workspaceID).
		Order(oldest("name")).
		Find(&rows).Error
	if err != nil {
		return nil, wrap("views without team", err)
	}
	return mapAll(rows, mapView), nil
}

func (s *Store) InsertView(ctx context.Context, v models.View) (models.View, error) {
	db, err := s.db(ctx)
	if err != nil {
		return models.View{}, err
	}
	row := viewRow{
		ID:          store.NewID(v.ID),
		WorkspaceID: v.WorkspaceID,
		TeamID:      v.TeamID,
		Name:        v.Name,
		CreatedAt:   s.now(),
	}
	if len(v.Filters) > 0 {
		filters := string(v.Filters)
		row.Filters = &filters
	}
	if err := db.Create(&row).Error; err != nil {
		return models.View{}, wrap("insert view", err)
	}
	return mapView(row), nil
}
