package postgres

import (
	"context"

	"teamdesk/models"
	"teamdesk/store"
)

func (s *Store) IssuesByTeamID(ctx context.Context, teamID string) ([]models.Issue, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	var rows []issueRow
	if err := db.Where("team_id = ?", teamID).Order(newest("updated_at")).Find(&rows).Error; err != nil {
		return nil, wrap("issues by team", err)
	}
	return mapAll(rows, mapIssue), nil
}

func (s *Store) InsertIssue(ctx context.Context, i models.Issue) (models.Issue, error) {
	if err := store.Required("team_id", i.TeamID); err != nil {
		return models.Issue{}, err
	}
	db, err := s.db(ctx)
	if err != nil {
		return models.Issue{}, err
	}
	now := s.now()
	row := issueRow{
		ID:          store.NewID(i.ID),
		TeamID:      i.TeamID,
		ProjectID:   i.ProjectID,
		Title:       i.Title,
		Description: nullable(i.Description),
		Status:      nullable(i.Status),
		Priority:    i.Priority,
		AssigneeID:  i.AssigneeID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(&row).Error; err != nil {
		return models.Issue{}, wrap("insert issue", err)
	}
	return mapIssue(row), nil
}

func (s *Store) UpdateIssue(ctx context.Context, id string, patch models.IssuePatch) (models.Issue, error) {
	db, err := s.db(ctx)
	if err != nil {
		return models.Issue{}, err
	}

	cols := map[string]interface{}{"updated_at": s.now()}
	if patch.Title != nil {
		cols["title"] = *patch.Title
	}
	if patch.Description != nil {
		cols["description"] = *patch.Description
	}
	if patch.Status != nil {
		cols["status"] = *patch.Status
	}
	if patch.Priority != nil {
		cols["priority"] = *patch.Priority
	}
	setOptional(cols, "assignee_id", patch.AssigneeID)
	setOptional(cols, "project_id", patch.ProjectID)

	res := db.Model(&issueRow{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return models.Issue{}, wrap("update issue", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.Issue{}, wrap("update issue "+id, store.ErrNotFound)
	}

	var row issueRow
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		return models.Issue{}, wrap("issue "+id, err)
	}
	return mapIssue(row), nil
}
