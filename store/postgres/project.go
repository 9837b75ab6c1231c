package postgres

import (
	"context"

	"teamdesk/models"
	"teamdesk/store"
)

func (s *Store) ProjectByID(ctx context.Context, teamID, projectID string) (models.Project, error) {
	db, err := s.db(ctx)
	if err != nil {
		return models.Project{}, err
	}
	var row projectRow
	if err := db.Where("id = ? AND team_id = ?", projectID, teamID).First(&row).Error; err != nil {
		return models.Project{}, wrap("project "+projectID, err)
	}
	return mapProject(row), nil
}

func (s *Store) ProjectsByWorkspaceID(ctx context.Context, workspaceID string) ([]models.Project, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	var rows []projectRow
	if err := db.Where("workspace_id = ?", workspaceID).Order(newest("updated_at")).Find(&rows).Error; err != nil {
		return nil, wrap("projects by workspace", err)
	}
	return mapAll(rows, mapProject), nil
}

func (s *Store) InsertProject(ctx context.Context, p models.Project) (models.Project, error) {
	if err := store.Required("team_id", p.TeamID); err != nil {
		return models.Project{}, err
	}
	db, err := s.db(ctx)
	if err != nil {
		return models.Project{}, err
	}
	now := s.now()
	row := projectRow{
		ID:          store.NewID(p.ID),
		TeamID:      p.TeamID,
		WorkspaceID: p.WorkspaceID,
		Name:        p.Name,
		Description: nullable(p.Description),
		Status:      nullable(p.Status),
		LeadID:      p.LeadID,
		StartDate:   p.StartDate,
		TargetDate:  p.TargetDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(&row).Error; err != nil {
		return models.Project{}, wrap("insert project", err)
	}
	return mapProject(row), nil
}

// UpdateProject applies the patch and reads the row back.
func (s *Store) UpdateProject(ctx context.Context, teamID, projectID string, patch models.ProjectPatch) (models.Project, error) {
	db, err := s.db(ctx)
	if err != nil {
		return models.Project{}, err
	}

	cols := map[string]interface{}{"updated_at": s.now()}
	if patch.Name != nil {
		cols["name"] = *patch.Name
	}
	if patch.Description != nil {
		cols["description"] = *patch.Description
	}
	if patch.Status != nil {
		cols["status"] = *patch.Status
	}
	setOptional(cols, "lead_id", patch.LeadID)
	setOptional(cols, "start_date", patch.StartDate)
	setOptional(cols, "target_date", patch.TargetDate)

	res := db.Model(&projectRow{}).Where("id = ? AND team_id = ?", projectID, teamID).Updates(cols)
	if res.Error != nil {
		return models.Project{}, wrap("update project", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.Project{}, wrap("update project "+projectID, store.ErrNotFound)
	}

	var row projectRow
	if err := db.Where("id = ?", projectID).First(&row).Error; err != nil {
		return models.Project{}, wrap("project "+projectID, err)
	}
	return mapProject(row), nil
}

func (s *Store) InsertMilestone(ctx context.Context, m models.Milestone) (models.Milestone, error) {
	if err := store.Required("project_id", m.ProjectID); err != nil {
		return models.Milestone{}, err
	}
	db, err := s.db(ctx)
	if err != nil {
		return models.Milestone{}, err
	}
	now := s.now()
	row := milestoneRow{
		ID:          store.NewID(m.ID),
		ProjectID:   m.ProjectID,
		Name:        m.Name,
		Description: nullable(m.Description),
		TargetDate:  m.TargetDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(&row).Error; err != nil {
		return models.Milestone{}, wrap("insert milestone", err)
	}
	return mapMilestone(row), nil
}

func (s *Store) UpdateMilestone(ctx context.Context, projectID, milestoneID string, patch models.MilestonePatch) (models.Milestone, error) {
	db, err := s.db(ctx)
	if err != nil {
		return models.Milestone{}, err
	}

	cols := map[string]interface{}{"updated_at": s.now()}
	if patch.Name != nil {
		cols["name"] = *patch.Name
	}
	if patch.Description != nil {
		cols["description"] = *patch.Description
	}
	setOptional(cols, "target_date", patch.TargetDate)

	res := db.Model(&milestoneRow{}).Where("id = ? AND project_id = ?", milestoneID, projectID).Updates(cols)
	if res.Error != nil {
		return models.Milestone{}, wrap("update milestone", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.Milestone{}, wrap("update milestone "+milestoneID, store.ErrNotFound)
	}

	var row milestoneRow
	if err := db.Where("id = ?", milestoneID).First(&row).Error; err != nil {
		return models.Milestone{}, wrap("milestone "+milestoneID, err)
	}
	return mapMilestone(row), nil
}

func (s *Store) StatusUpdatesByProjectID(ctx context.Context, projectID string) ([]models.StatusUpdate, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	var rows []statusUpdateRow
	if err := db.Where("project_id = ?", projectID).Order(newest("created_at")).Find(&rows).Error; err != nil {
		return nil, wrap("status updates by project", err)
	}
	return mapAll(rows, mapStatusUpdate), nil
}

func (s *Store) StatusUpdateByID(ctx context.Context, projectID, id string) (models.StatusUpdate, error) {
	db, err := s.db(ctx)
	if err != nil {
		return models.StatusUpdate{}, err
	}
	var row statusUpdateRow
	if err := db.Where("id = ? AND project_id = ?", id, projectID).First(&row).Error; err != nil {
		return models.StatusUpdate{}, wrap("status update "+id, err)
	}
	return mapStatusUpdate(row), nil
}

func (s *Store) InsertStatusUpdate(ctx context.Context, u models.StatusUpdate) (models.StatusUpdate, error) {
	if err := store.Required("project_id", u.ProjectID); err != nil {
		return models.StatusUpdate{}, err
	}
	db, err := s.db(ctx)
	if err != nil {
		return models.StatusUpdate{}, err
	}
	row := statusUpdateRow{
		ID:        store.NewID(u.ID),
		ProjectID: u.ProjectID,
		AuthorID:  u.AuthorID,
		Health:    nullable(u.Health),
		Body:      u.Body,
		CreatedAt: s.now(),
	}
	if err := db.Create(&row).Error; err != nil {
		return models.StatusUpdate{}, wrap("insert status update", err)
	}
	return mapStatusUpdate(row), nil
}

func (s *Store) CommentsByStatusUpdateID(ctx context.Context, statusUpdateID string) ([]models.Comment, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	var rows []commentRow
	if err := db.Where("status_update_id = ?", statusUpdateID).Order(oldest("created_at")).Find(&rows).Error; err != nil {
		return nil, wrap("comments by status update", err)
	}
	return mapAll(rows, mapComment), nil
}

func (s *Store) InsertComment(ctx context.Context, c models.Comment) (models.Comment, error) {
	if err := store.Required("status_update_id", c.StatusUpdateID); err != nil {
		return models.Comment{}, err
	}
	db, err := s.db(ctx)
	if err != nil {
		return models.Comment{}, err
	}
	row := commentRow{
		ID:             store.NewID(c.ID),
		StatusUpdateID: c.StatusUpdateID,
		AuthorID:       c.AuthorID,
		Body:           c.Body,
		CreatedAt:      s.now(),
	}
	if err := db.Create(&row).Error; err != nil {
		return models.Comment{}, wrap("insert comment", err)
	}
	return mapComment(row), nil
}
