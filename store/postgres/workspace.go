package postgres

import (
	"context"
	"strings"

	"teamdesk/models"
	"teamdesk/store"
)

func (s *Store) Workspaces(ctx context.Context) ([]models.Workspace, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	var rows []workspaceRow
	if err := db.Order(oldest("name")).Find(&rows).Error; err != nil {
		return nil, wrap("list workspaces", err)
	}
	return mapAll(rows, mapWorkspace), nil
}

func (s *Store) WorkspaceByID(ctx context.Context, id string) (models.Workspace, error) {
	db, err := s.db(ctx)
	if err != nil {
		return models.Workspace{}, err
	}
	var row workspaceRow
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		return models.Workspace{}, wrap("workspace "+id, err)
	}
	return mapWorkspace(row), nil
}

func (s *Store) InsertWorkspace(ctx context.Context, w models.Workspace) (models.Workspace, error) {
	db, err := s.db(ctx)
	if err != nil {
		return models.Workspace{}, err
	}
	row := workspaceRow{
		ID:        store.NewID(w.ID),
		Name:      w.Name,
		Slug:      w.Slug,
		CreatedAt: s.now(),
	}
	if err := db.Create(&row).Error; err != nil {
		return models.Workspace{}, wrap("insert workspace", err)
	}
	return mapWorkspace(row), nil
}

func (s *Store) TeamByID(ctx context.Context, id string) (models.Team, error) {
	db, err := s.db(ctx)
	if err != nil {
		return models.Team{}, err
	}
	var row teamRow
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		return models.Team{}, wrap("team "+id, err)
	}
	return mapTeam(row), nil
}

func (s *Store) TeamsByWorkspaceID(ctx context.Context, workspaceID string) ([]models.Team, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	var rows []teamRow
	if err := db.Where("workspace_id = ?", workspaceID).Order(oldest("name")).Find(&rows).Error; err != nil {
		return nil, wrap("teams by workspace", err)
	}
	return mapAll(rows, mapTeam), nil
}

func (s *Store) InsertTeam(ctx context.Context, t models.Team) (models.Team, error) {
	if err := store.Required("workspace_id", t.WorkspaceID); err != nil {
		return models.Team{}, err
	}
	db, err := s.db(ctx)
	if err != nil {
		return models.Team{}, err
	}
	row := teamRow{
		ID:          store.NewID(t.ID),
		WorkspaceID: t.WorkspaceID,
		Name:        t.Name,
		Key:         t.Key,
		CreatedAt:   s.now(),
	}
	if err := db.Create(&row).Error; err != nil {
		return models.Team{}, wrap("insert team", err)
	}
	return mapTeam(row), nil
}

func (s *Store) MembersByWorkspaceID(ctx context.Context, workspaceID string) ([]models.Member, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	var rows []memberRow
	if err := db.Where("workspace_id = ?", workspaceID).Order(oldest("created_at")).Find(&rows).Error; err != nil {
		return nil, wrap("members by workspace", err)
	}
	return mapAll(rows, mapMember), nil
}

func (s *Store) InsertMember(ctx context.Context, m models.Member) (models.Member, error) {
	if err := store.Required("workspace_id", m.WorkspaceID); err != nil {
		return models.Member{}, err
	}
	db, err := s.db(ctx)
	if err != nil {
		return models.Member{}, err
	}
	row := memberRow{
		ID:          store.NewID(m.ID),
		WorkspaceID: m.WorkspaceID,
		TeamID:      m.TeamID,
		UserID:      m.UserID,
		Email:       strings.ToLower(m.Email),
		Name:        m.Name,
		RoleID:      m.RoleID,
		CreatedAt:   s.now(),
	}
	if err := db.Create(&row).Error; err != nil {
		return models.Member{}, wrap("insert member", err)
	}
	return mapMember(row), nil
}

func (s *Store) RolesByWorkspaceID(ctx context.Context, workspaceID string) ([]models.Role, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	var rows []roleRow
	if err := db.Where("workspace_id = ?", workspaceID).Order(oldest("name")).Find(&rows).Error; err != nil {
		return nil, wrap("roles by workspace", err)
	}
	return mapAll(rows, mapRole), nil
}

func (s *Store) InsertRole(ctx context.Context, r models.Role) (models.Role, error) {
	db, err := s.db(ctx)
	if err != nil {
		return models.Role{}, err
	}
	row := roleRow{
		ID:          store.NewID(r.ID),
		WorkspaceID: r.WorkspaceID,
		Name:        r.Name,
		Description: nullable(r.Description),
		CreatedAt:   s.now(),
	}
	if err := db.Create(&row).Error; err != nil {
		return models.Role{}, wrap("insert role", err)
	}
	return mapRole(row), nil
}

func (s *Store) InsertInvitation(ctx context.Context, inv models.Invitation) (models.Invitation, error) {
	db, err := s.db(ctx)
	if err != nil {
		return models.Invitation{}, err
	}
	row := invitationRow{
		ID:          store.NewID(inv.ID),
		WorkspaceID: inv.WorkspaceID,
		Email:       inv.Email,
		RoleID:      inv.RoleID,
		CreatedAt:   s.now(),
	}
	if err := db.Create(&row).Error; err != nil {
		return models.Invitation{}, wrap("insert invitation", err)
	}
	return mapInvitation(row), nil
}

func (s *Store) InvitationByID(ctx context.Context, id string) (models.Invitation, error) {
	db, err := s.db(ctx)
	if err != nil {
		return models.Invitation{}, err
	}
	var row invitationRow
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		return models.Invitation{}, wrap("invitation "+id, err)
	}
	return mapInvitation(row), nil
}

func (s *Store) InvitationsByWorkspaceID(ctx context.Context, workspaceID string) ([]models.Invitation, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	var rows []invitationRow
	if err := db.Where("workspace_id = ?", workspaceID).Order(newest("created_at")).Find(&rows).Error; err != nil {
		return nil, wrap("invitations by workspace", err)
	}
	return mapAll(rows, mapInvitation), nil
}
