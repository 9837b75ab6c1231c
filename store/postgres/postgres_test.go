package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"teamdesk/config"
	"teamdesk/models"
	"teamdesk/store"
)

type staticConn struct{ db *gorm.DB }

func (c staticConn) DB() (*gorm.DB, error) { return c.db, nil }

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	conn := staticConn{db: db}
	require.NoError(t, Migrate(context.Background(), conn))
	return New(conn)
}

func ptr(s string) *string { return &s }

func TestActivityByTeamIDLimitAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := s.InsertActivity(ctx, models.Activity{
			TeamID: "team-1",
			Action: "issue.updated",
			Date:   base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	_, err := s.InsertActivity(ctx, models.Activity{TeamID: "team-2", Action: "issue.created", Date: base.Add(time.Hour)})
	require.NoError(t, err)

	got, err := s.ActivityByTeamID(ctx, "team-1", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, a := range got {
		require.Equal(t, "team-1", a.TeamID)
		if i > 0 {
			require.False(t, a.Date.After(got[i-1].Date), "entries must be newest first")
		}
	}
	require.True(t, got[0].Date.Equal(base.Add(4*time.Minute)))

	all, err := s.ActivityByTeamID(ctx, "team-1", 0)
	require.NoError(t, err)
	require.Len(t, all, 5)

	none, err := s.ActivityByTeamID(ctx, "team-3", 10)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestInsertInvitationThenGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	inserted, err := s.InsertInvitation(ctx, models.Invitation{ID: "abc", Email: "a@b.com", RoleID: nil})
	require.NoError(t, err)
	require.Equal(t, "abc", inserted.ID)

	got, err := s.InvitationByID(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, "abc", got.ID)
	require.Equal(t, "a@b.com", got.Email)
	require.Nil(t, got.RoleID)
	require.Nil(t, got.WorkspaceID)
	require.False(t, got.CreatedAt.IsZero())

	_, err = s.InvitationByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.InsertInvitation(ctx, models.Invitation{ID: "abc", Email: "c@d.com"})
	require.ErrorIs(t, err, store.ErrConflict)
}

func TestInsertInvitationGeneratesID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	inserted, err := s.InsertInvitation(ctx, models.Invitation{WorkspaceID: ptr("ws-1"), Email: "x@y.com", RoleID: ptr("role-1")})
	require.NoError(t, err)
	require.NotEmpty(t, inserted.ID)

	list, err := s.InvitationsByWorkspaceID(ctx, "ws-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "role-1", *list[0].RoleID)
}

func TestViewsWithAndWithoutTeam(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	views := []models.View{
		{WorkspaceID: "ws-1", TeamID: ptr("team-1"), Name: "Team one bugs", Filters: json.RawMessage(`{"label":"bug"}`)},
		{WorkspaceID: "ws-1", TeamID: ptr("team-2"), Name: "Team two"},
		{WorkspaceID: "ws-1", Name: "All open"},
		{WorkspaceID: "ws-2", Name: "Other workspace"},
	}
	for _, v := range views {
		_, err := s.InsertView(ctx, v)
		require.NoError(t, err)
	}

	teamViews, err := s.ViewsByTeamID(ctx, "team-1")
	require.NoError(t, err)
	require.Len(t, teamViews, 1)
	require.Equal(t, "team-1", *teamViews[0].TeamID)
	require.JSONEq(t, `{"label":"bug"}`, string(teamViews[0].Filters))

	wsViews, err := s.ViewsWithoutTeamID(ctx, "ws-1")
	require.NoError(t, err)
	require.Len(t, wsViews, 1)
	require.Nil(t, wsViews[0].TeamID)
	require.Equal(t, "All open", wsViews[0].Name)
	require.JSONEq(t, `{}`, string(wsViews[0].Filters))
}

func TestUpdateProject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.InsertProject(ctx, models.Project{TeamID: "team-1", WorkspaceID: "ws-1", Name: "Launch"})
	require.NoError(t, err)
	require.Equal(t, models.ProjectPlanned, p.Status)

	name := "Launch v2"
	status := models.ProjectActive
	updated, err := s.UpdateProject(ctx, "team-1", p.ID, models.ProjectPatch{Name: &name, Status: &status})
	require.NoError(t, err)
	require.Equal(t, "Launch v2", updated.Name)
	require.Equal(t, models.ProjectActive, updated.Status)

	_, err = s.UpdateProject(ctx, "team-2", p.ID, models.ProjectPatch{Name: &name})
	require.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.ProjectByID(ctx, "team-1", p.ID)
	require.NoError(t, err)
	require.Equal(t, "Launch v2", got.Name)

	list, err := s.ProjectsByWorkspaceID(ctx, "ws-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestUpdateIssueAndMilestone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	issue, err := s.InsertIssue(ctx, models.Issue{TeamID: "team-1", Title: "Crash on save"})
	require.NoError(t, err)
	require.Equal(t, models.IssueBacklog, issue.Status)

	done := models.IssueDone
	prio := 2
	updated, err := s.UpdateIssue(ctx, issue.ID, models.IssuePatch{Status: &done, Priority: &prio})
	require.NoError(t, err)
	require.Equal(t, models.IssueDone, updated.Status)
	require.Equal(t, 2, updated.Priority)

	_, err = s.UpdateIssue(ctx, "missing", models.IssuePatch{Status: &done})
	require.ErrorIs(t, err, store.ErrNotFound)

	m, err := s.InsertMilestone(ctx, models.Milestone{ProjectID: "proj-1", Name: "Beta"})
	require.NoError(t, err)
	name := "Public beta"
	m2, err := s.UpdateMilestone(ctx, "proj-1", m.ID, models.MilestonePatch{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Public beta", m2.Name)

	_, err = s.UpdateMilestone(ctx, "proj-2", m.ID, models.MilestonePatch{Name: &name})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateWritesNullForClearedFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	target := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	issue, err := s.InsertIssue(ctx, models.Issue{TeamID: "team-1", Title: "Crash on save", AssigneeID: ptr("u1"), ProjectID: ptr("proj-1")})
	require.NoError(t, err)

	issue, err = s.UpdateIssue(ctx, issue.ID, models.IssuePatch{AssigneeID: models.Null[string]()})
	require.NoError(t, err)
	require.Nil(t, issue.AssigneeID)
	require.Equal(t, "proj-1", *issue.ProjectID)

	issue, err = s.UpdateIssue(ctx, issue.ID, models.IssuePatch{AssigneeID: models.Some("u2"), ProjectID: models.Null[string]()})
	require.NoError(t, err)
	require.Equal(t, "u2", *issue.AssigneeID)
	require.Nil(t, issue.ProjectID)

	p, err := s.InsertProject(ctx, models.Project{TeamID: "team-1", WorkspaceID: "ws-1", Name: "Launch", LeadID: ptr("u1"), StartDate: &target})
	require.NoError(t, err)
	p, err = s.UpdateProject(ctx, "team-1", p.ID, models.ProjectPatch{LeadID: models.Null[string](), StartDate: models.Null[time.Time]()})
	require.NoError(t, err)
	require.Nil(t, p.LeadID)
	require.Nil(t, p.StartDate)

	m, err := s.InsertMilestone(ctx, models.Milestone{ProjectID: p.ID, Name: "Beta", TargetDate: &target})
	require.NoError(t, err)
	m, err = s.UpdateMilestone(ctx, p.ID, m.ID, models.MilestonePatch{TargetDate: models.Null[time.Time]()})
	require.NoError(t, err)
	require.Nil(t, m.TargetDate)
}

func TestInsertRejectsMissingParent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.InsertProject(ctx, models.Project{WorkspaceID: "ws-1", Name: "Launch"})
	require.ErrorIs(t, err, store.ErrInvalidArgument)
	_, err = s.InsertMember(ctx, models.Member{Email: "bob@acme.io"})
	require.ErrorIs(t, err, store.ErrInvalidArgument)
	_, err = s.InsertActivity(ctx, models.Activity{Action: "issue.created"})
	require.ErrorIs(t, err, store.ErrInvalidArgument)
}

func TestStatusUpdatesAndComments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.InsertStatusUpdate(ctx, models.StatusUpdate{ProjectID: "proj-1", Body: "All good"})
	require.NoError(t, err)
	require.Equal(t, models.HealthOnTrack, u.Health)

	_, err = s.InsertComment(ctx, models.Comment{StatusUpdateID: u.ID, Body: "Nice"})
	require.NoError(t, err)

	updates, err := s.StatusUpdatesByProjectID(ctx, "proj-1")
	require.NoError(t, err)
	require.Len(t, updates, 1)

	got, err := s.StatusUpdateByID(ctx, "proj-1", u.ID)
	require.NoError(t, err)
	require.Equal(t, "All good", got.Body)
	_, err = s.StatusUpdateByID(ctx, "proj-2", u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	comments, err := s.CommentsByStatusUpdateID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.Equal(t, "Nice", comments[0].Body)
}

func TestAPIKeysAndUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.InsertUser(ctx, models.User{Email: "Ada@Example.com", Name: "Ada", PasswordHash: "hash"})
	require.NoError(t, err)

	byEmail, err := s.UserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)
	require.Equal(t, "hash", byEmail.PasswordHash)

	key, err := s.InsertAPIKey(ctx, models.APIKey{UserID: user.ID, Name: "ci", Prefix: "td_abcd", KeyHash: "deadbeef"})
	require.NoError(t, err)

	found, err := s.APIKeyByHash(ctx, "deadbeef")
	require.NoError(t, err)
	require.Equal(t, key.ID, found.ID)
	require.Nil(t, found.LastUsedAt)

	require.NoError(t, s.TouchAPIKey(ctx, key.ID, time.Now().UTC()))
	found, err = s.APIKeyByHash(ctx, "deadbeef")
	require.NoError(t, err)
	require.NotNil(t, found.LastUsedAt)

	require.ErrorIs(t, s.DeleteAPIKey(ctx, "someone-else", key.ID), store.ErrNotFound)
	require.NoError(t, s.DeleteAPIKey(ctx, user.ID, key.ID))

	keys, err := s.APIKeysByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestNotifications(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.InsertNotification(ctx, models.Notification{UserID: "user-1", Type: "mention", Title: "You were mentioned"})
	require.NoError(t, err)

	require.NoError(t, s.MarkNotificationRead(ctx, "user-1", n.ID))
	require.ErrorIs(t, s.MarkNotificationRead(ctx, "user-2", n.ID), store.ErrNotFound)

	list, err := s.NotificationsByUserID(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.True(t, list[0].Read)
}

func TestWorkspacesTeamsMembersRoles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ws, err := s.InsertWorkspace(ctx, models.Workspace{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)
	_, err = s.InsertTeam(ctx, models.Team{WorkspaceID: ws.ID, Name: "Platform", Key: "PLT"})
	require.NoError(t, err)
	_, err = s.InsertMember(ctx, models.Member{WorkspaceID: ws.ID, Email: "Bob@Acme.io", Name: "Bob"})
	require.NoError(t, err)
	_, err = s.InsertRole(ctx, models.Role{WorkspaceID: ws.ID, Name: "admin"})
	require.NoError(t, err)

	teams, err := s.TeamsByWorkspaceID(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)

	members, err := s.MembersByWorkspaceID(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "bob@acme.io", members[0].Email)

	roles, err := s.RolesByWorkspaceID(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	require.Equal(t, "", roles[0].Description)

	_, err = s.TeamByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUnconfiguredDatabasePropagates(t *testing.T) {
	s := New(config.NewDatabaseFactory(&config.Config{}))

	_, err := s.ActivityByTeamID(context.Background(), "team-1", 10)
	require.ErrorIs(t, err, config.ErrDatabaseNotConfigured)
}
