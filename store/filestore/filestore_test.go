package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"teamdesk/models"
	"teamdesk/store"
)

func ptr(s string) *string { return &s }

func TestReadStoreMissingFileIsEmpty(t *testing.T) {
	doc, err := ReadStore(filepath.Join(t.TempDir(), "nope", FileName))
	require.NoError(t, err)
	require.Equal(t, Document{}, doc)
}

func TestReadStorePropagatesOtherErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadStore(dir)
	require.Error(t, err)

	bad := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))
	_, err = ReadStore(bad)
	require.Error(t, err)
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", FileName)
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	doc := Document{
		Workspaces:  []models.Workspace{{ID: "w1", Name: "Acme", Slug: "acme", CreatedAt: at}},
		Invitations: []models.Invitation{{ID: "abc", Email: "a@b.com", CreatedAt: at}},
		Activity:    []models.Activity{{ID: "a1", TeamID: "t1", ActorID: ptr("u1"), Action: "created", Date: at}},
		Users:       []userRecord{{ID: "u1", Email: "a@b.com", PasswordHash: "hash", CreatedAt: at}},
	}
	require.NoError(t, WriteStore(path, doc))

	got, err := ReadStore(path)
	require.NoError(t, err)
	require.Equal(t, doc, got)

	// A second write replaces the whole document.
	require.NoError(t, WriteStore(path, Document{}))
	got, err = ReadStore(path)
	require.NoError(t, err)
	require.Equal(t, Document{}, got)
}

func TestInvitationInsertThenGet(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	_, err := s.InsertInvitation(ctx, models.Invitation{ID: "abc", Email: "a@b.com", RoleID: nil})
	require.NoError(t, err)

	got, err := s.InvitationByID(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, "abc", got.ID)
	require.Equal(t, "a@b.com", got.Email)
	require.Nil(t, got.RoleID)
	require.False(t, got.CreatedAt.IsZero())

	_, err = s.InvitationByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.InsertInvitation(ctx, models.Invitation{ID: "abc", Email: "c@d.com"})
	require.ErrorIs(t, err, store.ErrConflict)
}

func TestActivityByTeamID(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// Inserted out of order on purpose.
	for _, minute := range []int{2, 0, 4, 1, 3} {
		_, err := s.InsertActivity(ctx, models.Activity{TeamID: "team-1", Action: "x", Date: base.Add(time.Duration(minute) * time.Minute)})
		require.NoError(t, err)
	}
	_, err := s.InsertActivity(ctx, models.Activity{TeamID: "team-2", Action: "x", Date: base.Add(time.Hour)})
	require.NoError(t, err)

	got, err := s.ActivityByTeamID(ctx, "team-1", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, want := range []int{4, 3, 2} {
		require.Equal(t, "team-1", got[i].TeamID)
		require.True(t, got[i].Date.Equal(base.Add(time.Duration(want)*time.Minute)))
	}

	all, err := s.ActivityByTeamID(ctx, "team-1", -1)
	require.NoError(t, err)
	require.Len(t, all, 5)
}

func TestViewsByTeam(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	for _, v := range []models.View{
		{WorkspaceID: "ws-1", TeamID: ptr("team-1"), Name: "Bugs", Filters: json.RawMessage(`{"label":"bug"}`)},
		{WorkspaceID: "ws-1", TeamID: ptr("team-2"), Name: "Other team"},
		{WorkspaceID: "ws-1", Name: "Everything"},
		{WorkspaceID: "ws-2", Name: "Elsewhere"},
	} {
		_, err := s.InsertView(ctx, v)
		require.NoError(t, err)
	}

	teamViews, err := s.ViewsByTeamID(ctx, "team-1")
	require.NoError(t, err)
	require.Len(t, teamViews, 1)
	require.Equal(t, "Bugs", teamViews[0].Name)

	wsViews, err := s.ViewsWithoutTeamID(ctx, "ws-1")
	require.NoError(t, err)
	require.Len(t, wsViews, 1)
	require.Nil(t, wsViews[0].TeamID)
	require.JSONEq(t, `{}`, string(wsViews[0].Filters))
}

func TestStatePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	user, err := New(dir).InsertUser(ctx, models.User{Email: "Ada@Example.com", PasswordHash: "secret-hash"})
	require.NoError(t, err)

	got, err := New(dir).UserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, "secret-hash", got.PasswordHash)

	_, err = New(dir).InsertUser(ctx, models.User{Email: "ada@example.com"})
	require.ErrorIs(t, err, store.ErrConflict)
}

func TestConcurrentInsertsAreSerialized(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.InsertActivity(ctx, models.Activity{TeamID: "team-1", Action: "x"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.ActivityByTeamID(ctx, "team-1", 100)
	require.NoError(t, err)
	require.Len(t, got, 20)
}

func TestUpdateProjectAndIssue(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	p, err := s.InsertProject(ctx, models.Project{TeamID: "team-1", WorkspaceID: "ws-1", Name: "Launch"})
	require.NoError(t, err)
	require.Equal(t, models.ProjectPlanned, p.Status)

	status := models.ProjectActive
	updated, err := s.UpdateProject(ctx, "team-1", p.ID, models.ProjectPatch{Status: &status})
	require.NoError(t, err)
	require.Equal(t, models.ProjectActive, updated.Status)
	require.Equal(t, "Launch", updated.Name)

	_, err = s.UpdateProject(ctx, "team-9", p.ID, models.ProjectPatch{Status: &status})
	require.ErrorIs(t, err, store.ErrNotFound)

	issue, err := s.InsertIssue(ctx, models.Issue{TeamID: "team-1", Title: "Bug"})
	require.NoError(t, err)
	title := "Bug in login"
	issue, err = s.UpdateIssue(ctx, issue.ID, models.IssuePatch{
		Title:      &title,
		ProjectID:  models.Some(p.ID),
		AssigneeID: models.Some("u1"),
	})
	require.NoError(t, err)
	require.Equal(t, "Bug in login", issue.Title)
	require.Equal(t, p.ID, *issue.ProjectID)
	require.Equal(t, "u1", *issue.AssigneeID)

	// An unset field is left alone; a null one is cleared.
	issue, err = s.UpdateIssue(ctx, issue.ID, models.IssuePatch{AssigneeID: models.Null[string]()})
	require.NoError(t, err)
	require.Nil(t, issue.AssigneeID)
	require.Equal(t, p.ID, *issue.ProjectID)
}

func TestUpdateClearsNullableDates(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()
	target := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	p, err := s.InsertProject(ctx, models.Project{TeamID: "team-1", WorkspaceID: "ws-1", Name: "Launch", LeadID: ptr("u1"), TargetDate: &target})
	require.NoError(t, err)

	p, err = s.UpdateProject(ctx, "team-1", p.ID, models.ProjectPatch{
		LeadID:     models.Null[string](),
		TargetDate: models.Null[time.Time](),
	})
	require.NoError(t, err)
	require.Nil(t, p.LeadID)
	require.Nil(t, p.TargetDate)

	m, err := s.InsertMilestone(ctx, models.Milestone{ProjectID: p.ID, Name: "Beta", TargetDate: &target})
	require.NoError(t, err)
	m, err = s.UpdateMilestone(ctx, p.ID, m.ID, models.MilestonePatch{TargetDate: models.Null[time.Time]()})
	require.NoError(t, err)
	require.Nil(t, m.TargetDate)
	require.Equal(t, "Beta", m.Name)
}

func TestInsertRejectsMissingParent(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	_, err := s.InsertTeam(ctx, models.Team{Name: "Platform"})
	require.ErrorIs(t, err, store.ErrInvalidArgument)
	_, err = s.InsertIssue(ctx, models.Issue{TeamID: " ", Title: "Bug"})
	require.ErrorIs(t, err, store.ErrInvalidArgument)
	_, err = s.InsertComment(ctx, models.Comment{Body: "orphan"})
	require.ErrorIs(t, err, store.ErrInvalidArgument)

	teams, err := s.TeamsByWorkspaceID(ctx, "")
	require.NoError(t, err)
	require.Empty(t, teams)
}

func TestStatusUpdateByIDIsScopedToProject(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	u, err := s.InsertStatusUpdate(ctx, models.StatusUpdate{ProjectID: "proj-1", Body: "All good"})
	require.NoError(t, err)

	got, err := s.StatusUpdateByID(ctx, "proj-1", u.ID)
	require.NoError(t, err)
	require.Equal(t, "All good", got.Body)

	_, err = s.StatusUpdateByID(ctx, "proj-2", u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAPIKeyLifecycle(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	k, err := s.InsertAPIKey(ctx, models.APIKey{UserID: "u1", Name: "ci", Prefix: "td_1234", KeyHash: "h1"})
	require.NoError(t, err)

	found, err := s.APIKeyByHash(ctx, "h1")
	require.NoError(t, err)
	require.Equal(t, k.ID, found.ID)

	require.NoError(t, s.TouchAPIKey(ctx, k.ID, time.Now().UTC()))
	keys, err := s.APIKeysByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.NotNil(t, keys[0].LastUsedAt)

	require.ErrorIs(t, s.DeleteAPIKey(ctx, "u2", k.ID), store.ErrNotFound)
	require.NoError(t, s.DeleteAPIKey(ctx, "u1", k.ID))
	_, err = s.APIKeyByHash(ctx, "h1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCanceledContext(t *testing.T) {
	s := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Workspaces(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
