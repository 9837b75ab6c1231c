package filestore

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"teamdesk/models"
	"teamdesk/store"
)

// Store serializes every access through one mutex. Other processes writing
// the same file are not coordinated with.
type Store struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

var _ store.Store = (*Store)(nil)

func New(dir string) *Store {
	return &Store{
		path: filepath.Join(dir, FileName),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return nil }

func (s *Store) view(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return ReadStore(s.path)
}

func (s *Store) update(ctx context.Context, fn func(doc *Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := ReadStore(s.path)
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	return WriteStore(s.path, doc)
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0)
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func first[T any](items []T, match func(T) bool) (T, bool) {
	for _, item := range items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func limited[T any](items []T, limit, fallback int) []T {
	if limit <= 0 {
		limit = fallback
	}
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

func notFound(what, id string) error {
	return &notFoundError{what: what, id: id}
}

type notFoundError struct{ what, id string }

func (e *notFoundError) Error() string { return e.what + " " + e.id + ": not found" }

func (e *notFoundError) Unwrap() error { return store.ErrNotFound }

// Activity

func (s *Store) ActivityByTeamID(ctx context.Context, teamID string, limit int) ([]models.Activity, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	out := filter(doc.Activity, func(a models.Activity) bool { return a.TeamID == teamID })
	slices.SortStableFunc(out, func(a, b models.Activity) int { return b.Date.Compare(a.Date) })
	return limited(out, limit, store.DefaultActivityLimit), nil
}

func (s *Store) InsertActivity(ctx context.Context, a models.Activity) (models.Activity, error) {
	if err := store.Required("team_id", a.TeamID); err != nil {
		return models.Activity{}, err
	}
	a.ID = store.NewID(a.ID)
	if a.Date.IsZero() {
		a.Date = s.now()
	}
	err := s.update(ctx, func(doc *Document) error {
		doc.Activity = append(doc.Activity, a)
		return nil
	})
	return a, err
}

// Invitations

func (s *Store) InsertInvitation(ctx context.Context, inv models.Invitation) (models.Invitation, error) {
	inv.ID = store.NewID(inv.ID)
	inv.CreatedAt = s.now()
	err := s.update(ctx, func(doc *Document) error {
		if _, ok := first(doc.Invitations, func(i models.Invitation) bool { return i.ID == inv.ID }); ok {
			return store.ErrConflict
		}
		doc.Invitations = append(doc.Invitations, inv)
		return nil
	})
	return inv, err
}

func (s *Store) InvitationByID(ctx context.Context, id string) (models.Invitation, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return models.Invitation{}, err
	}
	inv, ok := first(doc.Invitations, func(i models.Invitation) bool { return i.ID == id })
	if !ok {
		return models.Invitation{}, notFound("invitation", id)
	}
	return inv, nil
}

func (s *Store) InvitationsByWorkspaceID(ctx context.Context, workspaceID string) ([]models.Invitation, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	out := filter(doc.Invitations, func(i models.Invitation) bool {
		return i.WorkspaceID != nil && *i.WorkspaceID == workspaceID
	})
	slices.SortStableFunc(out, func(a, b models.Invitation) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

// Notifications

func (s *Store) NotificationsByUserID(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	out := filter(doc.Notifications, func(n models.Notification) bool { return n.UserID == userID })
	slices.SortStableFunc(out, func(a, b models.Notification) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return limited(out, limit, store.DefaultNotificationLimit), nil
}

func (s *Store) InsertNotification(ctx context.Context, n models.Notification) (models.Notification, error) {
	n.ID = store.NewID(n.ID)
	n.CreatedAt = s.now()
	err := s.update(ctx, func(doc *Document) error {
		doc.Notifications = append(doc.Notifications, n)
		return nil
	})
	return n, err
}

func (s *Store) MarkNotificationRead(ctx context.Context, userID, id string) error {
	return s.update(ctx, func(doc *Document) error {
		for i := range doc.Notifications {
			if doc.Notifications[i].ID == id && doc.Notifications[i].UserID == userID {
				doc.Notifications[i].Read = true
				return nil
			}
		}
		return notFound("notification", id)
	})
}

// Roles

func (s *Store) RolesByWorkspaceID(ctx context.Context, workspaceID string) ([]models.Role, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	out := filter(doc.Roles, func(r models.Role) bool { return r.WorkspaceID == workspaceID })
	slices.SortStableFunc(out, func(a, b models.Role) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) InsertRole(ctx context.Context, r models.Role) (models.Role, error) {
	r.ID = store.NewID(r.ID)
	r.CreatedAt = s.now()
	err := s.update(ctx, func(doc *Document) error {
		doc.Roles = append(doc.Roles, r)
		return nil
	})
	return r, err
}

// Views

func (s *Store) ViewsByTeamID(ctx context.Context, teamID string) ([]models.View, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	out := filter(doc.Views, func(v models.View) bool { return v.TeamID != nil && *v.TeamID == teamID })
	slices.SortStableFunc(out, func(a, b models.View) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) ViewsWithoutTeamID(ctx context.Context, workspaceID string) ([]models.View, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	out := filter(doc.Views, func(v models.View) bool { return v.TeamID == nil && v.WorkspaceID == workspaceID })
	slices.SortStableFunc(out, func(a, b models.View) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) InsertView(ctx context.Context, v models.View) (models.View, error) {
	v.ID = store.NewID(v.ID)
	v.CreatedAt = s.now()
	if len(v.Filters) == 0 {
		v.Filters = []byte("{}")
	}
	err := s.update(ctx, func(doc *Document) error {
		doc.Views = append(doc.Views, v)
		return nil
	})
	return v, err
}

// Workspaces, teams and members

func (s *Store) Workspaces(ctx context.Context) ([]models.Workspace, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	out := filter(doc.Workspaces, func(models.Workspace) bool { return true })
	slices.SortStableFunc(out, func(a, b models.Workspace) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) WorkspaceByID(ctx context.Context, id string) (models.Workspace, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return models.Workspace{}, err
	}
	w, ok := first(doc.Workspaces, func(w models.Workspace) bool { return w.ID == id })
	if !ok {
		return models.Workspace{}, notFound("workspace", id)
	}
	return w, nil
}

func (s *Store) InsertWorkspace(ctx context.Context, w models.Workspace) (models.Workspace, error) {
	w.ID = store.NewID(w.ID)
	w.CreatedAt = s.now()
	err := s.update(ctx, func(doc *Document) error {
		if _, ok := first(doc.Workspaces, func(x models.Workspace) bool { return x.Slug == w.Slug }); ok {
			return store.ErrConflict
		}
		doc.Workspaces = append(doc.Workspaces, w)
		return nil
	})
	return w, err
}

func (s *Store) TeamByID(ctx context.Context, id string) (models.Team, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return models.Team{}, err
	}
	t, ok := first(doc.Teams, func(t models.Team) bool { return t.ID == id })
	if !ok {
		return models.Team{}, notFound("team", id)
	}
	return t, nil
}

func (s *Store) TeamsByWorkspaceID(ctx context.Context, workspaceID string) ([]models.Team, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	out := filter(doc.Teams, func(t models.Team) bool { return t.WorkspaceID == workspaceID })
	slices.SortStableFunc(out, func(a, b models.Team) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) InsertTeam(ctx context.Context, t models.Team) (models.Team, error) {
	if err := store.Required("workspace_id", t.WorkspaceID); err != nil {
		return models.Team{}, err
	}
	t.ID = store.NewID(t.ID)
	t.CreatedAt = s.now()
	err := s.update(ctx, func(doc *Document) error {
		doc.Teams = append(doc.Teams, t)
		return nil
	})
	return t, err
}

func (s *Store) MembersByWorkspaceID(ctx context.Context, workspaceID string) ([]models.Member, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	out := filter(doc.Members, func(m models.Member) bool { return m.WorkspaceID == workspaceID })
	slices.SortStableFunc(out, func(a, b models.Member) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (s *Store) InsertMember(ctx context.Context, m models.Member) (models.Member, error) {
	if err := store.Required("workspace_id", m.WorkspaceID); err != nil {
		return models.Member{}, err
	}
	m.ID = store.NewID(m.ID)
	m.Email = strings.ToLower(m.Email)
	m.CreatedAt = s.now()
	err := s.update(ctx, func(doc *Document) error {
		doc.Members = append(doc.Members, m)
		return nil
	})
	return m, err
}

// Projects

func (s *Store) ProjectByID(ctx context.Context, teamID, projectID string) (models.Project, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return models.Project{}, err
	}
	p, ok := first(doc.Projects, func(p models.Project) bool { return p.ID == projectID && p.TeamID == teamID })
	if !ok {
		return models.Project{}, notFound("project", projectID)
	}
	return p, nil
}

func (s *Store) ProjectsByWorkspaceID(ctx context.Context, workspaceID string) ([]models.Project, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	out := filter(doc.Projects, func(p models.Project) bool { return p.WorkspaceID == workspaceID })
	slices.SortStableFunc(out, func(a, b models.Project) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return out, nil
}

func (s *Store) InsertProject(ctx context.Context, p models.Project) (models.Project, error) {
	if err := store.Required("team_id", p.TeamID); err != nil {
		return models.Project{}, err
	}
	p.ID = store.NewID(p.ID)
	if p.Status == "" {
		p.Status = models.ProjectPlanned
	}
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	err := s.update(ctx, func(doc *Document) error {
		doc.Projects = append(doc.Projects, p)
		return nil
	})
	return p, err
}

func (s *Store) UpdateProject(ctx context.Context, teamID, projectID string, patch models.ProjectPatch) (models.Project, error) {
	var out models.Project
	err := s.update(ctx, func(doc *Document) error {
		for i := range doc.Projects {
			p := &doc.Projects[i]
			if p.ID != projectID || p.TeamID != teamID {
				continue
			}
			patch.Apply(p)
			p.UpdatedAt = s.now()
			out = *p
			return nil
		}
		return notFound("project", projectID)
	})
	return out, err
}

// Issues

func (s *Store) IssuesByTeamID(ctx context.Context, teamID string) ([]models.Issue, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	out := filter(doc.Issues, func(i models.Issue) bool { return i.TeamID == teamID })
	slices.SortStableFunc(out, func(a, b models.Issue) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return out, nil
}

func (s *Store) InsertIssue(ctx context.Context, i models.Issue) (models.Issue, error) {
	if err := store.Required("team_id", i.TeamID); err != nil {
		return models.Issue{}, err
	}
	i.ID = store.NewID(i.ID)
	if i.Status == "" {
		i.Status = models.IssueBacklog
	}
	i.CreatedAt = s.now()
	i.UpdatedAt = i.CreatedAt
	err := s.update(ctx, func(doc *Document) error {
		doc.Issues = append(doc.Issues, i)
		return nil
	})
	return i, err
}

func (s *Store) UpdateIssue(ctx context.Context, id string, patch models.IssuePatch) (models.Issue, error) {
	var out models.Issue
	err := s.update(ctx, func(doc *Document) error {
		for i := range doc.Issues {
			issue := &doc.Issues[i]
			if issue.ID != id {
				continue
			}
			patch.Apply(issue)
			issue.UpdatedAt = s.now()
			out = *issue
			return nil
		}
		return notFound("issue", id)
	})
	return out, err
}

// Milestones, status updates and comments

func (s *Store) InsertMilestone(ctx context.Context, m models.Milestone) (models.Milestone, error) {
	if err := store.Required("project_id", m.ProjectID); err != nil {
		return models.Milestone{}, err
	}
	m.ID = store.NewID(m.ID)
	m.CreatedAt = s.now()
	m.UpdatedAt = m.CreatedAt
	err := s.update(ctx, func(doc *Document) error {
		doc.Milestones = append(doc.Milestones, m)
		return nil
	})
	return m, err
}

func (s *Store) UpdateMilestone(ctx context.Context, projectID, milestoneID string, patch models.MilestonePatch) (models.Milestone, error) {
	var out models.Milestone
	err := s.update(ctx, func(doc *Document) error {
		for i := range doc.Milestones {
			m := &doc.Milestones[i]
			if m.ID != milestoneID || m.ProjectID != projectID {
				continue
			}
			patch.Apply(m)
			m.UpdatedAt = s.now()
			out = *m
			return nil
		}
		return notFound("milestone", milestoneID)
	})
	return out, err
}

func (s *Store) StatusUpdatesByProjectID(ctx context.Context, projectID string) ([]models.StatusUpdate, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	out := filter(doc.StatusUpdates, func(u models.StatusUpdate) bool { return u.ProjectID == projectID })
	slices.SortStableFunc(out, func(a, b models.StatusUpdate) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (s *Store) StatusUpdateByID(ctx context.Context, projectID, id string) (models.StatusUpdate, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return models.StatusUpdate{}, err
	}
	u, ok := first(doc.StatusUpdates, func(u models.StatusUpdate) bool { return u.ID == id && u.ProjectID == projectID })
	if !ok {
		return models.StatusUpdate{}, notFound("status update", id)
	}
	return u, nil
}

func (s *Store) InsertStatusUpdate(ctx context.Context, u models.StatusUpdate) (models.StatusUpdate, error) {
	if err := store.Required("project_id", u.ProjectID); err != nil {
		return models.StatusUpdate{}, err
	}
	u.ID = store.NewID(u.ID)
	if u.Health == "" {
		u.Health = models.HealthOnTrack
	}
	u.CreatedAt = s.now()
	err := s.update(ctx, func(doc *Document) error {
		doc.StatusUpdates = append(doc.StatusUpdates, u)
		return nil
	})
	return u, err
}

func (s *Store) CommentsByStatusUpdateID(ctx context.Context, statusUpdateID string) ([]models.Comment, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	out := filter(doc.Comments, func(c models.Comment) bool { return c.StatusUpdateID == statusUpdateID })
	slices.SortStableFunc(out, func(a, b models.Comment) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (s *Store) InsertComment(ctx context.Context, c models.Comment) (models.Comment, error) {
	if err := store.Required("status_update_id", c.StatusUpdateID); err != nil {
		return models.Comment{}, err
	}
	c.ID = store.NewID(c.ID)
	c.CreatedAt = s.now()
	err := s.update(ctx, func(doc *Document) error {
		doc.Comments = append(doc.Comments, c)
		return nil
	})
	return c, err
}

// Users and API keys

func (s *Store) UserByID(ctx context.Context, id string) (models.User, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return models.User{}, err
	}
	u, ok := first(doc.Users, func(u userRecord) bool { return u.ID == id })
	if !ok {
		return models.User{}, notFound("user", id)
	}
	return u.model(), nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return models.User{}, err
	}
	email = strings.ToLower(email)
	u, ok := first(doc.Users, func(u userRecord) bool { return u.Email == email })
	if !ok {
		return models.User{}, notFound("user", email)
	}
	return u.model(), nil
}

func (s *Store) InsertUser(ctx context.Context, u models.User) (models.User, error) {
	rec := userRecord{
		ID:           store.NewID(u.ID),
		Email:        strings.ToLower(u.Email),
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		CreatedAt:    s.now(),
	}
	err := s.update(ctx, func(doc *Document) error {
		if _, ok := first(doc.Users, func(x userRecord) bool { return x.Email == rec.Email }); ok {
			return store.ErrConflict
		}
		doc.Users = append(doc.Users, rec)
		return nil
	})
	return rec.model(), err
}

func (s *Store) InsertAPIKey(ctx context.Context, k models.APIKey) (models.APIKey, error) {
	rec := apiKeyRecord{
		ID:        store.NewID(k.ID),
		UserID:    k.UserID,
		Name:      k.Name,
		Prefix:    k.Prefix,
		KeyHash:   k.KeyHash,
		CreatedAt: s.now(),
	}
	err := s.update(ctx, func(doc *Document) error {
		doc.APIKeys = append(doc.APIKeys, rec)
		return nil
	})
	return rec.model(), err
}

func (s *Store) APIKeysByUserID(ctx context.Context, userID string) ([]models.APIKey, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	recs := filter(doc.APIKeys, func(k apiKeyRecord) bool { return k.UserID == userID })
	slices.SortStableFunc(recs, func(a, b apiKeyRecord) int { return b.CreatedAt.Compare(a.CreatedAt) })
	out := make([]models.APIKey, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *Store) APIKeyByHash(ctx context.Context, hash string) (models.APIKey, error) {
	doc, err := s.view(ctx)
	if err != nil {
		return models.APIKey{}, err
	}
	k, ok := first(doc.APIKeys, func(k apiKeyRecord) bool { return k.KeyHash == hash })
	if !ok {
		return models.APIKey{}, notFound("api key", "by hash")
	}
	return k.model(), nil
}

func (s *Store) TouchAPIKey(ctx context.Context, id string, at time.Time) error {
	return s.update(ctx, func(doc *Document) error {
		for i := range doc.APIKeys {
			if doc.APIKeys[i].ID == id {
				doc.APIKeys[i].LastUsedAt = &at
				return nil
			}
		}
		return notFound("api key", id)
	})
}

func (s *Store) DeleteAPIKey(ctx context.Context, userID, id string) error {
	return s.update(ctx, func(doc *Document) error {
		idx := slices.IndexFunc(doc.APIKeys, func(k apiKeyRecord) bool { return k.ID == id && k.UserID == userID })
		if idx < 0 {
			return notFound("api key", id)
		}
		doc.APIKeys = slices.Delete(doc.APIKeys, idx, idx+1)
		return nil
	})
}
