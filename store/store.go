// Package store declares the data-access surface shared by the Postgres
// backend and the JSON file fallback.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"teamdesk/models"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("already exists")
)

// NewID returns id, or a fresh UUID when id is empty.
func NewID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// Required returns ErrInvalidArgument when a parent reference is blank.
func Required(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s is required: %w", field, ErrInvalidArgument)
	}
	return nil
}

// DefaultActivityLimit applies when a caller asks for a non-positive limit.
const DefaultActivityLimit = 50

// DefaultNotificationLimit applies when a caller asks for a non-positive limit.
const DefaultNotificationLimit = 50

type Lifecycle interface {
	Close() error
}

type Activities interface {
	// ActivityByTeamID returns at most limit entries for the team, newest first.
	ActivityByTeamID(ctx context.Context, teamID string, limit int) ([]models.Activity, error)
	InsertActivity(ctx context.Context, a models.Activity) (models.Activity, error)
}

type Invitations interface {
	InsertInvitation(ctx context.Context, inv models.Invitation) (models.Invitation, error)
	InvitationByID(ctx context.Context, id string) (models.Invitation, error)
	InvitationsByWorkspaceID(ctx context.Context, workspaceID string) ([]models.Invitation, error)
}

type Notifications interface {
	NotificationsByUserID(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	InsertNotification(ctx context.Context, n models.Notification) (models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id string) error
}

type Roles interface {
	RolesByWorkspaceID(ctx context.Context, workspaceID string) ([]models.Role, error)
	InsertRole(ctx context.Context, r models.Role) (models.Role, error)
}

type Views interface {
	ViewsByTeamID(ctx context.Context, teamID string) ([]models.View, error)
	// ViewsWithoutTeamID returns the workspace-wide views.
	ViewsWithoutTeamID(ctx context.Context, workspaceID string) ([]models.View, error)
	InsertView(ctx context.Context, v models.View) (models.View, error)
}

type Workspaces interface {
	Workspaces(ctx context.Context) ([]models.Workspace, error)
	WorkspaceByID(ctx context.Context, id string) (models.Workspace, error)
	InsertWorkspace(ctx context.Context, w models.Workspace) (models.Workspace, error)
}

type Teams interface {
	TeamByID(ctx context.Context, id string) (models.Team, error)
	TeamsByWorkspaceID(ctx context.Context, workspaceID string) ([]models.Team, error)
	InsertTeam(ctx context.Context, t models.Team) (models.Team, error)
}

type Members interface {
	MembersByWorkspaceID(ctx context.Context, workspaceID string) ([]models.Member, error)
	InsertMember(ctx context.Context, m models.Member) (models.Member, error)
}

type Projects interface {
	ProjectByID(ctx context.Context, teamID, projectID string) (models.Project, error)
	ProjectsByWorkspaceID(ctx context.Context, workspaceID string) ([]models.Project, error)
	InsertProject(ctx context.Context, p models.Project) (models.Project, error)
	UpdateProject(ctx context.Context, teamID, projectID string, patch models.ProjectPatch) (models.Project, error)
}

type Issues interface {
	IssuesByTeamID(ctx context.Context, teamID string) ([]models.Issue, error)
	InsertIssue(ctx context.Context, i models.Issue) (models.Issue, error)
	UpdateIssue(ctx context.Context, id string, patch models.IssuePatch) (models.Issue, error)
}

type Milestones interface {
	InsertMilestone(ctx context.Context, m models.Milestone) (models.Milestone, error)
	UpdateMilestone(ctx context.Context, projectID, milestoneID string, patch models.MilestonePatch) (models.Milestone, error)
}

type StatusUpdates interface {
	StatusUpdatesByProjectID(ctx context.Context, projectID string) ([]models.StatusUpdate, error)
	StatusUpdateByID(ctx context.Context, projectID, id string) (models.StatusUpdate, error)
	InsertStatusUpdate(ctx context.Context, u models.StatusUpdate) (models.StatusUpdate, error)
}

type Comments interface {
	CommentsByStatusUpdateID(ctx context.Context, statusUpdateID string) ([]models.Comment, error)
	InsertComment(ctx context.Context, c models.Comment) (models.Comment, error)
}

type Users interface {
	UserByID(ctx context.Context, id string) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	InsertUser(ctx context.Context, u models.User) (models.User, error)
}

type APIKeys interface {
	InsertAPIKey(ctx context.Context, k models.APIKey) (models.APIKey, error)
	APIKeysByUserID(ctx context.Context, userID string) ([]models.APIKey, error)
	APIKeyByHash(ctx context.Context, hash string) (models.APIKey, error)
	TouchAPIKey(ctx context.Context, id string, at time.Time) error
	DeleteAPIKey(ctx context.Context, userID, id string) error
}

// Store is everything the HTTP layer needs from a backend.
type Store interface {
	Lifecycle
	Activities
	Invitations
	Notifications
	Roles
	Views
	Workspaces
	Teams
	Members
	Projects
	Issues
	Milestones
	StatusUpdates
	Comments
	Users
	APIKeys
}
