package models

import "time"

// Project status values.
const (
	ProjectPlanned   = "planned"
	ProjectActive    = "active"
	ProjectPaused    = "paused"
	ProjectCompleted = "completed"
	ProjectCanceled  = "canceled"
)

// Issue status values.
const (
	IssueBacklog    = "backlog"
	IssueTodo       = "todo"
	IssueInProgress = "in_progress"
	IssueDone       = "done"
	IssueCanceled   = "canceled"
)

// Status update health values.
const (
	HealthOnTrack  = "on_track"
	HealthAtRisk   = "at_risk"
	HealthOffTrack = "off_track"
)

type Project struct {
	ID          string     `json:"id"`
	TeamID      string     `json:"teamId"`
	WorkspaceID string     `json:"workspaceId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	LeadID      *string    `json:"leadId"`
	StartDate   *time.Time `json:"startDate"`
	TargetDate  *time.Time `json:"targetDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type Issue struct {
	ID          string    `json:"id"`
	TeamID      string    `json:"teamId"`
	ProjectID   *string   `json:"projectId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    int       `json:"priority"`
	AssigneeID  *string   `json:"assigneeId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Milestone struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	TargetDate  *time.Time `json:"targetDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// StatusUpdate is a dated health report posted on a project.
type StatusUpdate struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	AuthorID  *string   `json:"authorId"`
	Health    string    `json:"health"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type Comment struct {
	ID             string    `json:"id"`
	StatusUpdateID string    `json:"statusUpdateId"`
	AuthorID       *string   `json:"authorId"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"createdAt"`
}
