package models

import "time"

// Workspace is the top-level tenant. Teams, members and roles belong to one.
type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
}

type Team struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	Name        string    `json:"name"`
	Key         string    `json:"key"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Member is a person in a workspace, optionally scoped to a team.
type Member struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	TeamID      *string   `json:"teamId"`
	UserID      *string   `json:"userId"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	RoleID      *string   `json:"roleId"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Role struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Invitation is a pending request for an email address to join a workspace.
type Invitation struct {
	ID          string    `json:"id"`
	WorkspaceID *string   `json:"workspaceId"`
	Email       string    `json:"email"`
	RoleID      *string   `json:"roleId"`
	CreatedAt   time.Time `json:"createdAt"`
}
