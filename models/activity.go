package models

import (
	"encoding/json"
	"time"
)

// Activity is one entry of a team's audit log.
type Activity struct {
	ID         string    `json:"id"`
	TeamID     string    `json:"teamId"`
	ActorID    *string   `json:"actorId"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	Date       time.Time `json:"date"`
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// View is a saved issue filter. A view without a team belongs to the
// whole workspace.
type View struct {
	ID          string          `json:"id"`
	WorkspaceID string          `json:"workspaceId"`
	TeamID      *string         `json:"teamId"`
	Name        string          `json:"name"`
	Filters     json.RawMessage `json:"filters"`
	CreatedAt   time.Time       `json:"createdAt"`
}
