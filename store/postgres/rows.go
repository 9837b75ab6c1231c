package postgres

import "time"

// Row types mirror the externally owned schema column for column.

type workspaceRow struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Slug      string    `gorm:"column:slug;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (workspaceRow) TableName() string { return "workspaces" }

type teamRow struct {
	ID          string    `gorm:"column:id;primaryKey"`
	WorkspaceID string    `gorm:"column:workspace_id;index;not null"`
	Name        string    `gorm:"column:name;not null"`
	Key         string    `gorm:"column:key"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (teamRow) TableName() string { return "teams" }

type memberRow struct {
	ID          string    `gorm:"column:id;primaryKey"`
	WorkspaceID string    `gorm:"column:workspace_id;index;not null"`
	TeamID      *string   `gorm:"column:team_id"`
	UserID      *string   `gorm:"column:user_id"`
	Email       string    `gorm:"column:email"`
	Name        string    `gorm:"column:name"`
	RoleID      *string   `gorm:"column:role_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (memberRow) TableName() string { return "members" }

type roleRow struct {
	ID          string    `gorm:"column:id;primaryKey"`
	WorkspaceID string    `gorm:"column:workspace_id;index;not null"`
	Name        string    `gorm:"column:name;not null"`
	Description *string   `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (roleRow) TableName() string { return "roles" }

type invitationRow struct {
	ID          string    `gorm:"column:id;primaryKey"`
	WorkspaceID *string   `gorm:"column:workspace_id;index"`
	Email       string    `gorm:"column:email;not null"`
	RoleID      *string   `gorm:"column:role_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (invitationRow) TableName() string { return "invitations" }

type projectRow struct {
	ID          string     `gorm:"column:id;primaryKey"`
	TeamID      string     `gorm:"column:team_id;index;not null"`
	WorkspaceID string     `gorm:"column:workspace_id;index"`
	Name        string     `gorm:"column:name;not null"`
	Description *string    `gorm:"column:description"`
	Status      *string    `gorm:"column:status"`
	LeadID      *string    `gorm:"column:lead_id"`
	StartDate   *time.Time `gorm:"column:start_date"`
	TargetDate  *time.Time `gorm:"column:target_date"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (projectRow) TableName() string { return "projects" }

type issueRow struct {
	ID          string    `gorm:"column:id;primaryKey"`
	TeamID      string    `gorm:"column:team_id;index;not null"`
	ProjectID   *string   `gorm:"column:project_id;index"`
	Title       string    `gorm:"column:title;not null"`
	Description *string   `gorm:"column:description"`
	Status      *string   `gorm:"column:status"`
	Priority    int       `gorm:"column:priority"`
	AssigneeID  *string   `gorm:"column:assignee_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (issueRow) TableName() string { return "issues" }

type milestoneRow struct {
	ID          string     `gorm:"column:id;primaryKey"`
	ProjectID   string     `gorm:"column:project_id;index;not null"`
	Name        string     `gorm:"column:name;not null"`
	Description *string    `gorm:"column:description"`
	TargetDate  *time.Time `gorm:"column:target_date"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (milestoneRow) TableName() string { return "milestones" }

type statusUpdateRow struct {
	ID        string    `gorm:"column:id;primaryKey"`
	ProjectID string    `gorm:"column:project_id;index;not null"`
	AuthorID  *string   `gorm:"column:author_id"`
	Health    *string   `gorm:"column:health"`
	Body      string    `gorm:"column:body"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (statusUpdateRow) TableName() string { return "status_updates" }

type commentRow struct {
	ID             string    `gorm:"column:id;primaryKey"`
	StatusUpdateID string    `gorm:"column:status_update_id;index;not null"`
	AuthorID       *string   `gorm:"column:author_id"`
	Body           string    `gorm:"column:body"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (commentRow) TableName() string { return "comments" }

type viewRow struct {
	ID          string    `gorm:"column:id;primaryKey"`
	WorkspaceID string    `gorm:"column:workspace_id;index;not null"`
	TeamID      *string   `gorm:"column:team_id;index"`
	Name        string    `gorm:"column:name;not null"`
	Filters     *string   `gorm:"column:filters;type:jsonb"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (viewRow) TableName() string { return "views" }

type activityRow struct {
	ID         string    `gorm:"column:id;primaryKey"`
	TeamID     string    `gorm:"column:team_id;index;not null"`
	ActorID    *string   `gorm:"column:actor_id"`
	Action     string    `gorm:"column:action;not null"`
	EntityType string    `gorm:"column:entity_type"`
	EntityID   string    `gorm:"column:entity_id"`
	Date       time.Time `gorm:"column:date;index"`
}

func (activityRow) TableName() string { return "activity" }

type notificationRow struct {
	ID        string    `gorm:"column:id;primaryKey"`
	UserID    string    `gorm:"column:user_id;index;not null"`
	Type      string    `gorm:"column:type"`
	Title     string    `gorm:"column:title"`
	Body      *string   `gorm:"column:body"`
	Read      bool      `gorm:"column:read"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (notificationRow) TableName() string { return "notifications" }

type userRow struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	Name         string    `gorm:"column:name"`
	PasswordHash string    `gorm:"column:password_hash"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (userRow) TableName() string { return "users" }

type apiKeyRow struct {
	ID         string     `gorm:"column:id;primaryKey"`
	UserID     string     `gorm:"column:user_id;index;not null"`
	Name       string     `gorm:"column:name;not null"`
	Prefix     string     `gorm:"column:prefix"`
	KeyHash    string     `gorm:"column:key_hash;uniqueIndex;not null"`
	LastUsedAt *time.Time `gorm:"column:last_used_at"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
}

func (apiKeyRow) TableName() string { return "api_keys" }

func allRows() []interface{} {
	return []interface{}{
		&workspaceRow{},
		&teamRow{},
		&memberRow{},
		&roleRow{},
		&invitationRow{},
		&projectRow{},
		&issueRow{},
		&milestoneRow{},
		&statusUpdateRow{},
		&commentRow{},
		&viewRow{},
		&activityRow{},
		&notificationRow{},
		&userRow{},
		&apiKeyRow{},
	}
}
