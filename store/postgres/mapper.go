package postgres

import (
	"encoding/json"

	"teamdesk/models"
)

// Row mappers. They only rename fields and fill defaults for NULL columns.

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// setOptional adds column to an update map when the field was sent. A field
// sent as null writes NULL.
func setOptional[T any](cols map[string]interface{}, column string, o models.Optional[T]) {
	if !o.Set {
		return
	}
	if o.Value == nil {
		cols[column] = nil
		return
	}
	cols[column] = *o.Value
}

func mapWorkspace(r workspaceRow) models.Workspace {
	return models.Workspace{
		ID:        r.ID,
		Name:      r.Name,
		Slug:      r.Slug,
		CreatedAt: r.CreatedAt,
	}
}

func mapTeam(r teamRow) models.Team {
	return models.Team{
		ID:          r.ID,
		WorkspaceID: r.WorkspaceID,
		Name:        r.Name,
		Key:         r.Key,
		CreatedAt:   r.CreatedAt,
	}
}

func mapMember(r memberRow) models.Member {
	return models.Member{
		ID:          r.ID,
		WorkspaceID: r.WorkspaceID,
		TeamID:      r.TeamID,
		UserID:      r.UserID,
		Email:       r.Email,
		Name:        r.Name,
		RoleID:      r.RoleID,
		CreatedAt:   r.CreatedAt,
	}
}

func mapRole(r roleRow) models.Role {
	return models.Role{
		ID:          r.ID,
		WorkspaceID: r.WorkspaceID,
		Name:        r.Name,
		Description: deref(r.Description),
		CreatedAt:   r.CreatedAt,
	}
}

func mapInvitation(r invitationRow) models.Invitation {
	return models.Invitation{
		ID:          r.ID,
		WorkspaceID: r.WorkspaceID,
		Email:       r.Email,
		RoleID:      r.RoleID,
		CreatedAt:   r.CreatedAt,
	}
}

func mapProject(r projectRow) models.Project {
	return models.Project{
		ID:          r.ID,
		TeamID:      r.TeamID,
		WorkspaceID: r.WorkspaceID,
		Name:        r.Name,
		Description: deref(r.Description),
		Status:      derefOr(r.Status, models.ProjectPlanned),
		LeadID:      r.LeadID,
		StartDate:   r.StartDate,
		TargetDate:  r.TargetDate,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func mapIssue(r issueRow) models.Issue {
	return models.Issue{
		ID:          r.ID,
		TeamID:      r.TeamID,
		ProjectID:   r.ProjectID,
		Title:       r.Title,
		Description: deref(r.Description),
		Status:      derefOr(r.Status, models.IssueBacklog),
		Priority:    r.Priority,
		AssigneeID:  r.AssigneeID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func mapMilestone(r milestoneRow) models.Milestone {
	return models.Milestone{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		Name:        r.Name,
		Description: deref(r.Description),
		TargetDate:  r.TargetDate,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func mapStatusUpdate(r statusUpdateRow) models.StatusUpdate {
	return models.StatusUpdate{
		ID:        r.ID,
		ProjectID: r.ProjectID,
		AuthorID:  r.AuthorID,
		Health:    derefOr(r.Health, models.HealthOnTrack),
		Body:      r.Body,
		CreatedAt: r.CreatedAt,
	}
}

func mapComment(r commentRow) models.Comment {
	return models.Comment{
		ID:             r.ID,
		StatusUpdateID: r.StatusUpdateID,
		AuthorID:       r.AuthorID,
		Body:           r.Body,
		CreatedAt:      r.CreatedAt,
	}
}

func mapView(r viewRow) models.View {
	filters := json.RawMessage(derefOr(r.Filters, "{}"))
	return models.View{
		ID:          r.ID,
		WorkspaceID: r.WorkspaceID,
		TeamID:      r.TeamID,
		Name:        r.Name,
		Filters:     filters,
		CreatedAt:   r.CreatedAt,
	}
}

func mapActivity(r activityRow) models.Activity {
	return models.Activity{
		ID:         r.ID,
		TeamID:     r.TeamID,
		ActorID:    r.ActorID,
		Action:     r.Action,
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		Date:       r.Date,
	}
}

func mapNotification(r notificationRow) models.Notification {
	return models.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		Type:      r.Type,
		Title:     r.Title,
		Body:      deref(r.Body),
		Read:      r.Read,
		CreatedAt: r.CreatedAt,
	}
}

func mapUser(r userRow) models.User {
	return models.User{
		ID:           r.ID,
		Email:        r.Email,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

func mapAPIKey(r apiKeyRow) models.APIKey {
	return models.APIKey{
		ID:         r.ID,
		UserID:     r.UserID,
		Name:       r.Name,
		Prefix:     r.Prefix,
		KeyHash:    r.KeyHash,
		LastUsedAt: r.LastUsedAt,
		CreatedAt:  r.CreatedAt,
	}
}

func mapAll[R any, M any](rows []R, fn func(R) M) []M {
	out := make([]M, 0, len(rows))
	for _, r := range rows {
		out = append(out, fn(r))
	}
	return out
}
