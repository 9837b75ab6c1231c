package models

import "time"

// Patch types carry the fields a client asked to change. A nil pointer or an
// unset Optional is left untouched; an Optional sent as null is cleared.

type ProjectPatch struct {
	Name        *string             `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string             `json:"description" validate:"omitempty,max=5000"`
	Status      *string             `json:"status" validate:"omitempty,oneof=planned active paused completed canceled"`
	LeadID      Optional[string]    `json:"leadId"`
	StartDate   Optional[time.Time] `json:"startDate"`
	TargetDate  Optional[time.Time] `json:"targetDate"`
}

func (p ProjectPatch) Apply(project *Project) {
	if p.Name != nil {
		project.Name = *p.Name
	}
	if p.Description != nil {
		project.Description = *p.Description
	}
	if p.Status != nil {
		project.Status = *p.Status
	}
	p.LeadID.apply(&project.LeadID)
	p.StartDate.apply(&project.StartDate)
	p.TargetDate.apply(&project.TargetDate)
}

type IssuePatch struct {
	Title       *string          `json:"title" validate:"omitempty,min=1,max=300"`
	Description *string          `json:"description" validate:"omitempty,max=10000"`
	Status      *string          `json:"status" validate:"omitempty,oneof=backlog todo in_progress done canceled"`
	Priority    *int             `json:"priority" validate:"omitempty,min=0,max=4"`
	AssigneeID  Optional[string] `json:"assigneeId"`
	ProjectID   Optional[string] `json:"projectId"`
}

func (p IssuePatch) Apply(issue *Issue) {
	if p.Title != nil {
		issue.Title = *p.Title
	}
	if p.Description != nil {
		issue.Description = *p.Description
	}
	if p.Status != nil {
		issue.Status = *p.Status
	}
	if p.Priority != nil {
		issue.Priority = *p.Priority
	}
	p.AssigneeID.apply(&issue.AssigneeID)
	p.ProjectID.apply(&issue.ProjectID)
}

type MilestonePatch struct {
	Name        *string             `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string             `json:"description" validate:"omitempty,max=5000"`
	TargetDate  Optional[time.Time] `json:"targetDate"`
}

func (p MilestonePatch) Apply(m *Milestone) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	p.TargetDate.apply(&m.TargetDate)
}
