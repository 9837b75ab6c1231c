package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"teamdesk/models"
	"teamdesk/store"
	"teamdesk/utils"
)

type ProjectController struct {
	Store  store.Store
	Logger *logrus.Entry
}

func NewProjectController(st store.Store, logger *logrus.Entry) *ProjectController {
	return &ProjectController{
		Store:  st,
		Logger: logger,
	}
}

func (pc *ProjectController) GetProject(c *fiber.Ctx) error {
	project, err := pc.Store.ProjectByID(c.UserContext(), c.Params("teamId"), c.Params("projectId"))
	if err != nil {
		return writeError(c, err, "Failed to load project")
	}
	return c.JSON(utils.SuccessResponse(project))
}

// CreateProject creates a project under the team, inheriting its workspace.
func (pc *ProjectController) CreateProject(c *fiber.Ctx) error {
	var input struct {
		Name        string     `json:"name" validate:"required,max=200"`
		Description string     `json:"description" validate:"max=5000"`
		Status      string     `json:"status" validate:"omitempty,oneof=planned active paused completed canceled"`
		LeadID      *string    `json:"leadId"`
		StartDate   *time.Time `json:"startDate"`
		TargetDate  *time.Time `json:"targetDate"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	team, err := pc.Store.TeamByID(c.UserContext(), c.Params("teamId"))
	if err != nil {
		return writeError(c, err, "Failed to load team")
	}

	project, err := pc.Store.InsertProject(c.UserContext(), models.Project{
		TeamID:      team.ID,
		WorkspaceID: team.WorkspaceID,
		Name:        input.Name,
		Description: input.Description,
		Status:      input.Status,
		LeadID:      input.LeadID,
		StartDate:   input.StartDate,
		TargetDate:  input.TargetDate,
	})
	if err != nil {
		return writeError(c, err, "Failed to create project")
	}

	recordActivity(c, pc.Store, pc.Logger, team.ID, "project.created", "project", project.ID)
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(project))
}

func (pc *ProjectController) UpdateProject(c *fiber.Ctx) error {
	var patch models.ProjectPatch
	if err := c.BodyParser(&patch); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(patch); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	teamID := c.Params("teamId")
	project, err := pc.Store.UpdateProject(c.UserContext(), teamID, c.Params("projectId"), patch)
	if err != nil {
		return writeError(c, err, "Failed to update project")
	}

	recordActivity(c, pc.Store, pc.Logger, teamID, "project.updated", "project", project.ID)
	return c.JSON(utils.SuccessResponse(project))
}

// loadProject resolves :projectId under :teamId so child resources are
// never reached through an unrelated team.
func (pc *ProjectController) loadProject(c *fiber.Ctx) (models.Project, error) {
	return pc.Store.ProjectByID(c.UserContext(), c.Params("teamId"), c.Params("projectId"))
}

func (pc *ProjectController) ListUpdates(c *fiber.Ctx) error {
	project, err := pc.loadProject(c)
	if err != nil {
		return writeError(c, err, "Failed to load project")
	}

	updates, err := pc.Store.StatusUpdatesByProjectID(c.UserContext(), project.ID)
	if err != nil {
		return writeError(c, err, "Failed to list updates")
	}
	return c.JSON(utils.SuccessResponse(updates))
}

func (pc *ProjectController) CreateUpdate(c *fiber.Ctx) error {
	var input struct {
		Health string `json:"health" validate:"omitempty,oneof=on_track at_risk off_track"`
		Body   string `json:"body" validate:"required,max=20000"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	project, err := pc.loadProject(c)
	if err != nil {
		return writeError(c, err, "Failed to load project")
	}

	update, err := pc.Store.InsertStatusUpdate(c.UserContext(), models.StatusUpdate{
		ProjectID: project.ID,
		AuthorID:  actorID(c),
		Health:    input.Health,
		Body:      input.Body,
	})
	if err != nil {
		return writeError(c, err, "Failed to post update")
	}

	recordActivity(c, pc.Store, pc.Logger, project.TeamID, "project.update_posted", "status_update", update.ID)
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(update))
}

// loadUpdate resolves :updateId under the project in the URL.
func (pc *ProjectController) loadUpdate(c *fiber.Ctx) (models.Project, models.StatusUpdate, error) {
	project, err := pc.loadProject(c)
	if err != nil {
		return models.Project{}, models.StatusUpdate{}, err
	}
	update, err := pc.Store.StatusUpdateByID(c.UserContext(), project.ID, c.Params("updateId"))
	if err != nil {
		return models.Project{}, models.StatusUpdate{}, err
	}
	return project, update, nil
}

func (pc *ProjectController) ListComments(c *fiber.Ctx) error {
	_, update, err := pc.loadUpdate(c)
	if err != nil {
		return writeError(c, err, "Failed to load update")
	}

	comments, err := pc.Store.CommentsByStatusUpdateID(c.UserContext(), update.ID)
	if err != nil {
		return writeError(c, err, "Failed to list comments")
	}
	return c.JSON(utils.SuccessResponse(comments))
}

func (pc *ProjectController) CreateComment(c *fiber.Ctx) error {
	var input struct {
		Body string `json:"body" validate:"required,max=10000"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	project, update, err := pc.loadUpdate(c)
	if err != nil {
		return writeError(c, err, "Failed to load update")
	}

	comment, err := pc.Store.InsertComment(c.UserContext(), models.Comment{
		StatusUpdateID: update.ID,
		AuthorID:       actorID(c),
		Body:           input.Body,
	})
	if err != nil {
		return writeError(c, err, "Failed to post comment")
	}

	recordActivity(c, pc.Store, pc.Logger, project.TeamID, "project.comment_posted", "comment", comment.ID)
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(comment))
}

func (pc *ProjectController) CreateMilestone(c *fiber.Ctx) error {
	var input struct {
		Name        string     `json:"name" validate:"required,max=200"`
		Description string     `json:"description" validate:"max=5000"`
		TargetDate  *time.Time `json:"targetDate"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	project, err := pc.loadProject(c)
	if err != nil {
		return writeError(c, err, "Failed to load project")
	}

	milestone, err := pc.Store.InsertMilestone(c.UserContext(), models.Milestone{
		ProjectID:   project.ID,
		Name:        input.Name,
		Description: input.Description,
		TargetDate:  input.TargetDate,
	})
	if err != nil {
		return writeError(c, err, "Failed to create milestone")
	}

	recordActivity(c, pc.Store, pc.Logger, project.TeamID, "milestone.created", "milestone", milestone.ID)
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(milestone))
}

func (pc *ProjectController) UpdateMilestone(c *fiber.Ctx) error {
	var patch models.MilestonePatch
	if err := c.BodyParser(&patch); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(patch); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	project, err := pc.loadProject(c)
	if err != nil {
		return writeError(c, err, "Failed to load project")
	}

	milestone, err := pc.Store.UpdateMilestone(c.UserContext(), project.ID, c.Params("milestoneId"), patch)
	if err != nil {
		return writeError(c, err, "Failed to update milestone")
	}

	recordActivity(c, pc.Store, pc.Logger, project.TeamID, "milestone.updated", "milestone", milestone.ID)
	return c.JSON(utils.SuccessResponse(milestone))
}
