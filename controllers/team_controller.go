package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"teamdesk/models"
	"teamdesk/store"
	"teamdesk/utils"
)

const maxLogLimit = 200

type TeamController struct {
	Store  store.Store
	Logger *logrus.Entry
}

func NewTeamController(st store.Store, logger *logrus.Entry) *TeamController {
	return &TeamController{
		Store:  st,
		Logger: logger,
	}
}

func (tc *TeamController) GetTeam(c *fiber.Ctx) error {
	team, err := tc.Store.TeamByID(c.UserContext(), c.Params("teamId"))
	if err != nil {
		return writeError(c, err, "Failed to load team")
	}
	return c.JSON(utils.SuccessResponse(team))
}

func (tc *TeamController) ListViews(c *fiber.Ctx) error {
	views, err := tc.Store.ViewsByTeamID(c.UserContext(), c.Params("teamId"))
	if err != nil {
		return writeError(c, err, "Failed to list views")
	}
	return c.JSON(utils.SuccessResponse(views))
}

// ListLogs returns the team's activity, newest first. ?limit= caps the count.
func (tc *TeamController) ListLogs(c *fiber.Ctx) error {
	limit := utils.QueryLimit(c, "limit", store.DefaultActivityLimit, maxLogLimit)
	activity, err := tc.Store.ActivityByTeamID(c.UserContext(), c.Params("teamId"), limit)
	if err != nil {
		return writeError(c, err, "Failed to list activity")
	}
	return c.JSON(utils.SuccessResponse(activity))
}

func (tc *TeamController) ListIssues(c *fiber.Ctx) error {
	issues, err := tc.Store.IssuesByTeamID(c.UserContext(), c.Params("teamId"))
	if err != nil {
		return writeError(c, err, "Failed to list issues")
	}
	return c.JSON(utils.SuccessResponse(issues))
}

func (tc *TeamController) CreateIssue(c *fiber.Ctx) error {
	var input struct {
		Title       string  `json:"title" validate:"required,max=300"`
		Description string  `json:"description" validate:"max=10000"`
		Status      string  `json:"status" validate:"omitempty,oneof=backlog todo in_progress done canceled"`
		Priority    int     `json:"priority" validate:"min=0,max=4"`
		AssigneeID  *string `json:"assigneeId"`
		ProjectID   *string `json:"projectId"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	issue, err := tc.Store.InsertIssue(c.UserContext(), models.Issue{
		TeamID:      c.Params("teamId"),
		ProjectID:   input.ProjectID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		AssigneeID:  input.AssigneeID,
	})
	if err != nil {
		return writeError(c, err, "Failed to create issue")
	}

	recordActivity(c, tc.Store, tc.Logger, issue.TeamID, "issue.created", "issue", issue.ID)
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(issue))
}

// UpdateIssue applies a partial update to an issue.
func (tc *TeamController) UpdateIssue(c *fiber.Ctx) error {
	var patch models.IssuePatch
	if err := c.BodyParser(&patch); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(patch); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	issue, err := tc.Store.UpdateIssue(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return writeError(c, err, "Failed to update issue")
	}

	recordActivity(c, tc.Store, tc.Logger, issue.TeamID, "issue.updated", "issue", issue.ID)
	return c.JSON(utils.SuccessResponse(issue))
}
