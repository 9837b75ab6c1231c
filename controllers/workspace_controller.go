package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"teamdesk/middleware"
	"teamdesk/models"
	"teamdesk/store"
	"teamdesk/utils"
)

type WorkspaceController struct {
	Store  store.Store
	Logger *logrus.Entry
}

func NewWorkspaceController(st store.Store, logger *logrus.Entry) *WorkspaceController {
	return &WorkspaceController{
		Store:  st,
		Logger: logger,
	}
}

func (wc *WorkspaceController) ListWorkspaces(c *fiber.Ctx) error {
	workspaces, err := wc.Store.Workspaces(c.UserContext())
	if err != nil {
		return writeError(c, err, "Failed to list workspaces")
	}
	return c.JSON(utils.SuccessResponse(workspaces))
}

// CreateWorkspace creates the workspace and adds the caller as its first member.
func (wc *WorkspaceController) CreateWorkspace(c *fiber.Ctx) error {
	var input struct {
		Name string `json:"name" validate:"required,max=100"`
		Slug string `json:"slug" validate:"omitempty,max=100"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	slug := slugify(input.Slug)
	if slug == "" {
		slug = slugify(input.Name)
	}
	if slug == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", errors.New("slug is invalid"))
	}

	workspace, err := wc.Store.InsertWorkspace(c.UserContext(), models.Workspace{Name: input.Name, Slug: slug})
	if err != nil {
		return writeError(c, err, "Failed to create workspace")
	}

	if user := middleware.CurrentUser(c); user != nil {
		_, err := wc.Store.InsertMember(c.UserContext(), models.Member{
			WorkspaceID: workspace.ID,
			UserID:      &user.ID,
			Email:       user.Email,
			Name:        user.Name,
		})
		if err != nil {
			wc.Logger.WithError(err).WithField("workspace_id", workspace.ID).Warn("Failed to add creator as member")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(workspace))
}

func (wc *WorkspaceController) ListProjects(c *fiber.Ctx) error {
	projects, err := wc.Store.ProjectsByWorkspaceID(c.UserContext(), c.Params("workspaceId"))
	if err != nil {
		return writeError(c, err, "Failed to list projects")
	}
	return c.JSON(utils.SuccessResponse(projects))
}

func (wc *WorkspaceController) ListTeams(c *fiber.Ctx) error {
	teams, err := wc.Store.TeamsByWorkspaceID(c.UserContext(), c.Params("workspaceId"))
	if err != nil {
		return writeError(c, err, "Failed to list teams")
	}
	return c.JSON(utils.SuccessResponse(teams))
}

func (wc *WorkspaceController) CreateTeam(c *fiber.Ctx) error {
	var input struct {
		Name string `json:"name" validate:"required,max=100"`
		Key  string `json:"key" validate:"omitempty,alphanum,max=10"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	workspace, err := wc.Store.WorkspaceByID(c.UserContext(), c.Params("workspaceId"))
	if err != nil {
		return writeError(c, err, "Failed to load workspace")
	}

	key := strings.ToUpper(input.Key)
	if key == "" {
		key = teamKey(input.Name)
	}

	team, err := wc.Store.InsertTeam(c.UserContext(), models.Team{
		WorkspaceID: workspace.ID,
		Name:        input.Name,
		Key:         key,
	})
	if err != nil {
		return writeError(c, err, "Failed to create team")
	}

	recordActivity(c, wc.Store, wc.Logger, team.ID, "team.created", "team", team.ID)
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(team))
}

func (wc *WorkspaceController) ListMembers(c *fiber.Ctx) error {
	members, err := wc.Store.MembersByWorkspaceID(c.UserContext(), c.Params("workspaceId"))
	if err != nil {
		return writeError(c, err, "Failed to list members")
	}
	return c.JSON(utils.SuccessResponse(members))
}

// InviteMember stores an invitation and notifies the invitee if they
// already have an account.
func (wc *WorkspaceController) InviteMember(c *fiber.Ctx) error {
	var input struct {
		Email  string  `json:"email" validate:"required,email"`
		RoleID *string `json:"roleId"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if err := utils.ValidateEmail(input.Email); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	workspace, err := wc.Store.WorkspaceByID(c.UserContext(), c.Params("workspaceId"))
	if err != nil {
		return writeError(c, err, "Failed to load workspace")
	}

	workspaceID := workspace.ID
	invitation, err := wc.Store.InsertInvitation(c.UserContext(), models.Invitation{
		WorkspaceID: &workspaceID,
		Email:       strings.ToLower(input.Email),
		RoleID:      input.RoleID,
	})
	if err != nil {
		return writeError(c, err, "Failed to invite member")
	}

	invitee, err := wc.Store.UserByEmail(c.UserContext(), invitation.Email)
	switch {
	case err == nil:
		_, err = wc.Store.InsertNotification(c.UserContext(), models.Notification{
			UserID: invitee.ID,
			Type:   "invitation",
			Title:  "You have been invited to a workspace",
			Body:   workspaceID,
		})
		if err != nil {
			wc.Logger.WithError(err).Warn("Failed to notify invitee")
		}
	case !errors.Is(err, store.ErrNotFound):
		wc.Logger.WithError(err).Warn("Failed to look up invitee")
	}

	utils.LogEvent("member_invited", map[string]interface{}{
		"workspace_id":  workspaceID,
		"invitation_id": invitation.ID,
	})
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(invitation))
}

func (wc *WorkspaceController) ListInvitations(c *fiber.Ctx) error {
	invitations, err := wc.Store.InvitationsByWorkspaceID(c.UserContext(), c.Params("workspaceId"))
	if err != nil {
		return writeError(c, err, "Failed to list invitations")
	}
	return c.JSON(utils.SuccessResponse(invitations))
}

// ListViews returns the views that belong to the workspace rather than a team.
func (wc *WorkspaceController) ListViews(c *fiber.Ctx) error {
	views, err := wc.Store.ViewsWithoutTeamID(c.UserContext(), c.Params("workspaceId"))
	if err != nil {
		return writeError(c, err, "Failed to list views")
	}
	return c.JSON(utils.SuccessResponse(views))
}

func (wc *WorkspaceController) ListRoles(c *fiber.Ctx) error {
	roles, err := wc.Store.RolesByWorkspaceID(c.UserContext(), c.Params("workspaceId"))
	if err != nil {
		return writeError(c, err, "Failed to list roles")
	}
	return c.JSON(utils.SuccessResponse(roles))
}
