package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	controller "teamdesk/controllers"
	"teamdesk/middleware"
	"teamdesk/store"
	"teamdesk/utils"
	"teamdesk/worker"
)

// Deps carries everything the route tables need.
type Deps struct {
	Store              store.Store
	Tokens             *utils.TokenManager
	Logger             *logrus.Logger
	LoginRateLimit     int
	RateLimitStorage   fiber.Storage
	NotifyPollInterval time.Duration
}

func SetupAuthRoutes(app *fiber.App, deps Deps) {
	authController := controller.NewAuthController(deps.Store, deps.Tokens, utils.Component(deps.Logger, "auth"))
	apiKeyController := controller.NewAPIKeyController(deps.Store, utils.Component(deps.Logger, "api_keys"))
	protected := middleware.Protected(deps.Tokens, deps.Store)

	auth := app.Group("/auth")
	auth.Post("/login", middleware.LoginRateLimiter(deps.LoginRateLimit, deps.RateLimitStorage), authController.Login)
	auth.Get("/me", protected, authController.Me)

	keys := app.Group("/api-keys", protected)
	keys.Post("/", apiKeyController.CreateAPIKey)
	keys.Get("/", apiKeyController.ListAPIKeys)
	keys.Delete("/:id", apiKeyController.DeleteAPIKey)

	deps.Logger.Debug("Authentication routes initialized")
}

func SetupAPIRoutes(app *fiber.App, deps Deps) {
	workspaceController := controller.NewWorkspaceController(deps.Store, utils.Component(deps.Logger, "workspaces"))
	teamController := controller.NewTeamController(deps.Store, utils.Component(deps.Logger, "teams"))
	projectController := controller.NewProjectController(deps.Store, utils.Component(deps.Logger, "projects"))

	feedLogger := utils.Component(deps.Logger, "notifications")
	feed := worker.NewNotificationFeed(deps.Store, deps.NotifyPollInterval, feedLogger)
	notificationController := controller.NewNotificationController(deps.Store, feed, feedLogger)

	protected := middleware.Protected(deps.Tokens, deps.Store)

	// Issue routes
	app.Patch("/issues/:id", protected, teamController.UpdateIssue)

	// Team routes
	team := app.Group("/teams/:teamId", protected)
	team.Get("/", teamController.GetTeam)
	team.Get("/views", teamController.ListViews)
	team.Get("/logs", teamController.ListLogs)
	team.Get("/issues", teamController.ListIssues)
	team.Post("/issues", teamController.CreateIssue)
	team.Post("/projects", projectController.CreateProject)

	// Project routes
	project := team.Group("/projects/:projectId")
	project.Get("/", projectController.GetProject)
	project.Patch("/", projectController.UpdateProject)
	project.Get("/updates", projectController.ListUpdates)
	project.Post("/updates", projectController.CreateUpdate)
	project.Get("/updates/:updateId/comments", projectController.ListComments)
	project.Post("/updates/:updateId/comments", projectController.CreateComment)
	project.Post("/milestones", projectController.CreateMilestone)
	project.Patch("/milestones/:milestoneId", projectController.UpdateMilestone)

	// Workspace routes
	workspaces := app.Group("/workspaces", protected)
	workspaces.Get("/", workspaceController.ListWorkspaces)
	workspaces.Post("/", workspaceController.CreateWorkspace)

	workspace := workspaces.Group("/:workspaceId")
	workspace.Get("/projects", workspaceController.ListProjects)
	workspace.Get("/teams", workspaceController.ListTeams)
	workspace.Post("/teams", workspaceController.CreateTeam)
	workspace.Get("/members", workspaceController.ListMembers)
	workspace.Post("/members/invite", workspaceController.InviteMember)
	workspace.Get("/invitations", workspaceController.ListInvitations)
	workspace.Get("/views", workspaceController.ListViews)
	workspace.Get("/roles", workspaceController.ListRoles)

	// Notification routes
	notifications := app.Group("/notifications", protected)
	notifications.Get("/", notificationController.ListNotifications)
	notifications.Post("/:id/read", notificationController.MarkRead)

	// WebSocket route for the live notification feed
	app.Get("/ws/notifications", protected, notificationController.RequireUpgrade, websocket.New(notificationController.Stream))

	deps.Logger.Debug("API routes initialized")
}

func SetupRoutes(app *fiber.App, deps Deps) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup auth routes
	SetupAuthRoutes(app, deps)

	// Setup API routes
	SetupAPIRoutes(app, deps)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "The requested resource was not found", nil)
	})
}
