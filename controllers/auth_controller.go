package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"teamdesk/middleware"
	"teamdesk/models"
	"teamdesk/store"
	"teamdesk/utils"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string      `json:"accessToken"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	User        models.User `json:"user"`
}

type AuthController struct {
	Users  store.Users
	Tokens *utils.TokenManager
	Logger *logrus.Entry
}

func NewAuthController(users store.Users, tokens *utils.TokenManager, logger *logrus.Entry) *AuthController {
	return &AuthController{
		Users:  users,
		Tokens: tokens,
		Logger: logger,
	}
}

// Login exchanges email and password for an access token.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	user, err := ac.Users.UserByEmail(c.UserContext(), strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid email or password", nil)
		}
		return writeError(c, err, "Failed to log in")
	}

	if user.PasswordHash == "" || !utils.CheckPassword(user.PasswordHash, req.Password) {
		ac.Logger.WithField("user_id", user.ID).Warn("Failed login attempt")
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid email or password", nil)
	}

	token, expiresAt, err := ac.Tokens.Generate(user.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate token", err)
	}

	ac.Logger.WithField("user_id", user.ID).Info("User logged in")
	return c.JSON(utils.SuccessResponse(LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        user,
	}))
}

// Me returns the authenticated user.
func (ac *AuthController) Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Authorization required", nil)
	}
	return c.JSON(utils.SuccessResponse(user))
}

type APIKeyController struct {
	Keys   store.APIKeys
	Logger *logrus.Entry
}

func NewAPIKeyController(keys store.APIKeys, logger *logrus.Entry) *APIKeyController {
	return &APIKeyController{
		Keys:   keys,
		Logger: logger,
	}
}

// CreateAPIKey issues a key. The plaintext is only ever returned here.
func (kc *APIKeyController) CreateAPIKey(c *fiber.Ctx) error {
	var input struct {
		Name string `json:"name" validate:"required,max=100"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	plaintext, prefix, err := utils.GenerateAPIKey()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate API key", err)
	}

	key, err := kc.Keys.InsertAPIKey(c.UserContext(), models.APIKey{
		UserID:  middleware.CurrentUserID(c),
		Name:    input.Name,
		Prefix:  prefix,
		KeyHash: utils.HashAPIKey(plaintext),
	})
	if err != nil {
		return writeError(c, err, "Failed to create API key")
	}

	kc.Logger.WithFields(logrus.Fields{"user_id": key.UserID, "api_key_id": key.ID}).Info("API key created")
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{
		"apiKey": key,
		"key":    plaintext,
	}))
}

func (kc *APIKeyController) ListAPIKeys(c *fiber.Ctx) error {
	keys, err := kc.Keys.APIKeysByUserID(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return writeError(c, err, "Failed to list API keys")
	}
	return c.JSON(utils.SuccessResponse(keys))
}

func (kc *APIKeyController) DeleteAPIKey(c *fiber.Ctx) error {
	if err := kc.Keys.DeleteAPIKey(c.UserContext(), middleware.CurrentUserID(c), c.Params("id")); err != nil {
		return writeError(c, err, "Failed to delete API key")
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"deleted": true}))
}
