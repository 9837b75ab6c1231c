package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"teamdesk/models"
	"teamdesk/store"
	"teamdesk/utils"
)

// Locals keys set by Protected.
const (
	LocalUser       = "user"
	LocalUserID     = "userID"
	LocalAuthMethod = "authMethod"
)

// AuthStore is what Protected needs to resolve a caller.
type AuthStore interface {
	store.Users
	store.APIKeys
}

// Protected accepts either an X-API-Key header or a JWT, taken from the
// Authorization header, the access_token cookie or the token query
// parameter in that order.
func Protected(tokens *utils.TokenManager, st AuthStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			userID string
			method string
		)

		if apiKey := c.Get("X-API-Key"); apiKey != "" {
			key, err := st.APIKeyByHash(c.UserContext(), utils.HashAPIKey(apiKey))
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid API key", nil)
				}
				return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to verify API key", err)
			}
			if err := st.TouchAPIKey(c.UserContext(), key.ID, time.Now().UTC()); err != nil {
				utils.LogError("api_key_touch", err, map[string]interface{}{"api_key_id": key.ID})
			}
			userID, method = key.UserID, "api_key"
		} else {
			token, err := bearerToken(c)
			if err != nil {
				return utils.ErrorResponse(c, fiber.StatusUnauthorized, err.Error(), nil)
			}
			claims, err := tokens.Parse(token)
			if err != nil {
				return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid or expired token", nil)
			}
			userID, method = claims.UserID, "jwt"
		}

		user, err := st.UserByID(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return utils.ErrorResponse(c, fiber.StatusUnauthorized, "User not found", nil)
			}
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load user", err)
		}

		c.Locals(LocalUser, &user)
		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalAuthMethod, method)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, error) {
	if authHeader := c.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", errors.New("Invalid authorization format")
		}
		return parts[1], nil
	}
	if token := c.Cookies("access_token"); token != "" {
		return token, nil
	}
	if token := c.Query("token"); token != "" {
		return token, nil
	}
	return "", errors.New("Authorization required")
}

// CurrentUserID returns the caller resolved by Protected, or "".
func CurrentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// CurrentUser returns the caller resolved by Protected, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(LocalUser).(*models.User)
	return user
}
