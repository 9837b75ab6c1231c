package utils

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestTokenManagerRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, expiresAt, err := m.Generate("user-1")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
}

func TestTokenManagerRejectsForeignAndExpiredTokens(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)

	token, _, err := other.Generate("user-1")
	require.NoError(t, err)
	_, err = m.Parse(token)
	require.Error(t, err)

	expired := NewTokenManager("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err = expired.Generate("user-1")
	require.NoError(t, err)
	_, err = m.Parse(token)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = m.Parse("not-a-token")
	require.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	require.True(t, CheckPassword(hash, "correct horse"))
	require.False(t, CheckPassword(hash, "wrong"))
}

func TestGenerateAPIKey(t *testing.T) {
	key, prefix, err := GenerateAPIKey()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(key, APIKeyPrefix))
	require.True(t, strings.HasPrefix(key, prefix))
	require.Len(t, key, len(APIKeyPrefix)+48)

	other, _, err := GenerateAPIKey()
	require.NoError(t, err)
	require.NotEqual(t, key, other)

	require.Len(t, HashAPIKey(key), 64)
	require.Equal(t, HashAPIKey(key), HashAPIKey(key))
	require.NotEqual(t, HashAPIKey(key), HashAPIKey(other))
}

func TestValidateStruct(t *testing.T) {
	type input struct {
		Email string `json:"email" validate:"required,email"`
		Name  string `json:"name" validate:"required,max=5"`
	}

	require.NoError(t, ValidateStruct(input{Email: "a@b.com", Name: "ok"}))

	err := ValidateStruct(input{Name: "too long"})
	require.EqualError(t, err, "email is required, name must be at most 5")
}

func TestValidateEmail(t *testing.T) {
	require.NoError(t, ValidateEmail("a@b.com"))
	require.Error(t, ValidateEmail("not-an-email"))
}

func TestQueryLimit(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(strconv.Itoa(QueryLimit(c, "limit", 50, 200)))
	})

	cases := map[string]int{
		"/":            50,
		"/?limit=10":   10,
		"/?limit=0":    50,
		"/?limit=-3":   50,
		"/?limit=abc":  50,
		"/?limit=1000": 200,
	}
	for path, want := range cases {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		require.Equal(t, strconv.Itoa(want), string(body), path)
	}
}
