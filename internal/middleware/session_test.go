package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/voteguard/voteguard-api/internal/middleware"
)

const testSecret = "test-secret"

type sessionCheckerStub struct {
	active  bool
	lastSID string
}

func (s *sessionCheckerStub) IsSessionActive(_ context.Context, tokenID string) (bool, error) {
	s.lastSID = tokenID
	return s.active, nil
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newSessionApp(checker middleware.SessionChecker) *fiber.App {
	app := fiber.New()
	app.Get("/me", middleware.SessionProtected(testSecret, checker), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("user_id"),
			"roles":   c.Locals("user_roles"),
			"sid":     c.Locals("session_id"),
		})
	})
	return app
}

func performSession(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestSessionProtectedValidToken(t *testing.T) {
	checker := &sessionCheckerStub{active: true}
	app := newSessionApp(checker)

	token := signToken(t, jwt.MapClaims{
		"sub":   float64(42),
		"roles": []string{"voter"},
		"sid":   "sess-1",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	resp := performSession(t, app, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "sess-1", checker.lastSID)
}

func TestSessionProtectedBearerHeaderFallback(t *testing.T) {
	app := newSessionApp(nil)

	token := signToken(t, jwt.MapClaims{
		"sub": float64(42),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSessionProtectedMissingToken(t *testing.T) {
	app := newSessionApp(nil)

	resp := performSession(t, app, "")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSessionProtectedMalformedToken(t *testing.T) {
	app := newSessionApp(nil)

	resp := performSession(t, app, "not-a-jwt")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSessionProtectedExpiredToken(t *testing.T) {
	app := newSessionApp(nil)

	token := signToken(t, jwt.MapClaims{
		"sub": float64(42),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	resp := performSession(t, app, token)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSessionProtectedRevokedSession(t *testing.T) {
	checker := &sessionCheckerStub{active: false}
	app := newSessionApp(checker)

	token := signToken(t, jwt.MapClaims{
		"sub": float64(42),
		"sid": "sess-gone",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	resp := performSession(t, app, token)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "sess-gone", checker.lastSID)
}
