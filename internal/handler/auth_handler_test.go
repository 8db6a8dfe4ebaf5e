package handler_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/voteguard/voteguard-api/internal/dto"
	"github.com/voteguard/voteguard-api/internal/handler"
	"github.com/voteguard/voteguard-api/internal/middleware"
	"github.com/voteguard/voteguard-api/internal/service"
)

type mockAuthService struct {
	registered dto.UserResponse
	auth       dto.AuthResponse
	err        error
}

func (m *mockAuthService) Register(_ context.Context, _ dto.RegisterRequest) (dto.UserResponse, error) {
	if m.err != nil {
		return dto.UserResponse{}, m.err
	}
	return m.registered, nil
}

func (m *mockAuthService) Login(_ context.Context, _ dto.LoginRequest) (dto.AuthResponse, error) {
	if m.err != nil {
		return dto.AuthResponse{}, m.err
	}
	return m.auth, nil
}

func (m *mockAuthService) Logout(_ context.Context, _ string) error {
	return m.err
}

func (m *mockAuthService) IsSessionActive(_ context.Context, _ string) (bool, error) {
	return true, nil
}

type mockOTPService struct {
	sendErr   error
	verifyErr error
	sent      int
}

func (m *mockOTPService) Send(_ context.Context, _ dto.SendOTPRequest) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent++
	return nil
}

func (m *mockOTPService) Verify(_ context.Context, _ dto.VerifyOTPRequest) error {
	return m.verifyErr
}

func newAuthApp(auth *mockAuthService, otp *mockOTPService) *fiber.App {
	logger := zerolog.New(io.Discard)
	app := fiber.New()
	handler.NewAuthHandler(auth, otp, false, logger).Register(app.Group("/api/v1/auth"))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, payload string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAuthHandler_LoginSetsSessionCookie(t *testing.T) {
	auth := &mockAuthService{auth: dto.AuthResponse{
		Token:     "signed.jwt.token",
		ExpiresAt: time.Now().Add(24 * time.Hour),
		User:      dto.UserResponse{ID: 42, Email: "voter@example.com", Roles: []string{"voter"}},
	}}
	app := newAuthApp(auth, &mockOTPService{})

	resp := postJSON(t, app, "/api/v1/auth/login", `{"email":"voter@example.com","password":"hunter22"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var sessionCookie *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			sessionCookie = cookie
		}
	}
	require.NotNil(t, sessionCookie)
	require.Equal(t, "signed.jwt.token", sessionCookie.Value)
	require.True(t, sessionCookie.HttpOnly)

	var body struct {
		Success bool             `json:"success"`
		Data    dto.AuthResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, uint(42), body.Data.User.ID)
}

func TestAuthHandler_LoginInvalidCredentials(t *testing.T) {
	auth := &mockAuthService{err: service.ErrInvalidCredentials}
	app := newAuthApp(auth, &mockOTPService{})

	resp := postJSON(t, app, "/api/v1/auth/login", `{"email":"voter@example.com","password":"wrong"}`)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHandler_RegisterConflictOnDuplicateEmail(t *testing.T) {
	auth := &mockAuthService{err: service.ErrEmailTaken}
	app := newAuthApp(auth, &mockOTPService{})

	resp := postJSON(t, app, "/api/v1/auth/register", `{"name":"Casey","email":"taken@example.com","phone":"+15550100","password":"hunter22","confirm_password":"hunter22","role":"voter","security_answers":["blue","rex"]}`)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestAuthHandler_RegisterRequiresVerifiedOTP(t *testing.T) {
	auth := &mockAuthService{err: service.ErrOTPNotVerified}
	app := newAuthApp(auth, &mockOTPService{})

	resp := postJSON(t, app, "/api/v1/auth/register", `{"name":"Casey","email":"new@example.com","phone":"+15550100","password":"hunter22","confirm_password":"hunter22","role":"voter","security_answers":["blue","rex"]}`)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAuthHandler_SendOTPCooldown(t *testing.T) {
	otp := &mockOTPService{sendErr: service.ErrOTPCooldown}
	app := newAuthApp(&mockAuthService{}, otp)

	resp := postJSON(t, app, "/api/v1/auth/send-otp", `{"channel":"email","destination":"voter@example.com"}`)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestAuthHandler_VerifyOTPInvalidCode(t *testing.T) {
	otp := &mockOTPService{verifyErr: service.ErrOTPInvalid}
	app := newAuthApp(&mockAuthService{}, otp)

	resp := postJSON(t, app, "/api/v1/auth/verify-otp", `{"channel":"email","destination":"voter@example.com","code":"000000"}`)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
