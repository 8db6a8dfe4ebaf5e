package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/voteguard/voteguard-api/internal/dto"
	"github.com/voteguard/voteguard-api/internal/handler"
	"github.com/voteguard/voteguard-api/internal/service"
)

type mockAdminUserService struct {
	list      dto.AdminUserListResponse
	user      dto.UserResponse
	err       error
	deleteErr error
	lastActor service.AuditActor
}

func (m *mockAdminUserService) List(_ context.Context, _ dto.AdminUserListRequest) (dto.AdminUserListResponse, error) {
	if m.err != nil {
		return dto.AdminUserListResponse{}, m.err
	}
	return m.list, nil
}

func (m *mockAdminUserService) Get(_ context.Context, _ uint) (dto.UserResponse, error) {
	if m.err != nil {
		return dto.UserResponse{}, m.err
	}
	return m.user, nil
}

func (m *mockAdminUserService) Update(_ context.Context, _ uint, _ dto.AdminUserUpdateRequest, actor service.AuditActor) (dto.UserResponse, error) {
	m.lastActor = actor
	if m.err != nil {
		return dto.UserResponse{}, m.err
	}
	return m.user, nil
}

func (m *mockAdminUserService) Delete(_ context.Context, _ uint, actor service.AuditActor) error {
	m.lastActor = actor
	return m.deleteErr
}

func newAdminUserApp(users *mockAdminUserService, actorID uint, roles []string) *fiber.App {
	logger := zerolog.New(io.Discard)
	app := fiber.New()
	group := app.Group("/api/v1/admin/users", func(c *fiber.Ctx) error {
		c.Locals("user_id", actorID)
		c.Locals("user_roles", roles)
		return c.Next()
	})
	handler.NewAdminUserHandler(users, logger).Register(group)
	return app
}

func TestAdminUserHandler_DeleteForbiddenTier(t *testing.T) {
	users := &mockAdminUserService{deleteErr: service.ErrDeleteForbidden}
	app := newAdminUserApp(users, 2, []string{"admin"})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/users/20", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, uint(2), users.lastActor.ID)
	require.Equal(t, "admin", users.lastActor.Role)
}

func TestAdminUserHandler_DeleteSelfForbidden(t *testing.T) {
	users := &mockAdminUserService{deleteErr: service.ErrSelfDelete}
	app := newAdminUserApp(users, 1, []string{"superadmin"})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/users/1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, "superadmin", users.lastActor.Role)
}

func TestAdminUserHandler_DeleteSuccess(t *testing.T) {
	users := &mockAdminUserService{}
	app := newAdminUserApp(users, 1, []string{"superadmin"})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/users/20", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "user deleted", body.Message)
}

func TestAdminUserHandler_DeleteMissingUser(t *testing.T) {
	users := &mockAdminUserService{deleteErr: service.ErrUserNotFound}
	app := newAdminUserApp(users, 1, []string{"superadmin"})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/users/404", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdminUserHandler_ListUsers(t *testing.T) {
	users := &mockAdminUserService{list: dto.AdminUserListResponse{
		Items:      []dto.UserResponse{{ID: 10, Email: "voter@example.com", Roles: []string{"voter"}}},
		Pagination: dto.PaginationMeta{Page: 1, PageSize: 20, TotalItems: 1, TotalPages: 1},
	}}
	app := newAdminUserApp(users, 1, []string{"superadmin"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users?role=voter", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                      `json:"success"`
		Data    dto.AdminUserListResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Len(t, body.Data.Items, 1)
}
