package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/voteguard/voteguard-api/internal/dto"
	"github.com/voteguard/voteguard-api/internal/models"
	"github.com/voteguard/voteguard-api/internal/repository"
)

type userRepoStub struct {
	users     map[uint]models.User
	deleted   []uint
	roleCalls [][]string
}

func newUserRepoStub(users ...models.User) *userRepoStub {
	stub := &userRepoStub{users: make(map[uint]models.User, len(users))}
	for _, user := range users {
		stub.users[user.ID] = user
	}
	return stub
}

func (s *userRepoStub) Create(_ context.Context, user *models.User) error {
	s.users[user.ID] = *user
	return nil
}

func (s *userRepoStub) GetByID(_ context.Context, id uint) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *userRepoStub) GetByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (s *userRepoStub) List(_ context.Context, _ repository.UserFilter) ([]models.User, int64, error) {
	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	return users, int64(len(users)), nil
}

func (s *userRepoStub) Update(_ context.Context, id uint, updates map[string]interface{}) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	if name, ok := updates["name"].(string); ok {
		user.Name = name
	}
	if status, ok := updates["status"].(string); ok {
		user.Status = status
	}
	s.users[id] = user
	return user, nil
}

func (s *userRepoStub) ReplaceRoles(_ context.Context, id uint, roles []string) error {
	s.roleCalls = append(s.roleCalls, roles)
	user, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Roles = nil
	for _, role := range roles {
		user.Roles = append(user.Roles, models.UserRole{UserID: id, Role: role})
	}
	s.users[id] = user
	return nil
}

func (s *userRepoStub) DeleteCascade(_ context.Context, id uint) error {
	if _, ok := s.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.users, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *userRepoStub) TouchLastLogin(_ context.Context, _ uint) error {
	return nil
}

func userWithRoles(id uint, email string, roles ...string) models.User {
	user := models.User{ID: id, Name: email, Email: email, Status: models.UserStatusActive}
	for _, role := range roles {
		user.Roles = append(user.Roles, models.UserRole{UserID: id, Role: role})
	}
	return user
}

func newAdminUserServiceForTest(repo *userRepoStub, audit *auditRecorderStub) AdminUserService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewAdminUserService(repo, validate, audit, testLogger())
}

func TestAdminUserServiceDeleteTiers(t *testing.T) {
	superadmin := AuditActor{ID: 1, Role: models.RoleSuperAdmin}
	admin := AuditActor{ID: 2, Role: models.RoleAdmin}

	t.Run("admin deletes voter", func(t *testing.T) {
		repo := newUserRepoStub(userWithRoles(10, "voter@example.com", models.RoleVoter))
		audit := &auditRecorderStub{}
		svc := newAdminUserServiceForTest(repo, audit)

		require.NoError(t, svc.Delete(context.Background(), 10, admin))
		require.Equal(t, []uint{10}, repo.deleted)
		require.Equal(t, "user.deleted", audit.lastAction())
	})

	t.Run("admin cannot delete admin", func(t *testing.T) {
		repo := newUserRepoStub(userWithRoles(20, "other-admin@example.com", models.RoleVoter, models.RoleAdmin))
		svc := newAdminUserServiceForTest(repo, &auditRecorderStub{})

		err := svc.Delete(context.Background(), 20, admin)
		require.ErrorIs(t, err, ErrDeleteForbidden)
		require.Empty(t, repo.deleted)
	})

	t.Run("admin cannot delete superadmin", func(t *testing.T) {
		repo := newUserRepoStub(userWithRoles(1, "root@example.com", models.RoleSuperAdmin))
		svc := newAdminUserServiceForTest(repo, &auditRecorderStub{})

		err := svc.Delete(context.Background(), 1, admin)
		require.ErrorIs(t, err, ErrDeleteForbidden)
	})

	t.Run("superadmin deletes admin", func(t *testing.T) {
		repo := newUserRepoStub(userWithRoles(20, "other-admin@example.com", models.RoleAdmin))
		svc := newAdminUserServiceForTest(repo, &auditRecorderStub{})

		require.NoError(t, svc.Delete(context.Background(), 20, superadmin))
		require.Equal(t, []uint{20}, repo.deleted)
	})

	t.Run("superadmin cannot delete itself", func(t *testing.T) {
		repo := newUserRepoStub(userWithRoles(1, "root@example.com", models.RoleSuperAdmin))
		svc := newAdminUserServiceForTest(repo, &auditRecorderStub{})

		err := svc.Delete(context.Background(), 1, superadmin)
		require.ErrorIs(t, err, ErrSelfDelete)
		require.Empty(t, repo.deleted)
	})

	t.Run("voter role cannot delete at all", func(t *testing.T) {
		repo := newUserRepoStub(userWithRoles(10, "voter@example.com", models.RoleVoter))
		svc := newAdminUserServiceForTest(repo, &auditRecorderStub{})

		err := svc.Delete(context.Background(), 10, AuditActor{ID: 99, Role: models.RoleVoter})
		require.ErrorIs(t, err, ErrDeleteForbidden)
	})

	t.Run("missing user", func(t *testing.T) {
		repo := newUserRepoStub()
		svc := newAdminUserServiceForTest(repo, &auditRecorderStub{})

		err := svc.Delete(context.Background(), 404, superadmin)
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestAdminUserServiceUpdateReplacesRoles(t *testing.T) {
	repo := newUserRepoStub(userWithRoles(10, "voter@example.com", models.RoleVoter))
	audit := &auditRecorderStub{}
	svc := newAdminUserServiceForTest(repo, audit)

	roles := []string{"voter", "admin", "admin"}
	resp, err := svc.Update(context.Background(), 10, dto.AdminUserUpdateRequest{Roles: &roles}, AuditActor{ID: 1, Role: models.RoleSuperAdmin})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{models.RoleVoter, models.RoleAdmin}, resp.Roles)
	require.Len(t, repo.roleCalls, 1)
	require.Equal(t, []string{"voter", "admin"}, repo.roleCalls[0], "duplicates are dropped before the write")
	require.Equal(t, "user.updated", audit.lastAction())
}

func TestAdminUserServiceUpdateStatus(t *testing.T) {
	repo := newUserRepoStub(userWithRoles(10, "voter@example.com", models.RoleVoter))
	svc := newAdminUserServiceForTest(repo, &auditRecorderStub{})

	status := "suspended"
	resp, err := svc.Update(context.Background(), 10, dto.AdminUserUpdateRequest{Status: &status}, AuditActor{ID: 1, Role: models.RoleSuperAdmin})
	require.NoError(t, err)
	require.Equal(t, models.UserStatusSuspended, resp.Status)
}
