package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/voteguard/voteguard-api/internal/models"
)

func TestUserRepositoryDeleteCascadeRemovesDependents(t *testing.T) {
	db := setupVoteTestDB(t)
	repo := NewUserRepository(db)

	user := models.User{
		Name:         "Casey Vole",
		Email:        "casey@example.com",
		PasswordHash: "x",
		Status:       models.UserStatusActive,
		Roles:        []models.UserRole{{Role: models.RoleVoter}},
	}
	require.NoError(t, repo.Create(context.Background(), &user))
	require.NoError(t, db.Create(&models.UserSession{
		TokenID:   "tok-1",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}).Error)

	require.NoError(t, repo.DeleteCascade(context.Background(), user.ID))

	var roleCount, sessionCount int64
	require.NoError(t, db.Model(&models.UserRole{}).Where("user_id = ?", user.ID).Count(&roleCount).Error)
	require.NoError(t, db.Model(&models.UserSession{}).Where("user_id = ?", user.ID).Count(&sessionCount).Error)
	require.Zero(t, roleCount)
	require.Zero(t, sessionCount)

	_, err := repo.GetByID(context.Background(), user.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.DeleteCascade(context.Background(), user.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepositoryListFiltersByRole(t *testing.T) {
	db := setupVoteTestDB(t)
	repo := NewUserRepository(db)

	voter := models.User{Name: "Vera", Email: "vera@example.com", PasswordHash: "x", Roles: []models.UserRole{{Role: models.RoleVoter}}}
	admin := models.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "x", Roles: []models.UserRole{{Role: models.RoleAdmin}}}
	require.NoError(t, repo.Create(context.Background(), &voter))
	require.NoError(t, repo.Create(context.Background(), &admin))

	users, total, err := repo.List(context.Background(), UserFilter{Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	require.Equal(t, "ana@example.com", users[0].Email)
	require.True(t, users[0].HasRole(models.RoleAdmin))
}

func TestUserRepositoryReplaceRoles(t *testing.T) {
	db := setupVoteTestDB(t)
	repo := NewUserRepository(db)

	user := models.User{Name: "Rae", Email: "rae@example.com", PasswordHash: "x", Roles: []models.UserRole{{Role: models.RoleVoter}}}
	require.NoError(t, repo.Create(context.Background(), &user))

	require.NoError(t, repo.ReplaceRoles(context.Background(), user.ID, []string{models.RoleVoter, models.RoleAdmin}))

	reloaded, err := repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{models.RoleVoter, models.RoleAdmin}, reloaded.RoleNames())
}
