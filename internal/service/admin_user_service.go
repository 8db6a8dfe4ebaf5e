package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/voteguard/voteguard-api/internal/dto"
	"github.com/voteguard/voteguard-api/internal/models"
	"github.com/voteguard/voteguard-api/internal/repository"
)

var (
	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrDeleteForbidden indicates the actor's role tier cannot delete the target.
	ErrDeleteForbidden = errors.New("actor may not delete this account")
	// ErrSelfDelete blocks superadmins from removing their own account.
	ErrSelfDelete = errors.New("cannot delete own account")
)

// AdminUserService orchestrates admin user management use cases.
type AdminUserService interface {
	List(ctx context.Context, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error)
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	Update(ctx context.Context, id uint, payload dto.AdminUserUpdateRequest, actor AuditActor) (dto.UserResponse, error)
	Delete(ctx context.Context, id uint, actor AuditActor) error
}

type adminUserService struct {
	repo      repository.UserRepository
	validator *validator.Validate
	audit     AuditRecorder
	logger    zerolog.Logger
}

// NewAdminUserService constructs the admin user service.
func NewAdminUserService(repo repository.UserRepository, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) AdminUserService {
	return &adminUserService{
		repo:      repo,
		validator: validate,
		audit:     audit,
		logger:    logger.With().Str("component", "admin_user_service").Logger(),
	}
}

func (s *adminUserService) List(ctx context.Context, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error) {
	filter := repository.UserFilter{
		Search:   strings.TrimSpace(req.Search),
		Role:     strings.ToLower(strings.TrimSpace(req.Role)),
		Status:   strings.TrimSpace(req.Status),
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AdminUserListResponse{}, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.NewUserResponse(user))
	}

	return dto.AdminUserListResponse{
		Items:      responses,
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *adminUserService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *adminUserService) Update(ctx context.Context, id uint, payload dto.AdminUserUpdateRequest, actor AuditActor) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	updates := make(map[string]interface{})
	changedFields := make([]string, 0)

	if payload.Name != nil {
		updates["name"] = strings.TrimSpace(*payload.Name)
		changedFields = append(changedFields, "name")
	}
	if payload.Phone != nil {
		updates["phone"] = strings.TrimSpace(*payload.Phone)
		changedFields = append(changedFields, "phone")
	}
	if payload.Status != nil {
		updates["status"] = strings.ToLower(strings.TrimSpace(*payload.Status))
		changedFields = append(changedFields, "status")
	}

	if payload.Roles != nil {
		roles := lowerUniqueRoles(*payload.Roles)
		if err := s.repo.ReplaceRoles(ctx, id, roles); err != nil {
			return dto.UserResponse{}, err
		}
		changedFields = append(changedFields, "roles")
	}

	if len(updates) == 0 && payload.Roles == nil {
		return s.Get(ctx, id)
	}

	var user models.User
	var err error
	if len(updates) > 0 {
		user, err = s.repo.Update(ctx, id, updates)
	} else {
		user, err = s.repo.GetByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	if s.audit != nil {
		_, _ = s.audit.Record(ctx, AuditEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "user.updated",
			EntityType: "user",
			EntityID:   &id,
			Detail:     map[string]interface{}{"fields": changedFields},
		})
	}

	return dto.NewUserResponse(user), nil
}

// Delete applies the role-tier rules: an admin may delete only voter-only
// accounts, a superadmin may delete anyone but itself. The repository
// cascade removes role and session rows before the user row.
func (s *adminUserService) Delete(ctx context.Context, id uint, actor AuditActor) error {
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	actorRole := strings.ToLower(strings.TrimSpace(actor.Role))
	switch actorRole {
	case models.RoleSuperAdmin:
		if target.ID == actor.ID {
			return ErrSelfDelete
		}
	case models.RoleAdmin:
		if target.HasRole(models.RoleAdmin) || target.HasRole(models.RoleSuperAdmin) {
			return ErrDeleteForbidden
		}
	default:
		return ErrDeleteForbidden
	}

	if err := s.repo.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if s.audit != nil {
		_, _ = s.audit.Record(ctx, AuditEntry{
			ActorID:    actor.ID,
			ActorRole:  actorRole,
			Action:     "user.deleted",
			EntityType: "user",
			EntityID:   &id,
			Detail:     map[string]interface{}{"roles": target.RoleNames()},
		})
	}

	return nil
}

func lowerUniqueRoles(roles []string) []string {
	seen := make(map[string]struct{}, len(roles))
	result := make([]string, 0, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result
}
