package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/voteguard/voteguard-api/internal/dto"
	"github.com/voteguard/voteguard-api/internal/models"
	"github.com/voteguard/voteguard-api/internal/repository"
)

// Both OTP verifications must be newer than this when signup runs.
const otpVerificationWindow = 30 * time.Minute

var (
	// ErrInvalidCredentials covers unknown email and wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken indicates the email already has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrPasswordMismatch indicates password and confirmation differ.
	ErrPasswordMismatch = errors.New("password confirmation does not match")
	// ErrOTPNotVerified indicates one or both contact channels lack a fresh verification.
	ErrOTPNotVerified = errors.New("contact verification incomplete")
	// ErrRegistrationIncomplete indicates role-tier required fields are missing.
	ErrRegistrationIncomplete = errors.New("registration requirements not met")
	// ErrAccountSuspended blocks login for suspended accounts.
	ErrAccountSuspended = errors.New("account suspended")
)

// AuthService handles registration, login and session lifecycle.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (dto.UserResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error)
	Logout(ctx context.Context, sessionID string) error
	IsSessionActive(ctx context.Context, tokenID string) (bool, error)
}

type authService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	otps       repository.OTPRepository
	validator  *validator.Validate
	audit      AuditRecorder
	jwtSecret  string
	sessionTTL time.Duration
	logger     zerolog.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, otps repository.OTPRepository, validate *validator.Validate, audit AuditRecorder, jwtSecret string, sessionTTL time.Duration, logger zerolog.Logger) AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}

	return &authService{
		users:      users,
		sessions:   sessions,
		otps:       otps,
		validator:  validate,
		audit:      audit,
		jwtSecret:  jwtSecret,
		sessionTTL: sessionTTL,
		logger:     logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	if req.Password != req.ConfirmPassword {
		return dto.UserResponse{}, ErrPasswordMismatch
	}

	if missing := missingRegistrationFields(req); len(missing) > 0 {
		return dto.UserResponse{}, fmt.Errorf("%w: %s", ErrRegistrationIncomplete, strings.Join(missing, ", "))
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	phone := strings.TrimSpace(req.Phone)

	since := time.Now().UTC().Add(-otpVerificationWindow)
	emailVerified, err := s.otps.HasVerified(ctx, models.OTPChannelEmail, email, since)
	if err != nil {
		return dto.UserResponse{}, err
	}
	phoneVerified, err := s.otps.HasVerified(ctx, models.OTPChannelSMS, phone, since)
	if err != nil {
		return dto.UserResponse{}, err
	}
	if !emailVerified || !phoneVerified {
		return dto.UserResponse{}, ErrOTPNotVerified
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, err
	}

	answersHash, err := hashSecurityAnswers(req.SecurityAnswers)
	if err != nil {
		return dto.UserResponse{}, err
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	user := models.User{
		Name:                strings.TrimSpace(req.Name),
		Email:               email,
		Phone:               phone,
		PasswordHash:        string(passwordHash),
		Status:              models.UserStatusActive,
		SecurityAnswersHash: answersHash,
		IDDocumentNumber:    strings.TrimSpace(req.IDDocumentNumber),
		BiometricConsent:    req.BiometricConsent,
		Roles:               []models.UserRole{{Role: role}},
	}

	if err := s.users.Create(ctx, &user); err != nil {
		if isUniqueViolation(err) {
			return dto.UserResponse{}, ErrEmailTaken
		}
		return dto.UserResponse{}, err
	}

	// Verified codes are single-use; retire them so a second signup cannot
	// ride on the same verification.
	if err := s.otps.Consume(ctx, email); err != nil {
		s.logger.Warn().Err(err).Msg("failed to consume email otp codes")
	}
	if err := s.otps.Consume(ctx, phone); err != nil {
		s.logger.Warn().Err(err).Msg("failed to consume sms otp codes")
	}

	if s.audit != nil {
		id := user.ID
		_, _ = s.audit.Record(ctx, AuditEntry{
			ActorID:    user.ID,
			ActorRole:  role,
			Action:     "user.registered",
			EntityType: "user",
			EntityID:   &id,
			Detail:     map[string]interface{}{"role": role},
		})
	}

	return dto.NewUserResponse(user), nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	if user.Status != models.UserStatusActive {
		return dto.AuthResponse{}, ErrAccountSuspended
	}

	tokenID := uuid.NewString()
	expiresAt := time.Now().UTC().Add(s.sessionTTL)

	session := models.UserSession{
		TokenID:   tokenID,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.Create(ctx, &session); err != nil {
		return dto.AuthResponse{}, err
	}

	claims := jwt.MapClaims{
		"sub":   user.ID,
		"roles": user.RoleNames(),
		"sid":   tokenID,
		"exp":   expiresAt.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return dto.AuthResponse{}, err
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record last login")
	}

	if s.audit != nil {
		id := user.ID
		_, _ = s.audit.Record(ctx, AuditEntry{
			ActorID:    user.ID,
			ActorRole:  primaryRole(user.RoleNames()),
			Action:     "user.login",
			EntityType: "user",
			EntityID:   &id,
		})
	}

	return dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.NewUserResponse(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}

	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	return nil
}

func (s *authService) IsSessionActive(ctx context.Context, tokenID string) (bool, error) {
	return s.sessions.IsActive(ctx, tokenID)
}

func hashSecurityAnswers(answers []string) (string, error) {
	normalized := make([]string, 0, len(answers))
	for _, answer := range answers {
		trimmed := strings.ToLower(strings.TrimSpace(answer))
		if trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	if len(normalized) == 0 {
		return "", nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(strings.Join(normalized, "|")), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// The managed database reports duplicate-key errors with driver-specific
// text; matching on it is the only portable signal GORM exposes here.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "duplicate key") ||
		strings.Contains(message, "unique constraint") ||
		strings.Contains(message, "unique failed")
}

func primaryRole(roles []string) string {
	ranked := []string{models.RoleSuperAdmin, models.RoleAdmin, models.RoleVoter}
	for _, candidate := range ranked {
		for _, role := range roles {
			if role == candidate {
				return role
			}
		}
	}
	if len(roles) > 0 {
		return roles[0]
	}
	return ""
}
