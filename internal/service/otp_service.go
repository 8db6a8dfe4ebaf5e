package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/voteguard/voteguard-api/internal/dto"
	"github.com/voteguard/voteguard-api/internal/models"
	"github.com/voteguard/voteguard-api/internal/observability"
	"github.com/voteguard/voteguard-api/internal/repository"
	"github.com/voteguard/voteguard-api/pkg/notifier"
)

var (
	// ErrOTPInvalid is the single failure surfaced for wrong and expired
	// codes alike, so callers cannot probe which case they hit.
	ErrOTPInvalid = errors.New("invalid or expired code")
	// ErrOTPCooldown indicates a resend was requested inside the cooldown window.
	ErrOTPCooldown = errors.New("code recently sent, wait before retrying")
)

// OTPService issues and verifies one-time codes.
type OTPService interface {
	Send(ctx context.Context, req dto.SendOTPRequest) error
	Verify(ctx context.Context, req dto.VerifyOTPRequest) error
}

type otpService struct {
	repo      repository.OTPRepository
	redis     *redis.Client
	dispatch  notifier.Notifier
	validator *validator.Validate
	ttl       time.Duration
	cooldown  time.Duration
	logger    zerolog.Logger
}

// NewOTPService constructs the OTP service. The redis client may be nil, in
// which case resend cooldowns are not enforced.
func NewOTPService(repo repository.OTPRepository, redisClient *redis.Client, dispatch notifier.Notifier, validate *validator.Validate, ttl, cooldown time.Duration, logger zerolog.Logger) OTPService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}

	return &otpService{
		repo:      repo,
		redis:     redisClient,
		dispatch:  dispatch,
		validator: validate,
		ttl:       ttl,
		cooldown:  cooldown,
		logger:    logger.With().Str("component", "otp_service").Logger(),
	}
}

func (s *otpService) Send(ctx context.Context, req dto.SendOTPRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	channel := strings.ToLower(strings.TrimSpace(req.Channel))
	destination := normalizeDestination(channel, req.Destination)

	if s.redis != nil {
		key := cooldownKey(channel, destination)
		set, err := s.redis.SetNX(ctx, key, "1", s.cooldown).Result()
		if err != nil {
			s.logger.Warn().Err(err).Msg("cooldown check failed, allowing send")
		} else if !set {
			return ErrOTPCooldown
		}
	}

	code, err := generateCode()
	if err != nil {
		return err
	}

	expiresAt := time.Now().UTC().Add(s.ttl)
	record := models.OTPCode{
		Channel:     channel,
		Destination: destination,
		CodeHash:    hashCode(code),
		ExpiresAt:   expiresAt,
	}
	if err := s.repo.Create(ctx, &record); err != nil {
		return err
	}

	if err := s.dispatch.Dispatch(ctx, notifier.Message{
		Channel:     channel,
		Destination: destination,
		Code:        code,
		ExpiresAt:   expiresAt,
		RequestedAt: time.Now().UTC(),
	}); err != nil {
		s.logger.Error().Err(err).Str("channel", channel).Msg("otp dispatch failed")
		return err
	}

	observability.OTPIssued().WithLabelValues(channel).Inc()

	return nil
}

func (s *otpService) Verify(ctx context.Context, req dto.VerifyOTPRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	channel := strings.ToLower(strings.TrimSpace(req.Channel))
	destination := normalizeDestination(channel, req.Destination)

	record, err := s.repo.LatestActive(ctx, channel, destination)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.OTPVerified().WithLabelValues(channel, "failure").Inc()
			return ErrOTPInvalid
		}
		return err
	}

	submitted := hashCode(strings.TrimSpace(req.Code))
	match := subtle.ConstantTimeCompare([]byte(submitted), []byte(record.CodeHash)) == 1
	expired := time.Now().UTC().After(record.ExpiresAt)

	if !match || expired {
		observability.OTPVerified().WithLabelValues(channel, "failure").Inc()
		return ErrOTPInvalid
	}

	if err := s.repo.MarkVerified(ctx, record.ID); err != nil {
		return err
	}

	observability.OTPVerified().WithLabelValues(channel, "success").Inc()

	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func normalizeDestination(channel, destination string) string {
	trimmed := strings.TrimSpace(destination)
	if channel == models.OTPChannelEmail {
		return strings.ToLower(trimmed)
	}
	return trimmed
}

func cooldownKey(channel, destination string) string {
	return fmt.Sprintf("voteguard:otp:cooldown:%s:%s", channel, destination)
}
