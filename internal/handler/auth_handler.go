package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/voteguard/voteguard-api/internal/dto"
	"github.com/voteguard/voteguard-api/internal/middleware"
	"github.com/voteguard/voteguard-api/internal/service"
	"github.com/voteguard/voteguard-api/internal/utils"
)

// AuthHandler manages registration, login and OTP verification routes.
type AuthHandler struct {
	auth          service.AuthService
	otp           service.OTPService
	secureCookies bool
	logger        zerolog.Logger
}

// NewAuthHandler constructs the handler. Secure cookies should be enabled in
// any deployment behind TLS.
func NewAuthHandler(auth service.AuthService, otp service.OTPService, secureCookies bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:          auth,
		otp:           otp,
		secureCookies: secureCookies,
		logger:        logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches the public auth routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
	router.Post("/send-otp", h.sendOTP)
	router.Post("/verify-otp", h.verifyOTP)
}

// RegisterProtected attaches routes that require an authenticated session.
func (h *AuthHandler) RegisterProtected(router fiber.Router) {
	router.Post("/logout", h.logout)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, err := h.auth.Register(c.Context(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPasswordMismatch),
			errors.Is(err, service.ErrRegistrationIncomplete):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOTPNotVerified):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrEmailTaken):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("registration failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "registration failed")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account created", user)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	auth, err := h.auth.Login(c.Context(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidCredentials):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, service.ErrAccountSuspended):
			return utils.SendError(c, fiber.StatusForbidden, "account suspended")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("login failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "login failed")
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    auth.Token,
		Expires:  auth.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: "Lax",
		Path:     "/",
	})

	return utils.SendSuccess(c, "login successful", auth)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.Context(), sessionIDFromContext(c)); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("logout failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "logout failed")
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: "Lax",
		Path:     "/",
	})

	return utils.SendSuccess(c, "logged out", nil)
}

func (h *AuthHandler) sendOTP(c *fiber.Ctx) error {
	var payload dto.SendOTPRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.otp.Send(c.Context(), payload); err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOTPCooldown):
			return utils.SendError(c, fiber.StatusTooManyRequests, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("otp send failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "could not send code")
	}

	return utils.SendSuccess(c, "code sent", nil)
}

func (h *AuthHandler) verifyOTP(c *fiber.Ctx) error {
	var payload dto.VerifyOTPRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.otp.Verify(c.Context(), payload); err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOTPInvalid):
			// Wrong and expired codes get the same answer on purpose.
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("otp verify failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "could not verify code")
	}

	return utils.SendSuccess(c, "code verified", nil)
}
