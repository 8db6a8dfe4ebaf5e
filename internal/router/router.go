package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/voteguard/voteguard-api/internal/config"
	"github.com/voteguard/voteguard-api/internal/handler"
	"github.com/voteguard/voteguard-api/internal/middleware"
	"github.com/voteguard/voteguard-api/internal/models"
	"github.com/voteguard/voteguard-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler             *handler.AuthHandler
	ElectionHandler         *handler.ElectionHandler
	ResultsStreamHandler    *handler.ResultsStreamHandler
	AdminElectionHandler    *handler.AdminElectionHandler
	AdminContestHandler     *handler.AdminContestHandler
	AdminCandidateHandler   *handler.AdminCandidateHandler
	AdminEligibilityHandler *handler.AdminEligibilityHandler
	AdminUserHandler        *handler.AdminUserHandler
	AdminAuditHandler       *handler.AdminAuditHandler
	SessionMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use the provided session middleware, or a no-op if nil
	session := deps.SessionMiddleware
	if session == nil {
		session = func(c *fiber.Ctx) error { return c.Next() }
	}
	adminOnly := middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)

	// Auth and OTP. The whole group is rate limited per IP; credential and
	// code endpoints are the obvious brute-force targets.
	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)

		authProtected := api.Group("/auth", session)
		deps.AuthHandler.RegisterProtected(authProtected)
	}

	// Voter-facing elections: listing, detail, ballot casting and results.
	if deps.ElectionHandler != nil {
		elections := api.Group("/elections", session)
		deps.ElectionHandler.Register(elections)

		if deps.ResultsStreamHandler != nil {
			deps.ResultsStreamHandler.Register(elections)
		}
	}

	// Administration, gated on role.
	admin := api.Group("/admin", session, adminOnly)

	if deps.AdminElectionHandler != nil {
		adminElections := admin.Group("/elections")
		deps.AdminElectionHandler.Register(adminElections)

		if deps.AdminEligibilityHandler != nil {
			deps.AdminEligibilityHandler.Register(adminElections)
		}
	}

	if deps.AdminContestHandler != nil {
		deps.AdminContestHandler.Register(admin.Group("/contests"))
	}

	if deps.AdminCandidateHandler != nil {
		deps.AdminCandidateHandler.Register(admin.Group("/candidates"))
	}

	if deps.AdminUserHandler != nil {
		deps.AdminUserHandler.Register(admin.Group("/users"))
	}

	if deps.AdminAuditHandler != nil {
		deps.AdminAuditHandler.Register(admin.Group("/audit-logs"))
	}
}
