package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/voteguard/voteguard-api/internal/models"
	"github.com/voteguard/voteguard-api/internal/service"
)

// ResultsStreamHandler pushes tally snapshots over a websocket so election
// night dashboards do not have to poll.
type ResultsStreamHandler struct {
	results  service.ResultsService
	interval time.Duration
	logger   zerolog.Logger
}

// NewResultsStreamHandler constructs the handler.
func NewResultsStreamHandler(results service.ResultsService, interval time.Duration, logger zerolog.Logger) *ResultsStreamHandler {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	return &ResultsStreamHandler{
		results:  results,
		interval: interval,
		logger:   logger.With().Str("component", "results_stream_handler").Logger(),
	}
}

// Register attaches the live results route.
func (h *ResultsStreamHandler) Register(router fiber.Router) {
	router.Use("/:id/results/live", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			// Carry locals set by the session middleware into the
			// websocket handler.
			c.Locals("ws_roles", rolesFromContext(c))
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/:id/results/live", websocket.New(h.stream))
}

func (h *ResultsStreamHandler) stream(conn *websocket.Conn) {
	defer conn.Close()

	parsed, err := strconv.ParseUint(conn.Params("id"), 10, 64)
	if err != nil || parsed == 0 {
		_ = conn.WriteJSON(fiber.Map{"error": "invalid election id"})
		return
	}
	electionID := uint(parsed)

	includeInterim := false
	if roles, ok := conn.Locals("ws_roles").([]string); ok {
		for _, role := range roles {
			if role == models.RoleAdmin || role == models.RoleSuperAdmin {
				includeInterim = true
				break
			}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The read pump only exists to notice the peer going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		results, err := h.results.Results(ctx, electionID, includeInterim)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrElectionNotFound):
				_ = conn.WriteJSON(fiber.Map{"error": "election not found"})
			case errors.Is(err, service.ErrResultsNotVisible):
				_ = conn.WriteJSON(fiber.Map{"error": "results not yet published"})
			case errors.Is(err, context.Canceled):
			default:
				h.logger.Error().Err(err).Uint("election_id", electionID).Msg("live results snapshot failed")
				_ = conn.WriteJSON(fiber.Map{"error": "results unavailable"})
			}
			return
		}

		if err := conn.WriteJSON(results); err != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
