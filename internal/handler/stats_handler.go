package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kursus-go-api/internal/dto"
	"github.com/noah-isme/kursus-go-api/internal/service"
	"github.com/noah-isme/kursus-go-api/internal/utils"
)

// StatsHandler wires point-completion statistics routes.
type StatsHandler struct {
	stats  service.StatsService
	logger zerolog.Logger
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(stats service.StatsService, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		stats:  stats,
		logger: logger.With().Str("component", "stats_handler").Logger(),
	}
}

// Register attaches statistics endpoints to the router group.
func (h *StatsHandler) Register(router fiber.Router) {
	router.Get("/:id/points/completion", h.completionByGroup)
	router.Get("/:id/activity", h.activity)
}

func (h *StatsHandler) completionByGroup(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := h.stats.CompletionByGroup(c.Context(), id)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	// Presentation order is the caller's concern; the map is keyed by group.
	groups := make([]dto.GroupCompletion, 0, len(report))
	for _, group := range report {
		groups = append(groups, group)
	}

	return utils.SendSuccess(c, "completion statistics retrieved", groups)
}

func (h *StatsHandler) activity(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	activity, err := h.stats.Activity(c.Context(), id)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "course activity retrieved", activity)
}
