package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kursus-go-api/internal/middleware"
	"github.com/noah-isme/kursus-go-api/internal/service"
	"github.com/noah-isme/kursus-go-api/internal/utils"
)

// ExerciseHandler wires exercise HTTP routes.
type ExerciseHandler struct {
	exercises service.ExerciseService
	logger    zerolog.Logger
}

// NewExerciseHandler constructs the handler.
func NewExerciseHandler(exercises service.ExerciseService, logger zerolog.Logger) *ExerciseHandler {
	return &ExerciseHandler{
		exercises: exercises,
		logger:    logger.With().Str("component", "exercise_handler").Logger(),
	}
}

// Register attaches exercise endpoints to the router group.
func (h *ExerciseHandler) Register(router fiber.Router) {
	router.Get("/:id/exercises", h.list)
}

func (h *ExerciseHandler) list(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	user := middleware.CurrentUser(c)
	exercises, err := h.exercises.ListVisible(c.Context(), id, user)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "exercises retrieved", exercises)
}
