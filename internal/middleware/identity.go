package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kursus-go-api/internal/models"
	"github.com/noah-isme/kursus-go-api/internal/repository"
)

const currentUserKey = "current_user"

// Identity resolves the requesting user from the X-User-ID header set by the
// upstream gateway. Authentication itself happens there; requests without
// the header are treated as guests.
func Identity(users repository.UserRepository, logger zerolog.Logger) fiber.Handler {
	identityLogger := logger.With().Str("component", "identity_middleware").Logger()

	return func(c *fiber.Ctx) error {
		header := strings.TrimSpace(c.Get("X-User-ID"))
		if header == "" {
			c.Locals(currentUserKey, models.GuestUser())
			return c.Next()
		}

		id, err := strconv.ParseUint(header, 10, 32)
		if err != nil {
			c.Locals(currentUserKey, models.GuestUser())
			return c.Next()
		}

		user, err := users.GetByID(c.Context(), uint(id))
		if err != nil {
			identityLogger.Debug().Err(err).Str("user_id", header).Msg("unknown user id, treating as guest")
			c.Locals(currentUserKey, models.GuestUser())
			return c.Next()
		}

		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user bound to the active request.
func CurrentUser(c *fiber.Ctx) models.User {
	if value := c.Locals(currentUserKey); value != nil {
		if user, ok := value.(models.User); ok {
			return user
		}
	}
	return models.GuestUser()
}
