package middlewares

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"nexusbet/helpers"
	"nexusbet/models"
)

func SessionAuth(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("X-Session-Token")
		if token == "" {
			return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "SESSION_TOKEN_REQUIRED")
		}

		var session models.Session
		err := db.Preload("User").
			Where("sid = ? AND expires_at > ?", token, time.Now()).
			First(&session).Error
		if err != nil {
			return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "INVALID_SESSION")
		}
		if session.User.IsBanned {
			return helpers.JSONErrorStatus(c, fiber.StatusForbidden, "ACCOUNT_SUSPENDED")
		}

		c.Locals("user", session.User)
		c.Locals("session", session)
		return c.Next()
	}
}

func AdminOnly(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(models.User)
	if !ok || !user.IsAdmin() {
		return helpers.JSONErrorStatus(c, fiber.StatusForbidden, "ADMIN_ONLY")
	}
	return c.Next()
}

// FeedAuth guards the internal match-feed webhook with a shared token.
func FeedAuth() fiber.Handler {
	token := os.Getenv("FEED_TOKEN")

	return func(c *fiber.Ctx) error {
		if token == "" || c.Get("X-Feed-Token") != token {
			return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "INVALID_FEED_TOKEN")
		}
		return c.Next()
	}
}
