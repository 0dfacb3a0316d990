package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/promptlab-api/internal/utils"
)

const (
	localUserID   = "user_id"
	localUserRole = "user_role"
)

// UserID returns the authenticated subject, or "" for anonymous callers.
func UserID(c *fiber.Ctx) string {
	if id, ok := c.Locals(localUserID).(string); ok {
		return strings.TrimSpace(id)
	}
	return ""
}

// UserRole returns the role claim of the authenticated caller, if any.
func UserRole(c *fiber.Ctx) string {
	if role, ok := c.Locals(localUserRole).(string); ok {
		return role
	}
	return ""
}

// CallerIdentity keys quotas and ownership: "user:<id>" when authenticated,
// otherwise "ip:<addr>".
func CallerIdentity(c *fiber.Ctx) string {
	if id := UserID(c); id != "" {
		return "user:" + id
	}
	return "ip:" + c.IP()
}

// RequireUser rejects anonymous callers.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserID(c) == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		return c.Next()
	}
}
