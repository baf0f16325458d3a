package usercontext

import "github.com/gofiber/fiber/v2"

// UserContext is the verified identity of the caller
type UserContext struct {
	UID           string `json:"uid"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	IsLoggedIn    bool   `json:"is_logged_in"`
}

// Set stores the identity on the request
func Set(c *fiber.Ctx, uc UserContext) {
	c.Locals(KeyUserContext, uc)
	c.Locals(KeyUID, uc.UID)
}

// GetUserContext retrieves the user context from fiber context
// Returns an anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if uc, ok := c.Locals(KeyUserContext).(UserContext); ok {
		return uc
	}
	return UserContext{}
}

// IsLoggedIn checks if the request carried a verified token
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// GetUID returns the caller's user id, or "" when anonymous
func GetUID(c *fiber.Ctx) string {
	return GetUserContext(c).UID
}
