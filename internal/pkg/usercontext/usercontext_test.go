package usercontext

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserContext(t *testing.T) {
	app := fiber.New()
	app.Get("/anon", func(c *fiber.Ctx) error {
		assert.False(t, IsLoggedIn(c))
		assert.Empty(t, GetUID(c))
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/user", func(c *fiber.Ctx) error {
		Set(c, UserContext{UID: "u1", Email: "a@b.pe", IsLoggedIn: true})
		assert.True(t, IsLoggedIn(c))
		assert.Equal(t, "u1", GetUID(c))
		assert.Equal(t, "a@b.pe", GetUserContext(c).Email)
		assert.Equal(t, "u1", c.Locals(KeyUID))
		return c.SendStatus(fiber.StatusOK)
	})

	for _, path := range []string{"/anon", "/user"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}
