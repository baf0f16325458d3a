package controllers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestBaseURL(t *testing.T) {
	tests := []struct {
		configured string
		origin     string
		want       string
	}{
		{configured: "https://app.contapp.pe/", origin: "https://other.pe", want: "https://app.contapp.pe"},
		{origin: "https://contapp.pe/", want: "https://contapp.pe"},
		{want: "https://relay.contapp.pe"},
	}

	for _, tt := range tests {
		app := fiber.New()
		var got string
		app.Get("/", func(c *fiber.Ctx) error {
			got = requestBaseURL(c, tt.configured)
			return nil
		})

		req := httptest.NewRequest("GET", "http://relay.contapp.pe/", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		_, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
