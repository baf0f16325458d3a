package controllers

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// requestBaseURL picks the origin used for PayPal return links: the
// configured base URL, else the caller's Origin header, else the Host.
func requestBaseURL(c *fiber.Ctx, configured string) string {
	if base := strings.TrimRight(strings.TrimSpace(configured), "/"); base != "" {
		return base
	}
	if origin := strings.TrimRight(strings.TrimSpace(c.Get(fiber.HeaderOrigin)), "/"); origin != "" {
		return origin
	}
	return "https://" + c.Hostname()
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
