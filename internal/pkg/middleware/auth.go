package middleware

import (
	"context"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/contapp-relay/internal/pkg/usercontext"
)

// TokenVerifier checks identity provider ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// RequireIdentityToken rejects requests without a valid bearer ID token and
// stores the verified identity in the user context.
func RequireIdentityToken(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		idToken := extractBearerToken(c)
		if idToken == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing auth token"})
		}

		token, err := verifier.VerifyIDToken(c.UserContext(), idToken)
		if err != nil || token == nil || token.UID == "" {
			if err != nil {
				fiberlog.Warnf("id token rejected: %v", err)
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}

		uc := usercontext.UserContext{UID: token.UID, IsLoggedIn: true}
		if email, ok := token.Claims["email"].(string); ok {
			uc.Email = email
		}
		if verified, ok := token.Claims["email_verified"].(bool); ok {
			uc.EmailVerified = verified
		}
		usercontext.Set(c, uc)

		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
