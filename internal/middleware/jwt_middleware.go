package middleware

import (
	"log"
	"strings"

	"annadaan/internal/apperrors"
	"annadaan/internal/models"
	"annadaan/internal/services"

	"github.com/gofiber/fiber/v2"
)

// currentUserKey is the Locals key under which the resolved user is stored.
const currentUserKey = "currentUser"

// bearerToken extracts the token from the Authorization header. The second
// return value is false when the header is absent entirely.
func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	// Expected format: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1], true
	}
	return authHeader, true
}

// reject writes the standard failure envelope for an auth error.
func reject(c *fiber.Ctx, err error) error {
	statusCode := apperrors.StatusCode(err)
	return c.Status(statusCode).JSON(fiber.Map{
		"statusCode": statusCode,
		"message":    apperrors.Message(err),
		"data":       nil,
		"success":    false,
	})
}

// AuthRequired rejects requests without a valid token that resolves to a
// live user, and stores that user in the request context.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, present := bearerToken(c)
		if !present {
			return reject(c, apperrors.New(apperrors.Unauthorized, "authentication required"))
		}

		user, err := authService.CurrentUser(token)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return reject(c, err)
		}

		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// AuthOptional resolves a user when a token is supplied but lets anonymous
// requests through. A token that is present and fails verification is still
// rejected; only the fully absent header is treated as anonymous.
func AuthOptional(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, present := bearerToken(c)
		if !present {
			return c.Next()
		}

		user, err := authService.CurrentUser(token)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return reject(c, err)
		}

		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// UserFromContext returns the authenticated user stored by the middleware,
// or nil for anonymous requests.
func UserFromContext(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(currentUserKey).(*models.User)
	return user
}
