package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/leaddesk/leaddesk/internal/pkg/env"
	"github.com/leaddesk/leaddesk/internal/pkg/usercontext"
)

// BearerAuthMiddleware authenticates requests carrying a bearer token and
// resolves it to a user id. Tokens are HS256 JWTs whose subject claim is
// the user id; anything else is a 401.
func BearerAuthMiddleware() fiber.Handler {
	secret := []byte(env.GetEnv("AUTH_JWT_SECRET", ""))

	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing bearer token"})
		}

		userID, err := verifyToken(token, secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid bearer token"})
		}

		usercontext.SetUserContext(c, usercontext.UserContext{
			UserID:     userID,
			IsLoggedIn: true,
		})

		return c.Next()
	}
}

func verifyToken(token string, secret []byte) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", jwt.ErrTokenInvalidSubject
	}
	return sub, nil
}

func extractBearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
