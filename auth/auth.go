// auth/auth.go
package auth

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// HeaderName carries the shared API token.
const HeaderName = "X-Notes-Token"

// HashToken bcrypt-hashes a plaintext token for storage in config.
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Middleware rejects requests whose token header does not match tokenHash.
// An empty tokenHash disables authentication (dev mode).
func Middleware(tokenHash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenHash == "" {
			return c.Next()
		}
		token := c.Get(HeaderName)
		if bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)) != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Next()
	}
}
