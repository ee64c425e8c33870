package middleware

import (
	"strings"

	"task-manager-api/pkg/auth"
	"task-manager-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TokenGate memverifikasi header Authorization: Bearer <token> dan
// menyimpan identitas caller di locals. Klien websocket boleh mengirim
// token lewat query param karena tidak bisa mengatur header.
func TokenGate(authSvc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := ""

		authHeader := c.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Invalid token format",
					"success": false,
					"status":  401,
				})
			}
			tokenString = parts[1]
		} else {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "No token provided",
				"success": false,
				"status":  401,
			})
		}

		claims, err := authSvc.VerifyToken(tokenString)
		if err != nil {
			logger.SecurityLogger.Warn("Invalid token", zap.Error(err), zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid token",
				"success": false,
				"status":  401,
			})
		}

		c.Locals("userID", claims.UserID)
		c.Locals("username", claims.Username)
		c.Locals("email", claims.Email)
		return c.Next()
	}
}
