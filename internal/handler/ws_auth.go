package handler

import (
	"ai-docstore-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// authenticate reads the token from the "token" query parameter (browsers
// cannot set headers on a websocket handshake) or a bearer header.
func authenticate(c *fiber.Ctx, secret string) (uuid.UUID, error) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	return serverutils.ParseUserToken(tokenStr, secret)
}
