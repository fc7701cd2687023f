package handler

import (
	"ai-docstore-be/internal/pkg/logger"
	"ai-docstore-be/internal/pkg/serverutils"
	internalWS "ai-docstore-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// EventsHandler streams upload progress and lifecycle messages to the browser.
type EventsHandler struct {
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewEventsHandler(hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *EventsHandler {
	return &EventsHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *EventsHandler) ServeWs(c *fiber.Ctx) error {
	userID, err := authenticate(c, h.jwtSecret)
	if err != nil {
		h.logger.Warn("EventsHandler", "Invalid Token in WS Handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, err.Error()))
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("EventsHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
			internalWS.ServeWs(h.hub, conn, userID)
			h.logger.Info("EventsHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the events socket.
func (h *EventsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/events/v1/ws", h.ServeWs)
}
