package handler

import (
	"ai-docstore-be/internal/pkg/logger"
	"ai-docstore-be/internal/pkg/serverutils"
	"ai-docstore-be/internal/service"
	internalWS "ai-docstore-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// liveReadLimit fits one capture frame of float32 samples with headroom.
const liveReadLimit = 64 * 1024

// LiveHandler bridges a browser microphone and speaker to a realtime session.
type LiveHandler struct {
	service   service.ILiveService
	jwtSecret string
	logger    logger.ILogger
}

func NewLiveHandler(service service.ILiveService, jwtSecret string, log logger.ILogger) *LiveHandler {
	return &LiveHandler{
		service:   service,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

func (h *LiveHandler) ServeWs(c *fiber.Ctx) error {
	userID, err := authenticate(c, h.jwtSecret)
	if err != nil {
		h.logger.Warn("LiveHandler", "Invalid Token in WS Handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, err.Error()))
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		peer := internalWS.NewPeer(conn, userID, liveReadLimit, h.logger)
		bridge := h.service.Open(userID, peer)
		defer bridge.Close()

		h.logger.Info("LiveHandler", "Live socket opened", map[string]interface{}{"user_id": userID})
		peer.Serve(func(messageType int, data []byte) {
			switch messageType {
			case websocket.TextMessage:
				bridge.HandleText(data)
			case websocket.BinaryMessage:
				bridge.HandleAudio(data)
			}
		})
		h.logger.Info("LiveHandler", "Live socket closed", map[string]interface{}{"user_id": userID})
	})(c)
}

func (h *LiveHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/live/v1/ws", h.ServeWs)
}
