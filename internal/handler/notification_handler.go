package handler

import (
	"learning-hub-be/internal/pkg/logger"
	"learning-hub-be/internal/service"
	internalWS "learning-hub-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type NotificationHandler struct {
	service *service.NotificationService
	hub     *internalWS.Hub
	logger  logger.ILogger
}

func NewNotificationHandler(service *service.NotificationService, hub *internalWS.Hub, log logger.ILogger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		hub:     hub,
		logger:  log,
	}
}

// ServeWs handles websocket requests from the peer. The channel query
// param carries the task id whose result the client is waiting for.
func (h *NotificationHandler) ServeWs(c *fiber.Ctx) error {
	channelID := c.Query("channel")
	if channelID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing channel (query param 'channel')"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("NotificationHandler", "Starting WebSocket session", map[string]interface{}{"channel_id": channelID})
			internalWS.ServeWs(h.hub, conn, channelID)
			h.logger.Info("NotificationHandler", "WebSocket session ended", map[string]interface{}{"channel_id": channelID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the websocket route.
func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
