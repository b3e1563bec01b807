package ws

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	chatService "github.com/voxlab/charchat/internal/service/chat"
	"github.com/voxlab/charchat/pkg/logger"
)

// Handler runs chat exchanges over a websocket connection. Each inbound
// message is one exchange; the session handle rides in both directions so a
// client can keep a thread going or omit it to start fresh.
type Handler struct {
	chatSvc  *chatService.Service
	upgrader websocket.Upgrader
}

// New creates a websocket chat handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/chat", h.handleWebSocket)
}

type inboundMessage struct {
	PersonaName string `json:"personaName"`
	Message     string `json:"message"`
	UserID      string `json:"userId"`
	SessionID   string `json:"sessionId"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	Reply     string `json:"reply,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// validateInbound returns the reason an inbound message cannot be served,
// or an empty string when it is complete.
func validateInbound(msg inboundMessage) string {
	switch {
	case strings.TrimSpace(msg.PersonaName) == "":
		return "personaName is required"
	case strings.TrimSpace(msg.Message) == "":
		return "message is required"
	case strings.TrimSpace(msg.UserID) == "":
		return "userId is required"
	}
	return ""
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.L().Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	logger.L().Info("websocket client connected", zap.String("remote", conn.RemoteAddr().String()))

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.L().Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		if reason := validateInbound(msg); reason != "" {
			h.send(conn, outgoingMessage{Type: "error", Error: reason})
			continue
		}

		reply, sessionID := h.chatSvc.Exchange(r.Context(), msg.PersonaName, msg.Message, msg.UserID, msg.SessionID)

		h.send(conn, outgoingMessage{
			Type:      "reply",
			Reply:     reply,
			SessionID: sessionID,
		})
	}
}

func (h *Handler) send(conn *websocket.Conn, msg outgoingMessage) {
	msg.Timestamp = time.Now().UnixMilli()
	if err := conn.WriteJSON(msg); err != nil {
		logger.L().Warn("websocket write failed", zap.Error(err))
	}
}
