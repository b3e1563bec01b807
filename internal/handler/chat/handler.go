package chat

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/voxlab/charchat/internal/analysis/selector"
	chatModel "github.com/voxlab/charchat/internal/model/chat"
	chatService "github.com/voxlab/charchat/internal/service/chat"
	"github.com/voxlab/charchat/pkg/utils"
)

// Handler serves the conversation endpoints.
type Handler struct {
	chatSvc *chatService.Service
	turns   chatModel.TurnStore
}

// New creates a chat handler.
func New(chatSvc *chatService.Service, turns chatModel.TurnStore) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		turns:   turns,
	}
}

// RegisterRoutes registers chat and session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/chat/select", h.handleSelect)
	r.Get("/sessions", h.handleListSessions)
	r.Get("/sessions/{sessionID}/turns", h.handleSessionTurns)
}

// handleChat runs one exchange with a persona. Model and persistence
// failures ride in the reply text, so a validated request always gets 200.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PersonaName string `json:"personaName"`
		Message     string `json:"message"`
		UserID      string `json:"userId"`
		SessionID   string `json:"sessionId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(payload.PersonaName) == "" {
		utils.RespondError(w, http.StatusBadRequest, "personaName is required")
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}
	if strings.TrimSpace(payload.UserID) == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	reply, sessionID := h.chatSvc.Exchange(r.Context(), payload.PersonaName, payload.Message, payload.UserID, payload.SessionID)

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"reply":     reply,
		"sessionId": sessionID,
	})
}

// handleSelect suggests a persona for a message based on keyword matching.
func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(payload.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	name, matched := selector.Select(payload.Message)

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"personaName": name,
		"matched":     matched,
	})
}

// handleListSessions returns session summaries for a user.
func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	sessions, err := h.turns.SessionsForUser(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	utils.RespondJSON(w, http.StatusOK, sessions)
}

// handleSessionTurns returns the ordered transcript of one session.
func (h *Handler) handleSessionTurns(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	turns, err := h.turns.TurnsForSession(r.Context(), sessionID, userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load session turns")
		return
	}

	utils.RespondJSON(w, http.StatusOK, turns)
}
