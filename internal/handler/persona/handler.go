package persona

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/voxlab/charchat/internal/model/persona"
	"github.com/voxlab/charchat/pkg/utils"
)

// Handler serves the persona catalog.
type Handler struct {
	personas persona.Store
}

// New creates a persona handler.
func New(personas persona.Store) *Handler {
	return &Handler{
		personas: personas,
	}
}

// RegisterRoutes registers persona routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
	r.Post("/personas", h.handleCreatePersona)
}

// handleListPersonas lists all personas.
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	personas, err := h.personas.List(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list personas")
		return
	}
	utils.RespondJSON(w, http.StatusOK, personas)
}

// handleCreatePersona registers a new persona.
func (h *Handler) handleCreatePersona(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name           string `json:"name"`
		Description    string `json:"description"`
		PromptTemplate string `json:"promptTemplate"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(payload.Name) == "" {
		utils.RespondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if strings.TrimSpace(payload.PromptTemplate) == "" {
		utils.RespondError(w, http.StatusBadRequest, "promptTemplate is required")
		return
	}

	created, err := h.personas.Create(r.Context(), payload.Name, payload.Description, payload.PromptTemplate)
	if err != nil {
		if errors.Is(err, persona.ErrAlreadyExists) {
			utils.RespondError(w, http.StatusConflict, "persona already exists")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to create persona")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, created)
}
