// Package chat implements the conversation engine: context-window assembly,
// the exchange lifecycle, and its error-string propagation policy.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voxlab/charchat/internal/model/chat"
	"github.com/voxlab/charchat/internal/model/persona"
	"github.com/voxlab/charchat/internal/service/gemini"
	"github.com/voxlab/charchat/pkg/logger"
)

// DefaultRecentTurnLimit caps the per-persona history used when no session
// id is supplied.
const DefaultRecentTurnLimit = 10

// Generator produces a model response for an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service drives one exchange: resolve persona, assemble context, call the
// model, persist the turn. Every failure is converted into a human-readable
// response string paired with the session id; nothing escapes to the
// transport layer as an error.
type Service struct {
	personas    persona.Store
	turns       chat.TurnStore
	model       Generator
	recentLimit int
}

// NewService wires the engine's collaborators.
func NewService(personas persona.Store, turns chat.TurnStore, model Generator, recentLimit int) *Service {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentTurnLimit
	}
	return &Service{
		personas:    personas,
		turns:       turns,
		model:       model,
		recentLimit: recentLimit,
	}
}

// Exchange runs one conversation turn and returns the response text and the
// session id the caller should carry forward. An empty sessionID begins a
// new session.
func (s *Service) Exchange(ctx context.Context, personaName, userInput, userID, sessionID string) (reply, outSessionID string) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Error("panic during exchange", zap.Any("panic", r))
			reply = fmt.Sprintf("An unexpected error occurred: %v", r)
			outSessionID = sessionID
		}
	}()

	p, err := s.personas.GetByName(ctx, personaName)
	if err != nil {
		if errors.Is(err, persona.ErrNotFound) {
			return "Character not found.", sessionID
		}
		return fmt.Sprintf("An unexpected error occurred: %v", err), sessionID
	}

	// Two distinct context policies, selected by the presence of an explicit
	// session handle: a supplied session replays in full, while an implicit
	// continuation uses the capped per-persona tail. A long-lived explicit
	// session therefore grows the prompt without bound.
	var history []chat.Turn
	if sessionID == "" {
		sessionID = uuid.NewString()
		history, err = s.turns.RecentTurnsForPersona(ctx, userID, p.ID, s.recentLimit)
	} else {
		history, err = s.turns.TurnsForSession(ctx, sessionID, userID)
	}
	if err != nil {
		return fmt.Sprintf("An unexpected error occurred: %v", err), sessionID
	}

	prompt := BuildPrompt(p.PromptTemplate, history, userInput)

	text, err := s.model.Generate(ctx, prompt)
	if err != nil {
		return formatGenerationError(err), sessionID
	}

	if _, err := s.turns.Append(ctx, chat.Turn{
		PersonaID:   p.ID,
		UserID:      userID,
		SessionID:   sessionID,
		UserInput:   userInput,
		BotResponse: text,
	}); err != nil {
		logger.L().Error("failed to persist turn",
			zap.String("sessionId", sessionID),
			zap.String("personaId", p.ID),
			zap.Error(err))
		return fmt.Sprintf("An unexpected error occurred: %v", err), sessionID
	}

	logger.L().Info("saved conversation turn",
		zap.String("sessionId", sessionID),
		zap.String("persona", p.Name),
		zap.String("userId", userID))

	return text, sessionID
}

// BuildPrompt concatenates the persona template, the space-joined prior
// turns, and the new input into the flat prompt the generation API expects.
func BuildPrompt(template string, history []chat.Turn, userInput string) string {
	pairs := make([]string, 0, len(history))
	for _, turn := range history {
		pairs = append(pairs, fmt.Sprintf("User: %s\nBot: %s", turn.UserInput, turn.BotResponse))
	}

	return fmt.Sprintf("%s\n%s\nUser: %s\nBot:", template, strings.Join(pairs, " "), userInput)
}

func formatGenerationError(err error) string {
	var statusErr *gemini.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("An error occurred while generating content: %d - %s", statusErr.Code, statusErr.Body)
	}
	if errors.Is(err, gemini.ErrNoCandidates) {
		return "An error occurred while generating content: unexpected response format."
	}
	return fmt.Sprintf("An unexpected error occurred: %v", err)
}
