package chat

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrSessionOwnership is returned when an append would attach a turn to a
	// session that belongs to a different user.
	ErrSessionOwnership = errors.New("session belongs to another user")
)

// Turn is one user-input/bot-response pair, timestamped and attributed to a
// user and persona. Turns are append-only; a session is the set of turns
// sharing a session id.
type Turn struct {
	ID          string    `json:"id"`
	PersonaID   string    `json:"personaId"`
	UserID      string    `json:"userId"`
	SessionID   string    `json:"sessionId"`
	UserInput   string    `json:"userInput"`
	BotResponse string    `json:"botResponse"`
	Timestamp   time.Time `json:"timestamp"`
}

// TurnStore persists conversation turns. Append is the only write path;
// ordering within a session is by timestamp ascending.
type TurnStore interface {
	// Append stores the turn, assigning its id and timestamp. The write is
	// transactional: on failure nothing is persisted. Appending to a session
	// owned by a different user fails with ErrSessionOwnership.
	Append(ctx context.Context, turn Turn) (Turn, error)

	// TurnsForSession returns every turn of (sessionID, userID), oldest first.
	TurnsForSession(ctx context.Context, sessionID, userID string) ([]Turn, error)

	// RecentTurnsForPersona returns the most recent limit turns of
	// (userID, personaID), reversed to oldest-first order.
	RecentTurnsForPersona(ctx context.Context, userID, personaID string, limit int) ([]Turn, error)

	// SessionsForUser groups the user's turns by session, most recent
	// session first.
	SessionsForUser(ctx context.Context, userID string) ([]SessionSummary, error)
}
