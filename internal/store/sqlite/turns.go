package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voxlab/charchat/internal/model/chat"
)

// TurnStore implements chat.TurnStore on sqlite. Timestamps are stored as
// unix nanoseconds so ordering survives rapid consecutive appends.
type TurnStore struct {
	db *sql.DB
}

// NewTurnStore wraps an opened database.
func NewTurnStore(db *sql.DB) *TurnStore {
	return &TurnStore{db: db}
}

// Append stores a turn inside a transaction, assigning id and timestamp.
// A session id already in use by another user is rejected, so one user's
// history can never leak into another's context window.
func (s *TurnStore) Append(ctx context.Context, turn chat.Turn) (chat.Turn, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return chat.Turn{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if turn.SessionID != "" {
		var owner string
		err := tx.QueryRowContext(ctx, `
			SELECT user_id FROM turns WHERE session_id = ? LIMIT 1
		`, turn.SessionID).Scan(&owner)
		if err != nil && err != sql.ErrNoRows {
			return chat.Turn{}, fmt.Errorf("checking session owner: %w", err)
		}
		if err == nil && owner != turn.UserID {
			return chat.Turn{}, chat.ErrSessionOwnership
		}
	}

	turn.ID = uuid.NewString()
	turn.Timestamp = time.Now().UTC()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO turns (id, persona_id, user_id, session_id, user_input, bot_response, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, turn.ID, turn.PersonaID, turn.UserID, turn.SessionID, turn.UserInput, turn.BotResponse, turn.Timestamp.UnixNano()); err != nil {
		return chat.Turn{}, fmt.Errorf("appending turn: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return chat.Turn{}, fmt.Errorf("committing turn: %w", err)
	}

	return turn, nil
}

// TurnsForSession replays the full session for one user, oldest first.
func (s *TurnStore) TurnsForSession(ctx context.Context, sessionID, userID string) ([]chat.Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, persona_id, user_id, session_id, user_input, bot_response, timestamp
		FROM turns
		WHERE session_id = ? AND user_id = ?
		ORDER BY timestamp ASC
	`, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("querying session turns: %w", err)
	}
	defer rows.Close()

	return scanTurns(rows)
}

// RecentTurnsForPersona returns the limit most recent turns for the
// user/persona pair, reversed into chronological order.
func (s *TurnStore) RecentTurnsForPersona(ctx context.Context, userID, personaID string, limit int) ([]chat.Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, persona_id, user_id, session_id, user_input, bot_response, timestamp
		FROM turns
		WHERE user_id = ? AND persona_id = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`, userID, personaID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent turns: %w", err)
	}
	defer rows.Close()

	turns, err := scanTurns(rows)
	if err != nil {
		return nil, err
	}

	// Reverse to chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	return turns, nil
}

// SessionsForUser reconstructs the user's sessions by grouping turns,
// newest session first. The preview comes from each session's first input.
func (s *TurnStore) SessionsForUser(ctx context.Context, userID string) ([]chat.SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.session_id,
		       p.name,
		       (SELECT user_input FROM turns
		        WHERE session_id = t.session_id AND user_id = t.user_id
		        ORDER BY timestamp ASC LIMIT 1),
		       MIN(t.timestamp) AS start_time,
		       COUNT(*)
		FROM turns t
		JOIN personas p ON p.id = t.persona_id
		WHERE t.user_id = ? AND t.session_id != ''
		GROUP BY t.session_id
		ORDER BY start_time DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []chat.SessionSummary
	for rows.Next() {
		var summary chat.SessionSummary
		var firstInput string
		var startNanos int64
		if err := rows.Scan(&summary.SessionID, &summary.PersonaName, &firstInput, &startNanos, &summary.TurnCount); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		summary.Preview = chat.Preview(firstInput)
		summary.StartTime = time.Unix(0, startNanos).UTC()
		sessions = append(sessions, summary)
	}

	return sessions, rows.Err()
}

func scanTurns(rows *sql.Rows) ([]chat.Turn, error) {
	var turns []chat.Turn
	for rows.Next() {
		var turn chat.Turn
		var nanos int64
		if err := rows.Scan(&turn.ID, &turn.PersonaID, &turn.UserID, &turn.SessionID,
			&turn.UserInput, &turn.BotResponse, &nanos); err != nil {
			return nil, fmt.Errorf("scanning turn row: %w", err)
		}
		turn.Timestamp = time.Unix(0, nanos).UTC()
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}
