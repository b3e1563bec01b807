package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/voxlab/charchat/internal/model/chat"
	"github.com/voxlab/charchat/internal/model/persona"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createPersona(t *testing.T, store *PersonaStore, name string) persona.Persona {
	t.Helper()
	p, err := store.Create(context.Background(), name, "desc", "You are "+name+".")
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	return p
}

func TestPersonaCreateAndGet(t *testing.T) {
	db := openTestDB(t)
	store := NewPersonaStore(db)
	ctx := context.Background()

	created := createPersona(t, store, "Chuck the Clown")

	got, err := store.GetByName(ctx, "Chuck the Clown")
	if err != nil {
		t.Fatalf("GetByName err: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("unexpected id: got %s want %s", got.ID, created.ID)
	}
	if got.PromptTemplate != created.PromptTemplate {
		t.Fatalf("unexpected template: %q", got.PromptTemplate)
	}
}

func TestPersonaCreateDuplicateRejected(t *testing.T) {
	db := openTestDB(t)
	store := NewPersonaStore(db)

	createPersona(t, store, "Professor Sage")

	if _, err := store.Create(context.Background(), "Professor Sage", "other", "other"); err != persona.ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	personas, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List err: %v", err)
	}
	if len(personas) != 1 {
		t.Fatalf("expected 1 persona, got %d", len(personas))
	}
}

func TestPersonaGetMissing(t *testing.T) {
	db := openTestDB(t)
	store := NewPersonaStore(db)

	if _, err := store.GetByName(context.Background(), "Nobody"); err != persona.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTurnRoundTrip(t *testing.T) {
	db := openTestDB(t)
	p := createPersona(t, NewPersonaStore(db), "Chuck the Clown")
	store := NewTurnStore(db)
	ctx := context.Background()

	saved, err := store.Append(ctx, chat.Turn{
		PersonaID:   p.ID,
		UserID:      "u1",
		SessionID:   "s1",
		UserInput:   "tell me a joke",
		BotResponse: "why did the chicken cross the road?",
	})
	if err != nil {
		t.Fatalf("Append err: %v", err)
	}
	if saved.ID == "" || saved.Timestamp.IsZero() {
		t.Fatalf("expected assigned id and timestamp, got %+v", saved)
	}

	turns, err := store.TurnsForSession(ctx, "s1", "u1")
	if err != nil {
		t.Fatalf("TurnsForSession err: %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
	got := turns[0]
	if got.PersonaID != p.ID || got.UserID != "u1" || got.SessionID != "s1" ||
		got.UserInput != "tell me a joke" || got.BotResponse != "why did the chicken cross the road?" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestTurnsForSessionOrdering(t *testing.T) {
	db := openTestDB(t)
	p := createPersona(t, NewPersonaStore(db), "Chuck the Clown")
	store := NewTurnStore(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.Append(ctx, chat.Turn{
			PersonaID:   p.ID,
			UserID:      "u1",
			SessionID:   "s1",
			UserInput:   fmt.Sprintf("message %d", i),
			BotResponse: "ok",
		}); err != nil {
			t.Fatalf("Append err: %v", err)
		}
		time.Sleep(time.Millisecond)
	}

	turns, err := store.TurnsForSession(ctx, "s1", "u1")
	if err != nil {
		t.Fatalf("TurnsForSession err: %v", err)
	}
	if len(turns) != 5 {
		t.Fatalf("expected 5 turns, got %d", len(turns))
	}
	for i, turn := range turns {
		if want := fmt.Sprintf("message %d", i); turn.UserInput != want {
			t.Fatalf("turn %d out of order: got %q want %q", i, turn.UserInput, want)
		}
		if i > 0 && turn.Timestamp.Before(turns[i-1].Timestamp) {
			t.Fatalf("timestamps not ascending at %d", i)
		}
	}
}

func TestRecentTurnsForPersonaCapped(t *testing.T) {
	db := openTestDB(t)
	p := createPersona(t, NewPersonaStore(db), "Chuck the Clown")
	store := NewTurnStore(db)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		if _, err := store.Append(ctx, chat.Turn{
			PersonaID:   p.ID,
			UserID:      "u1",
			SessionID:   fmt.Sprintf("s%d", i),
			UserInput:   fmt.Sprintf("message %d", i),
			BotResponse: "ok",
		}); err != nil {
			t.Fatalf("Append err: %v", err)
		}
		time.Sleep(time.Millisecond)
	}

	turns, err := store.RecentTurnsForPersona(ctx, "u1", p.ID, 10)
	if err != nil {
		t.Fatalf("RecentTurnsForPersona err: %v", err)
	}
	if len(turns) != 10 {
		t.Fatalf("expected 10 turns, got %d", len(turns))
	}
	// The 10 most recent, oldest first: messages 5..14.
	for i, turn := range turns {
		if want := fmt.Sprintf("message %d", i+5); turn.UserInput != want {
			t.Fatalf("turn %d: got %q want %q", i, turn.UserInput, want)
		}
	}
}

func TestSessionsForUserGrouping(t *testing.T) {
	db := openTestDB(t)
	personas := NewPersonaStore(db)
	clown := createPersona(t, personas, "Chuck the Clown")
	sage := createPersona(t, personas, "Professor Sage")
	store := NewTurnStore(db)
	ctx := context.Background()

	longInput := strings.Repeat("x", 40)
	if _, err := store.Append(ctx, chat.Turn{
		PersonaID: clown.ID, UserID: "u1", SessionID: "s1",
		UserInput: longInput, BotResponse: "ha",
	}); err != nil {
		t.Fatalf("Append err: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, err := store.Append(ctx, chat.Turn{
		PersonaID: clown.ID, UserID: "u1", SessionID: "s1",
		UserInput: "more", BotResponse: "ha again",
	}); err != nil {
		t.Fatalf("Append err: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, err := store.Append(ctx, chat.Turn{
		PersonaID: sage.ID, UserID: "u1", SessionID: "s2",
		UserInput: "teach me", BotResponse: "gladly",
	}); err != nil {
		t.Fatalf("Append err: %v", err)
	}
	// Another user's session must not show up.
	if _, err := store.Append(ctx, chat.Turn{
		PersonaID: sage.ID, UserID: "u2", SessionID: "s3",
		UserInput: "hello", BotResponse: "hi",
	}); err != nil {
		t.Fatalf("Append err: %v", err)
	}

	sessions, err := store.SessionsForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("SessionsForUser err: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}

	// Newest session first.
	if sessions[0].SessionID != "s2" || sessions[1].SessionID != "s1" {
		t.Fatalf("unexpected session order: %s, %s", sessions[0].SessionID, sessions[1].SessionID)
	}
	if sessions[0].PersonaName != "Professor Sage" {
		t.Fatalf("unexpected persona name: %s", sessions[0].PersonaName)
	}
	if sessions[1].TurnCount != 2 {
		t.Fatalf("expected 2 turns in s1, got %d", sessions[1].TurnCount)
	}
	if want := strings.Repeat("x", 30) + "..."; sessions[1].Preview != want {
		t.Fatalf("unexpected preview: %q", sessions[1].Preview)
	}
}

func TestAppendRejectsForeignSession(t *testing.T) {
	db := openTestDB(t)
	p := createPersona(t, NewPersonaStore(db), "Chuck the Clown")
	store := NewTurnStore(db)
	ctx := context.Background()

	if _, err := store.Append(ctx, chat.Turn{
		PersonaID: p.ID, UserID: "u1", SessionID: "shared",
		UserInput: "hi", BotResponse: "hello",
	}); err != nil {
		t.Fatalf("Append err: %v", err)
	}

	if _, err := store.Append(ctx, chat.Turn{
		PersonaID: p.ID, UserID: "u2", SessionID: "shared",
		UserInput: "sneaky", BotResponse: "nope",
	}); err != chat.ErrSessionOwnership {
		t.Fatalf("expected ErrSessionOwnership, got %v", err)
	}

	turns, err := store.TurnsForSession(ctx, "shared", "u1")
	if err != nil {
		t.Fatalf("TurnsForSession err: %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("expected rejected append to persist nothing, got %d turns", len(turns))
	}
}
