package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/voxlab/charchat/internal/model/persona"
)

// PersonaStore implements persona.Store on sqlite.
type PersonaStore struct {
	db *sql.DB
}

// NewPersonaStore wraps an opened database.
func NewPersonaStore(db *sql.DB) *PersonaStore {
	return &PersonaStore{db: db}
}

// GetByName looks up a persona by its unique name.
func (s *PersonaStore) GetByName(ctx context.Context, name string) (persona.Persona, error) {
	var p persona.Persona
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, prompt_template FROM personas WHERE name = ?
	`, name).Scan(&p.ID, &p.Name, &p.Description, &p.PromptTemplate)

	if err == sql.ErrNoRows {
		return persona.Persona{}, persona.ErrNotFound
	}
	if err != nil {
		return persona.Persona{}, fmt.Errorf("getting persona: %w", err)
	}

	return p, nil
}

// List returns every persona ordered by name.
func (s *PersonaStore) List(ctx context.Context) ([]persona.Persona, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, prompt_template FROM personas ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("listing personas: %w", err)
	}
	defer rows.Close()

	var personas []persona.Persona
	for rows.Next() {
		var p persona.Persona
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PromptTemplate); err != nil {
			return nil, fmt.Errorf("scanning persona row: %w", err)
		}
		personas = append(personas, p)
	}

	return personas, rows.Err()
}

// Create inserts a new persona. Duplicate names are rejected rather than
// overwritten.
func (s *PersonaStore) Create(ctx context.Context, name, description, promptTemplate string) (persona.Persona, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persona.Persona{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT id FROM personas WHERE name = ?`, name).Scan(&existing)
	if err == nil {
		return persona.Persona{}, persona.ErrAlreadyExists
	}
	if err != sql.ErrNoRows {
		return persona.Persona{}, fmt.Errorf("checking persona name: %w", err)
	}

	p := persona.Persona{
		ID:             uuid.NewString(),
		Name:           name,
		Description:    description,
		PromptTemplate: promptTemplate,
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO personas (id, name, description, prompt_template) VALUES (?, ?, ?, ?)
	`, p.ID, p.Name, p.Description, p.PromptTemplate); err != nil {
		return persona.Persona{}, fmt.Errorf("inserting persona: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return persona.Persona{}, fmt.Errorf("committing persona: %w", err)
	}

	return p, nil
}
