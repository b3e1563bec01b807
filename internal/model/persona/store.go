package persona

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("persona not found")
	ErrAlreadyExists = errors.New("persona already exists")
)

// Store exposes persona retrieval and admin creation.
type Store interface {
	GetByName(ctx context.Context, name string) (Persona, error)
	List(ctx context.Context) ([]Persona, error)
	Create(ctx context.Context, name, description, promptTemplate string) (Persona, error)
}

// MemoryStore implements Store with an in-memory slice, used in tests and
// anywhere a database is overkill.
type MemoryStore struct {
	items []Persona
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
func NewMemoryStore(items []Persona) *MemoryStore {
	copied := append([]Persona(nil), items...)
	for i := range copied {
		if copied[i].ID == "" {
			copied[i].ID = uuid.NewString()
		}
	}
	return &MemoryStore{items: copied}
}

// List returns the stored personas.
func (s *MemoryStore) List(_ context.Context) ([]Persona, error) {
	return append([]Persona(nil), s.items...), nil
}

// GetByName looks up a persona by its unique name.
func (s *MemoryStore) GetByName(_ context.Context, name string) (Persona, error) {
	for _, item := range s.items {
		if item.Name == name {
			return item, nil
		}
	}
	return Persona{}, ErrNotFound
}

// Create appends a persona, rejecting duplicate names.
func (s *MemoryStore) Create(_ context.Context, name, description, promptTemplate string) (Persona, error) {
	for _, item := range s.items {
		if item.Name == name {
			return Persona{}, ErrAlreadyExists
		}
	}
	p := Persona{ID: uuid.NewString(), Name: name, Description: description, PromptTemplate: promptTemplate}
	s.items = append(s.items, p)
	return p, nil
}
