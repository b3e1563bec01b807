package chat

import "time"

const previewLimit = 30

// SessionSummary is the derived history view of one session. Sessions are not
// stored records; they are reconstructed by grouping turns.
type SessionSummary struct {
	SessionID   string    `json:"sessionId"`
	PersonaName string    `json:"personaName"`
	Preview     string    `json:"preview"`
	StartTime   time.Time `json:"startTime"`
	TurnCount   int       `json:"turnCount"`
}

// Preview truncates a session's first user input for history listings.
// Inputs longer than 30 characters get an ellipsis marker.
func Preview(input string) string {
	runes := []rune(input)
	if len(runes) <= previewLimit {
		return input
	}
	return string(runes[:previewLimit]) + "..."
}
