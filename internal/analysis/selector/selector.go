// Package selector picks a character from the wording of a message.
package selector

import "strings"

// Category orders the keyword buckets; earlier categories win ties.
type Category string

const (
	Education     Category = "education"
	Entertainment Category = "entertainment"
	Adventure     Category = "adventure"
)

var categoryOrder = []Category{Education, Entertainment, Adventure}

var keywordBuckets = map[Category][]string{
	Education: {
		"learn", "study", "education", "knowledge", "science", "history", "math", "theory", "research",
	},
	Entertainment: {
		"joke", "funny", "laugh", "entertain", "comedy", "silly",
	},
	Adventure: {
		"adventure", "sea", "pirate", "treasure", "sail", "voyage",
	},
}

var categoryPersona = map[Category]string{
	Education:     "Professor Sage",
	Entertainment: "Chuck the Clown",
	Adventure:     "Sarcastic Pirate",
}

// Select returns the persona name whose keyword bucket matches the input
// first, or false when nothing matches. Deterministic, no side effects.
func Select(input string) (string, bool) {
	normalized := strings.ToLower(input)

	for _, category := range categoryOrder {
		for _, keyword := range keywordBuckets[category] {
			if strings.Contains(normalized, keyword) {
				return categoryPersona[category], true
			}
		}
	}

	return "", false
}
