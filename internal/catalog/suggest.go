package catalog

import (
	"github.com/sahilm/fuzzy"

	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
)

// DefaultSuggestLimit bounds type-ahead results when the caller passes none.
const DefaultSuggestLimit = 8

// Suggestion is a title match for type-ahead search.
type Suggestion struct {
	NoteID string `json:"note_id"`
	Title  string `json:"title"`
	Score  int    `json:"score"`
}

// Suggest ranks note titles against a fuzzy pattern, best first.
func Suggest(notes []*models.Note, pattern string, limit int) []Suggestion {
	if pattern == "" || len(notes) == 0 {
		return []Suggestion{}
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	titles := make([]string, len(notes))
	for i, n := range notes {
		titles[i] = n.Title
	}

	matches := fuzzy.Find(pattern, titles)
	out := make([]Suggestion, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		n := notes[m.Index]
		out = append(out, Suggestion{NoteID: n.ID, Title: n.Title, Score: m.Score})
	}
	return out
}
