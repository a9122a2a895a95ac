package models

import "time"

// Comment is a reader's remark on a note.
type Comment struct {
	ID        string    `json:"id"`
	NoteID    string    `json:"note_id"`
	AuthorID  string    `json:"author_id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
