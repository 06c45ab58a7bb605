// domain/note.go
package domain

import "time"

type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NoteInput is the request body for creating or updating a note.
type NoteInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// TagInput is the request body for create-or-get of a tag.
type TagInput struct {
	Name string `json:"name"`
}

// NoteList is the paginated envelope returned by the notes listing.
type NoteList struct {
	Items      []Note `json:"items"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}

// Filter selects notes by free text and tag names. BodyText and TitleText are
// case-insensitive substring matches, OR-combined when both are set. Tags use
// OR semantics: a note matches if it carries at least one of the names.
type Filter struct {
	BodyText  string
	TitleText string
	Tags      []string
}

func (f Filter) IsZero() bool {
	return f.BodyText == "" && f.TitleText == "" && len(f.Tags) == 0
}
