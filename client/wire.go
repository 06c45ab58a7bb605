// client/wire.go
package client

import (
	"strconv"
	"time"

	"github.com/gkirkpatrick/magic-notes/domain"
)

// Wire types use pointers so that absent fields are distinguishable from zero
// values; every response is checked against its expected shape before being
// handed to the caller.

type noteWire struct {
	ID        *int64     `json:"id"`
	Title     *string    `json:"title"`
	Content   *string    `json:"content"`
	Tags      *[]string  `json:"tags"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func (w noteWire) violations(prefix string) []string {
	var out []string
	if w.ID == nil || *w.ID == 0 {
		out = append(out, prefix+"id")
	}
	if w.Title == nil || *w.Title == "" {
		out = append(out, prefix+"title")
	}
	if w.Content == nil {
		out = append(out, prefix+"content")
	}
	if w.Tags == nil {
		out = append(out, prefix+"tags")
	}
	if w.CreatedAt == nil {
		out = append(out, prefix+"created_at")
	}
	if w.UpdatedAt == nil {
		out = append(out, prefix+"updated_at")
	}
	return out
}

func (w noteWire) toDomain() domain.Note {
	return domain.Note{
		ID:        *w.ID,
		Title:     *w.Title,
		Content:   *w.Content,
		Tags:      *w.Tags,
		CreatedAt: *w.CreatedAt,
		UpdatedAt: *w.UpdatedAt,
	}
}

type noteListWire struct {
	Items      *[]noteWire `json:"items"`
	Total      *int        `json:"total"`
	Page       *int        `json:"page"`
	PageSize   *int        `json:"page_size"`
	TotalPages *int        `json:"total_pages"`
}

func (w noteListWire) violations() []string {
	var out []string
	if w.Items == nil {
		out = append(out, "items")
	}
	if w.Total == nil {
		out = append(out, "total")
	}
	if w.Page == nil {
		out = append(out, "page")
	}
	if w.PageSize == nil {
		out = append(out, "page_size")
	}
	if w.TotalPages == nil {
		out = append(out, "total_pages")
	}
	if w.Items != nil {
		for i, item := range *w.Items {
			out = append(out, item.violations(itemPrefix(i))...)
		}
	}
	return out
}

func itemPrefix(i int) string {
	return "items[" + strconv.Itoa(i) + "]."
}

type tagWire struct {
	ID   *int64  `json:"id"`
	Name *string `json:"name"`
}

func (w tagWire) violations(prefix string) []string {
	var out []string
	if w.ID == nil || *w.ID == 0 {
		out = append(out, prefix+"id")
	}
	if w.Name == nil || *w.Name == "" {
		out = append(out, prefix+"name")
	}
	return out
}

func (w tagWire) toDomain() domain.Tag {
	return domain.Tag{ID: *w.ID, Name: *w.Name}
}
