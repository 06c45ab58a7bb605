// store/store.go
package store

import (
	"context"
	"errors"

	"github.com/gkirkpatrick/magic-notes/domain"
)

var ErrNotFound = errors.New("not found")

// Store is the persistence boundary for notes and tags. Implementations must
// return domain.NoteList envelopes with totals computed against the filtered
// set, and must apply tag normalization the same way the domain package does.
type Store interface {
	ListNotes(ctx context.Context, f domain.Filter, p domain.Page) (domain.NoteList, error)
	GetNote(ctx context.Context, id int64) (domain.Note, error)
	CreateNote(ctx context.Context, in domain.NoteInput) (domain.Note, error)
	UpdateNote(ctx context.Context, id int64, in domain.NoteInput) (domain.Note, error)
	DeleteNote(ctx context.Context, id int64) error
	ListTags(ctx context.Context) ([]domain.Tag, error)
	GetOrCreateTag(ctx context.Context, name string) (domain.Tag, error)
}
