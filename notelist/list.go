// notelist/list.go

// Package notelist owns the client's view of notes and tags: filter state,
// pagination, and optimistic create/update/delete with rollback. It is the
// single authority the view layer reads from; every mutation goes through the
// snapshot/apply/confirm-or-rollback protocol.
package notelist

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/gkirkpatrick/magic-notes/client"
	"github.com/gkirkpatrick/magic-notes/domain"
)

type List struct {
	mu  sync.Mutex
	api client.API

	notes  []domain.Note
	tags   []domain.Tag
	filter domain.Filter

	page     int
	pageSize int

	lastErr    error
	loadSeq    uint64
	nextTempID int64
}

func New(api client.API) *List {
	return &List{
		api:      api,
		page:     1,
		pageSize: domain.DefaultPageSize,
	}
}

// Refresh reloads the cached notes for the current filter. On failure the
// previous data stays visible (stale but available) and the error is recorded.
// Each load carries a sequence number; a response belonging to a superseded
// load is dropped so rapid filter changes cannot resurrect older state.
func (l *List) Refresh(ctx context.Context) error {
	l.mu.Lock()
	l.loadSeq++
	seq := l.loadSeq
	filter := l.filter
	l.mu.Unlock()

	notes, err := l.fetchAll(ctx, filter)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.loadSeq {
		// A newer load owns the state now.
		return nil
	}
	if err != nil {
		l.lastErr = err
		return err
	}
	l.notes = notes
	l.lastErr = nil
	return nil
}

// fetchAll walks the server's pages for the filter and concatenates them into
// the full filtered set; pagination over that set is then derived locally.
func (l *List) fetchAll(ctx context.Context, f domain.Filter) ([]domain.Note, error) {
	var all []domain.Note
	for page := 1; ; page++ {
		list, err := l.api.ListNotes(ctx, f, domain.Page{Page: page, PageSize: domain.MaxPageSize})
		if err != nil {
			return nil, err
		}
		all = append(all, list.Items...)
		if page >= list.TotalPages || len(list.Items) == 0 {
			return all, nil
		}
	}
}

// RefreshTags reloads the cached tag list.
func (l *List) RefreshTags(ctx context.Context) error {
	tags, err := l.api.ListTags(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.lastErr = err
		return err
	}
	l.tags = tags
	l.lastErr = nil
	return nil
}

// SetFilter replaces the filter state and resets pagination to page 1.
// Callers are expected to Refresh afterwards.
func (l *List) SetFilter(f domain.Filter) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.filter = f
	l.page = 1
}

// SetPageSize changes the page size and resets to page 1.
func (l *List) SetPageSize(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n < 1 {
		n = domain.DefaultPageSize
	}
	l.pageSize = n
	l.page = 1
}

// SetPage clamps n to [1, TotalPages]; navigating past either boundary is a
// no-op at the edge, never an error.
func (l *List) SetPage(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.page = clamp(n, 1, domain.TotalPages(len(l.notes), l.pageSize))
}

func (l *List) NextPage() { l.SetPage(l.CurrentPage() + 1) }
func (l *List) PrevPage() { l.SetPage(l.CurrentPage() - 1) }

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// Create optimistically prepends a placeholder note with a temporary negative
// id, then asks the server. On success the placeholder is swapped for the
// server's note and a full refresh runs so filter and pagination stay correct.
// On failure the placeholder is removed and the error returned.
//
// The note itself is committed once the server confirms it: a failure in the
// follow-up refresh does not fail Create, it leaves the confirmed note in the
// cache (stale but available) and is reported through Err().
func (l *List) Create(ctx context.Context, in domain.NoteInput) (domain.Note, error) {
	l.mu.Lock()
	l.nextTempID--
	tempID := l.nextTempID
	l.mu.Unlock()

	now := time.Now()
	temp := domain.Note{
		ID:        tempID,
		Title:     in.Title,
		Content:   in.Content,
		Tags:      domain.NormalizeTags(in.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}

	var created domain.Note
	err := l.mutate(
		func(notes []domain.Note) []domain.Note {
			return append([]domain.Note{temp}, notes...)
		},
		func() (reconcile func([]domain.Note) []domain.Note, err error) {
			created, err = l.api.CreateNote(ctx, in)
			if err != nil {
				return nil, err
			}
			return func(notes []domain.Note) []domain.Note {
				for i := range notes {
					if notes[i].ID == tempID {
						notes[i] = created
					}
				}
				return notes
			}, nil
		},
	)
	if err != nil {
		return domain.Note{}, err
	}

	// Server truth may change what the current filter matches. The refresh
	// outcome surfaces via Err() only; the create itself already succeeded.
	_ = l.Refresh(ctx)
	return created, nil
}

// Update optimistically merges the new field values into the cached entry. On
// success the entry is replaced with the server's response; on failure the
// whole pre-mutation snapshot is restored.
func (l *List) Update(ctx context.Context, id int64, in domain.NoteInput) (domain.Note, error) {
	var updated domain.Note
	err := l.mutate(
		func(notes []domain.Note) []domain.Note {
			for i := range notes {
				if notes[i].ID == id {
					notes[i].Title = in.Title
					notes[i].Content = in.Content
					notes[i].Tags = domain.NormalizeTags(in.Tags)
					notes[i].UpdatedAt = time.Now()
				}
			}
			return notes
		},
		func() (func([]domain.Note) []domain.Note, error) {
			var err error
			updated, err = l.api.UpdateNote(ctx, id, in)
			if err != nil {
				return nil, err
			}
			return func(notes []domain.Note) []domain.Note {
				for i := range notes {
					if notes[i].ID == id {
						notes[i] = updated
					}
				}
				return notes
			}, nil
		},
	)
	if err != nil {
		return domain.Note{}, err
	}
	return updated, nil
}

// Delete optimistically removes the entry. Nothing further happens on success;
// on failure the snapshot is restored.
func (l *List) Delete(ctx context.Context, id int64) error {
	return l.mutate(
		func(notes []domain.Note) []domain.Note {
			return slices.DeleteFunc(notes, func(n domain.Note) bool { return n.ID == id })
		},
		func() (func([]domain.Note) []domain.Note, error) {
			return nil, l.api.DeleteNote(ctx, id)
		},
	)
}

// mutate is the one snapshot/apply/confirm-or-rollback implementation every
// mutation flows through: snapshot the list, apply the optimistic change,
// issue the request, then either reconcile with server truth or restore the
// snapshot and record the error.
func (l *List) mutate(apply func([]domain.Note) []domain.Note, request func() (func([]domain.Note) []domain.Note, error)) error {
	l.mu.Lock()
	snapshot := cloneNotes(l.notes)
	l.notes = apply(cloneNotes(l.notes))
	l.mu.Unlock()

	reconcile, err := request()

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.notes = snapshot
		l.lastErr = err
		return err
	}
	if reconcile != nil {
		l.notes = reconcile(l.notes)
	}
	l.lastErr = nil
	return nil
}

func cloneNotes(notes []domain.Note) []domain.Note {
	out := make([]domain.Note, len(notes))
	for i, n := range notes {
		n.Tags = slices.Clone(n.Tags)
		out[i] = n
	}
	return out
}

// Notes returns a copy of the full cached (filtered) note set.
func (l *List) Notes() []domain.Note {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneNotes(l.notes)
}

// Page returns the current page slice with derived pagination numbers.
func (l *List) Page() domain.NoteList {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := domain.Page{Page: l.page, PageSize: l.pageSize}
	start, end := p.Slice(len(l.notes))
	return domain.NoteList{
		Items:      cloneNotes(l.notes[start:end]),
		Total:      len(l.notes),
		Page:       l.page,
		PageSize:   l.pageSize,
		TotalPages: domain.TotalPages(len(l.notes), l.pageSize),
	}
}

func (l *List) Tags() []domain.Tag {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.tags)
}

func (l *List) Filter() domain.Filter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}

func (l *List) CurrentPage() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page
}

func (l *List) TotalPages() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return domain.TotalPages(len(l.notes), l.pageSize)
}

// Err reports the latest operation's error, nil after a success. There is no
// error queue; each operation overwrites the previous outcome.
func (l *List) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}
