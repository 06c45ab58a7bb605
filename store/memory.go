// store/memory.go
package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gkirkpatrick/magic-notes/domain"
)

// Memory is an in-memory Store used by tests and the storeless dev mode.
// It is an explicit instance, never package-level state: construct one with
// NewMemory and inject it wherever a Store is needed.
type Memory struct {
	mu         sync.RWMutex
	notes      []domain.Note
	tags       []domain.Tag
	nextNoteID int64
	nextTagID  int64
	now        func() time.Time
}

func NewMemory() *Memory {
	m := &Memory{now: time.Now}
	m.Reset()
	return m
}

// Reset drops all notes and tags and restarts id assignment.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = nil
	m.tags = nil
	m.nextNoteID = 1
	m.nextTagID = 1
}

// SetClock replaces the timestamp source. Tests use this to control
// created_at/updated_at ordering.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) ListNotes(ctx context.Context, f domain.Filter, p domain.Page) (domain.NoteList, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]domain.Note, 0, len(m.notes))
	for _, n := range m.notes {
		if matches(n, f) {
			matched = append(matched, cloneNote(n))
		}
	}

	// updated_at DESC, newest id first on ties.
	slices.SortStableFunc(matched, func(a, b domain.Note) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})

	p = p.Clamped()
	start, end := p.Slice(len(matched))
	return domain.NoteList{
		Items:      matched[start:end],
		Total:      len(matched),
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: domain.TotalPages(len(matched), p.PageSize),
	}, nil
}

func matches(n domain.Note, f domain.Filter) bool {
	if f.IsZero() {
		return true
	}

	textOK := f.BodyText == "" && f.TitleText == ""
	if f.BodyText != "" && containsFold(n.Content, strings.TrimSpace(f.BodyText)) {
		textOK = true
	}
	if f.TitleText != "" && containsFold(n.Title, strings.TrimSpace(f.TitleText)) {
		textOK = true
	}
	if !textOK {
		return false
	}

	if len(f.Tags) == 0 {
		return true
	}
	for _, want := range domain.NormalizeTags(f.Tags) {
		if slices.Contains(n.Tags, want) {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func (m *Memory) GetNote(ctx context.Context, id int64) (domain.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, n := range m.notes {
		if n.ID == id {
			return cloneNote(n), nil
		}
	}
	return domain.Note{}, ErrNotFound
}

func (m *Memory) CreateNote(ctx context.Context, in domain.NoteInput) (domain.Note, error) {
	in, err := in.Normalized()
	if err != nil {
		return domain.Note{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := domain.Note{
		ID:        m.nextNoteID,
		Title:     in.Title,
		Content:   in.Content,
		Tags:      in.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.nextNoteID++
	for _, name := range in.Tags {
		m.getOrCreateTagLocked(name)
	}
	m.notes = append(m.notes, n)
	return cloneNote(n), nil
}

func (m *Memory) UpdateNote(ctx context.Context, id int64, in domain.NoteInput) (domain.Note, error) {
	in, err := in.Normalized()
	if err != nil {
		return domain.Note{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.notes {
		if m.notes[i].ID != id {
			continue
		}
		m.notes[i].Title = in.Title
		m.notes[i].Content = in.Content
		m.notes[i].Tags = in.Tags
		m.notes[i].UpdatedAt = m.now()
		for _, name := range in.Tags {
			m.getOrCreateTagLocked(name)
		}
		return cloneNote(m.notes[i]), nil
	}
	return domain.Note{}, ErrNotFound
}

func (m *Memory) DeleteNote(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notes {
		if m.notes[i].ID == id {
			m.notes = slices.Delete(m.notes, i, i+1)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) ListTags(ctx context.Context) ([]domain.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := slices.Clone(m.tags)
	slices.SortFunc(out, func(a, b domain.Tag) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

func (m *Memory) GetOrCreateTag(ctx context.Context, name string) (domain.Tag, error) {
	in, err := domain.TagInput{Name: name}.Normalized()
	if err != nil {
		return domain.Tag{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getOrCreateTagLocked(in.Name), nil
}

func (m *Memory) getOrCreateTagLocked(name string) domain.Tag {
	for _, t := range m.tags {
		if t.Name == name {
			return t
		}
	}
	t := domain.Tag{ID: m.nextTagID, Name: name}
	m.nextTagID++
	m.tags = append(m.tags, t)
	return t
}

func cloneNote(n domain.Note) domain.Note {
	n.Tags = slices.Clone(n.Tags)
	return n
}
