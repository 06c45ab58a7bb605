// store/memory_test.go
package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gkirkpatrick/magic-notes/domain"
)

func seedClock(m *Memory) func() {
	t := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time {
		t = t.Add(time.Second)
		return t
	})
	return func() { m.SetClock(time.Now) }
}

func TestMemoryCreateNormalizesTags(t *testing.T) {
	m := NewMemory()
	defer seedClock(m)()

	n, err := m.CreateNote(context.Background(), domain.NoteInput{
		Title:   "Test Note",
		Content: "Content",
		Tags:    []string{" Work ", "work", "Personal", "URGENT", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"work", "personal", "urgent"}, n.Tags)

	tags, err := m.ListTags(context.Background())
	require.NoError(t, err)
	assert.Len(t, tags, 3)
}

func TestMemoryCreateRejectsInvalidInput(t *testing.T) {
	m := NewMemory()
	_, err := m.CreateNote(context.Background(), domain.NoteInput{Title: "  ", Content: "x"})
	var fe domain.FieldErrors
	assert.ErrorAs(t, err, &fe)
}

func TestMemoryUpdateReplacesTags(t *testing.T) {
	m := NewMemory()
	defer seedClock(m)()
	ctx := context.Background()

	n, err := m.CreateNote(ctx, domain.NoteInput{Title: "Original", Content: "Original", Tags: []string{"old-tag"}})
	require.NoError(t, err)

	upd, err := m.UpdateNote(ctx, n.ID, domain.NoteInput{
		Title: "Updated", Content: "Updated", Tags: []string{"new-tag", "another-tag"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Updated", upd.Title)
	assert.Equal(t, []string{"new-tag", "another-tag"}, upd.Tags)
	assert.True(t, upd.UpdatedAt.After(n.UpdatedAt))
	assert.Equal(t, n.CreatedAt, upd.CreatedAt)
}

func TestMemoryUpdateMissingNote(t *testing.T) {
	m := NewMemory()
	_, err := m.UpdateNote(context.Background(), 99999, domain.NoteInput{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDeleteTwice(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	n, err := m.CreateNote(ctx, domain.NoteInput{Title: "To Delete", Content: "Content"})
	require.NoError(t, err)

	require.NoError(t, m.DeleteNote(ctx, n.ID))
	assert.ErrorIs(t, m.DeleteNote(ctx, n.ID), ErrNotFound)

	_, err = m.GetNote(ctx, n.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySharedTags(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.CreateNote(ctx, domain.NoteInput{Title: "Note 1", Content: "c", Tags: []string{"shared-tag", "unique1"}})
	require.NoError(t, err)
	_, err = m.CreateNote(ctx, domain.NoteInput{Title: "Note 2", Content: "c", Tags: []string{"shared-tag", "unique2"}})
	require.NoError(t, err)

	tags, err := m.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 3)
}

func TestMemoryGetOrCreateTagIdempotent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	first, err := m.GetOrCreateTag(ctx, "existing")
	require.NoError(t, err)
	again, err := m.GetOrCreateTag(ctx, " EXISTING ")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	tags, err := m.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestMemoryListTagsSorted(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for _, name := range []string{"zebra", "apple", "middle"} {
		_, err := m.GetOrCreateTag(ctx, name)
		require.NoError(t, err)
	}

	tags, err := m.ListTags(ctx)
	require.NoError(t, err)
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	assert.Equal(t, []string{"apple", "middle", "zebra"}, names)
}

func seedSearchNotes(t *testing.T, m *Memory) {
	t.Helper()
	ctx := context.Background()
	seed := []domain.NoteInput{
		{Title: "Python Tutorial", Content: "Learn Python programming basics", Tags: []string{"python", "tutorial"}},
		{Title: "Django Guide", Content: "Advanced Django web development", Tags: []string{"django", "tutorial"}},
		{Title: "React Notes", Content: "Frontend development with React", Tags: []string{"react"}},
	}
	for _, in := range seed {
		_, err := m.CreateNote(ctx, in)
		require.NoError(t, err)
	}
}

func TestMemoryFilterByBodyText(t *testing.T) {
	m := NewMemory()
	defer seedClock(m)()
	seedSearchNotes(t, m)

	list, err := m.ListNotes(context.Background(), domain.Filter{BodyText: "Django"}, domain.Page{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Django Guide", list.Items[0].Title)
}

func TestMemoryFilterByTitleText(t *testing.T) {
	m := NewMemory()
	defer seedClock(m)()
	seedSearchNotes(t, m)

	list, err := m.ListNotes(context.Background(), domain.Filter{TitleText: "Python"}, domain.Page{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Python Tutorial", list.Items[0].Title)
}

func TestMemoryFilterBodyAndTitleUnion(t *testing.T) {
	m := NewMemory()
	defer seedClock(m)()
	seedSearchNotes(t, m)

	// "development" matches Django Guide and React Notes by body; "Django"
	// matches Django Guide by title. OR semantics: both notes come back.
	list, err := m.ListNotes(context.Background(), domain.Filter{BodyText: "development", TitleText: "Django"}, domain.Page{})
	require.NoError(t, err)
	titles := noteTitles(list.Items)
	assert.ElementsMatch(t, []string{"Django Guide", "React Notes"}, titles)
}

func TestMemoryFilterByTagsOrSemantics(t *testing.T) {
	m := NewMemory()
	defer seedClock(m)()
	seedSearchNotes(t, m)

	list, err := m.ListNotes(context.Background(), domain.Filter{Tags: []string{"django", "tutorial"}}, domain.Page{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Python Tutorial", "Django Guide"}, noteTitles(list.Items))
}

func TestMemoryFilterTagsCaseInsensitive(t *testing.T) {
	m := NewMemory()
	defer seedClock(m)()
	seedSearchNotes(t, m)

	list, err := m.ListNotes(context.Background(), domain.Filter{Tags: []string{"PYTHON", "TUTORIAL"}}, domain.Page{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Python Tutorial", "Django Guide"}, noteTitles(list.Items))
}

func TestMemoryFilterNoResults(t *testing.T) {
	m := NewMemory()
	seedSearchNotes(t, m)

	list, err := m.ListNotes(context.Background(), domain.Filter{BodyText: "nonexistent"}, domain.Page{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.Equal(t, 0, list.Total)
	assert.Equal(t, 1, list.TotalPages)
}

func TestMemoryListOrderedByUpdatedAtDesc(t *testing.T) {
	m := NewMemory()
	defer seedClock(m)()
	ctx := context.Background()
	seedSearchNotes(t, m)

	// Touch the oldest note; it should move to the front.
	list, err := m.ListNotes(ctx, domain.Filter{}, domain.Page{})
	require.NoError(t, err)
	oldest := list.Items[len(list.Items)-1]

	_, err = m.UpdateNote(ctx, oldest.ID, domain.NoteInput{Title: oldest.Title, Content: oldest.Content, Tags: oldest.Tags})
	require.NoError(t, err)

	list, err = m.ListNotes(ctx, domain.Filter{}, domain.Page{})
	require.NoError(t, err)
	assert.Equal(t, oldest.ID, list.Items[0].ID)
}

func TestMemoryPaginationEnvelope(t *testing.T) {
	m := NewMemory()
	defer seedClock(m)()
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		_, err := m.CreateNote(ctx, domain.NoteInput{Title: "note", Content: "body"})
		require.NoError(t, err)
	}

	list, err := m.ListNotes(ctx, domain.Filter{}, domain.Page{Page: 3, PageSize: 9})
	require.NoError(t, err)
	assert.Equal(t, 20, list.Total)
	assert.Equal(t, 3, list.TotalPages)
	assert.Len(t, list.Items, 2)

	// Past the end: correct envelope, empty page.
	list, err = m.ListNotes(ctx, domain.Filter{}, domain.Page{Page: 4, PageSize: 9})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.Equal(t, 3, list.TotalPages)
}

func TestMemoryReset(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_, err := m.CreateNote(ctx, domain.NoteInput{Title: "a", Content: "b", Tags: []string{"t"}})
	require.NoError(t, err)

	m.Reset()

	list, err := m.ListNotes(ctx, domain.Filter{}, domain.Page{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	// Ids restart after reset.
	n, err := m.CreateNote(ctx, domain.NoteInput{Title: "a", Content: "b"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n.ID)
}

func noteTitles(notes []domain.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Title
	}
	return out
}
