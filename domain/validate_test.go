// domain/validate_test.go
package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteInputNormalized(t *testing.T) {
	in := NoteInput{
		Title:   "  My Note  ",
		Content: " body ",
		Tags:    []string{"A", "a ", " A"},
	}

	got, err := in.Normalized()
	require.NoError(t, err)
	assert.Equal(t, "My Note", got.Title)
	assert.Equal(t, "body", got.Content)
	assert.Equal(t, []string{"a"}, got.Tags)
}

func TestNoteInputRejectsEmptyFields(t *testing.T) {
	_, err := NoteInput{Title: "   ", Content: "   "}.Normalized()
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "title")
	assert.Contains(t, fe, "content")

	// A valid content alongside an empty title reports only the title.
	_, err = NoteInput{Title: "   ", Content: "ok"}.Normalized()
	fe = nil
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "title")
	assert.NotContains(t, fe, "content")
}

func TestNoteInputLengthLimits(t *testing.T) {
	tests := []struct {
		name  string
		in    NoteInput
		field string
	}{
		{"title too long", NoteInput{Title: strings.Repeat("a", MaxTitleLen+1), Content: "ok"}, "title"},
		{"content too long", NoteInput{Title: "ok", Content: strings.Repeat("a", MaxContentLen+1)}, "content"},
		{"tag too long", NoteInput{Title: "ok", Content: "ok", Tags: []string{strings.Repeat("a", MaxTagLen+1)}}, "tags"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Normalized()
			var fe FieldErrors
			require.ErrorAs(t, err, &fe)
			assert.Contains(t, fe, tt.field)
		})
	}
}

func TestLengthLimitsCountRunesNotBytes(t *testing.T) {
	// 200 multibyte characters exceed 200 bytes but stay within the limit.
	in := NoteInput{Title: strings.Repeat("ü", MaxTitleLen), Content: "ok"}
	_, err := in.Normalized()
	assert.NoError(t, err)

	_, err = NoteInput{Title: strings.Repeat("ü", MaxTitleLen+1), Content: "ok"}.Normalized()
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "title")

	_, err = TagInput{Name: strings.Repeat("ü", MaxTagLen)}.Normalized()
	assert.NoError(t, err)
}

func TestNoteInputMaxLengthsAccepted(t *testing.T) {
	in := NoteInput{
		Title:   strings.Repeat("a", MaxTitleLen),
		Content: strings.Repeat("b", MaxContentLen),
		Tags:    []string{strings.Repeat("c", MaxTagLen)},
	}
	_, err := in.Normalized()
	assert.NoError(t, err)
}

func TestTagInputNormalized(t *testing.T) {
	got, err := TagInput{Name: "  NewTag "}.Normalized()
	require.NoError(t, err)
	assert.Equal(t, "newtag", got.Name)

	_, err = TagInput{Name: "   "}.Normalized()
	assert.Error(t, err)
}
