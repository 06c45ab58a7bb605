// domain/validate.go
package domain

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	MaxTitleLen   = 200
	MaxContentLen = 10000
	MaxTagLen     = 100
)

// FieldErrors maps a field name to the reason it was rejected.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for name := range fe {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, name := range fields {
		parts = append(parts, name+": "+fe[name])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Normalized returns a copy of the input with title and content trimmed and
// tags normalized, or FieldErrors if any constraint is violated.
func (in NoteInput) Normalized() (NoteInput, error) {
	out := NoteInput{
		Title:   strings.TrimSpace(in.Title),
		Content: strings.TrimSpace(in.Content),
		Tags:    NormalizeTags(in.Tags),
	}

	fe := FieldErrors{}
	if out.Title == "" {
		fe["title"] = "must not be empty"
	} else if utf8.RuneCountInString(out.Title) > MaxTitleLen {
		fe["title"] = fmt.Sprintf("must not exceed %d characters", MaxTitleLen)
	}
	if out.Content == "" {
		fe["content"] = "must not be empty"
	} else if utf8.RuneCountInString(out.Content) > MaxContentLen {
		fe["content"] = fmt.Sprintf("must not exceed %d characters", MaxContentLen)
	}
	for _, tag := range out.Tags {
		if utf8.RuneCountInString(tag) > MaxTagLen {
			fe["tags"] = fmt.Sprintf("tag %q must not exceed %d characters", tag, MaxTagLen)
			break
		}
	}
	if len(fe) > 0 {
		return NoteInput{}, fe
	}
	return out, nil
}

// Normalized returns the normalized tag name, or FieldErrors if the name is
// empty after normalization or too long.
func (in TagInput) Normalized() (TagInput, error) {
	out := TagInput{Name: NormalizeTag(in.Name)}
	if out.Name == "" {
		return TagInput{}, FieldErrors{"name": "must not be empty"}
	}
	if utf8.RuneCountInString(out.Name) > MaxTagLen {
		return TagInput{}, FieldErrors{"name": fmt.Sprintf("must not exceed %d characters", MaxTagLen)}
	}
	return out, nil
}
