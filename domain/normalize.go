// domain/normalize.go
package domain

import "strings"

// NormalizeTag canonicalizes a tag name: trim whitespace, lowercase.
// The same rule runs on both the server and the client; the two sides must
// agree byte-for-byte on the result.
func NormalizeTag(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeTags normalizes every name, drops empties, and deduplicates while
// preserving first-seen order. Never returns nil.
func NormalizeTags(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		n := NormalizeTag(name)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
