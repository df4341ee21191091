package snippet

import "strings"

// Matches reports whether the snippet matches a search query using
// case-insensitive substring matching against title or content.
// The caller is expected to pass a trimmed, non-empty query.
func (s *Snippet) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(s.Title), q) ||
		strings.Contains(strings.ToLower(s.Content), q)
}
