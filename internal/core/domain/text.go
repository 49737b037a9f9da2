package domain

import "strings"

// Normalize collapses all whitespace runs (including newlines) to single
// spaces and trims leading and trailing whitespace. Every extracted string
// passes through here before chunking, so chunk text never contains
// newlines or repeated spaces.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
