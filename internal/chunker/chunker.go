// Package chunker turns extracted text into bounded chunks for embedding.
//
// Two modes are provided. Segment mode packs whole segments (pages,
// sheets) greedily under a character budget and never splits a segment,
// so a single oversized segment can exceed the nominal budget. Window
// mode slides a fixed-size window with overlap across one long string.
package chunker

import (
	"strings"

	"github.com/verdant-labs/docvault/internal/core/domain"
)

// DefaultMaxTokens is the default chunk budget in tokens.
const DefaultMaxTokens = 800

// charsPerToken approximates tokens as characters. The budget only
// needs to keep chunks under a generous embedding context limit, not
// hit it exactly.
const charsPerToken = 4

// DefaultWindowSize is the default window-mode chunk size in characters.
const DefaultWindowSize = 1000

// DefaultWindowOverlap is the default window-mode overlap in characters.
const DefaultWindowOverlap = 200

// Chunker packs text segments into bounded chunks.
type Chunker struct {
	budget int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMaxTokens sets the chunk budget in tokens (budget = tokens * 4 chars).
func WithMaxTokens(tokens int) Option {
	return func(c *Chunker) {
		if tokens > 0 {
			c.budget = tokens * charsPerToken
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{budget: DefaultMaxTokens * charsPerToken}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Budget returns the chunk budget in characters.
func (c *Chunker) Budget() int {
	return c.budget
}

// Split packs the segments into chunks. Empty segments are skipped.
// When appending a segment would push the running size over the budget
// and the buffer is non-empty, the buffer is flushed as one chunk
// (segments joined with a single space). Chunks are re-normalized and
// empty results are dropped, so no returned chunk is whitespace-only.
func (c *Chunker) Split(segments []string) []string {
	var chunks []string
	var buf []string
	cur := 0

	for _, t := range segments {
		t = domain.Normalize(t)
		if t == "" {
			continue
		}
		if cur+len(t) > c.budget && len(buf) > 0 {
			chunks = append(chunks, strings.Join(buf, " "))
			buf = buf[:0]
			cur = 0
		}
		buf = append(buf, t)
		cur += len(t)
	}
	if len(buf) > 0 {
		chunks = append(chunks, strings.Join(buf, " "))
	}

	out := chunks[:0]
	for _, chunk := range chunks {
		if n := domain.Normalize(chunk); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// SplitWindow slides a window of size characters over text, advancing
// by size-overlap each step until the start passes the end of the
// text. The advance is clamped to at least one character so
// overlap >= size cannot loop forever. Trailing windows may be shorter
// than size; every window is trimmed and empty windows are dropped.
func SplitWindow(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultWindowSize
	}
	if overlap < 0 {
		overlap = 0
	}
	step := size - overlap
	if step < 1 {
		step = 1
	}

	var out []string
	for start := 0; start < len(text); start += step {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		if w := strings.TrimSpace(text[start:end]); w != "" {
			out = append(out, w)
		}
	}
	return out
}
