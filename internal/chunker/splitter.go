package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the maximum chunk length in characters.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the number of trailing characters shared
	// between adjacent chunks.
	DefaultChunkOverlap = 200
)

// DefaultSeparators is the separator ladder, coarsest first. The empty
// string is the character-level last resort.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", " ", ""}

// Splitter splits text into size-bounded overlapping segments.
//
// Split is a pure function of (text, ChunkSize, ChunkOverlap): identical
// inputs always produce identical output.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// New creates a Splitter. Non-positive size falls back to
// DefaultChunkSize; a negative overlap is treated as zero, and an
// overlap >= size is halved to keep chunks from degenerating.
func New(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   DefaultSeparators,
	}
}

// ChunkSize returns the configured maximum chunk length.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// ChunkOverlap returns the configured overlap window.
func (s *Splitter) ChunkOverlap() int { return s.chunkOverlap }

// Split splits text into segments of at most ChunkSize characters, plus
// up to ChunkOverlap characters of overlap carried over from the
// previous segment. Each returned segment is whitespace-trimmed and
// non-empty; empty input returns no segments.
func (s *Splitter) Split(text string) []string {
	base := s.split(text, s.separators)

	out := make([]string, 0, len(base))
	var prev string
	for i, seg := range base {
		withOverlap := seg
		if i > 0 && s.chunkOverlap > 0 {
			t := tailRunes(prev, s.chunkOverlap)
			if t != "" && !strings.HasSuffix(t, " ") && !strings.HasPrefix(seg, " ") {
				t += " "
			}
			withOverlap = t + seg
		}
		prev = seg

		if trimmed := strings.TrimSpace(withOverlap); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// split produces segments of at most chunkSize characters, without
// overlap. Separators stay attached to the piece they terminate, so
// concatenating the result reproduces the input exactly.
func (s *Splitter) split(text string, separators []string) []string {
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= s.chunkSize {
		return []string{text}
	}

	sep, rest := pickSeparator(text, separators)
	if sep == "" {
		return s.hardCut(text)
	}

	var out []string
	var buf strings.Builder
	bufLen := 0
	flush := func() {
		if bufLen > 0 {
			out = append(out, buf.String())
			buf.Reset()
			bufLen = 0
		}
	}

	for _, piece := range strings.SplitAfter(text, sep) {
		if piece == "" {
			continue
		}
		n := utf8.RuneCountInString(piece)
		if n > s.chunkSize {
			// Indivisible at this level; recurse into finer separators.
			flush()
			out = append(out, s.split(piece, rest)...)
			continue
		}
		if bufLen+n > s.chunkSize {
			flush()
		}
		buf.WriteString(piece)
		bufLen += n
	}
	flush()
	return out
}

// hardCut slices text into chunkSize windows on rune boundaries.
func (s *Splitter) hardCut(text string) []string {
	runes := []rune(text)
	out := make([]string, 0, (len(runes)+s.chunkSize-1)/s.chunkSize)
	for start := 0; start < len(runes); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

// pickSeparator returns the first separator present in text and the
// remaining, finer separators after it.
func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}

// tailRunes returns the last n runes of s.
func tailRunes(s string, n int) string {
	if n <= 0 || s == "" {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[len(runes)-n:])
}
