package services

import (
	"strings"
	"unicode/utf8"
)

// TextChunker splits archived interviews into pieces small enough to embed.
// Sizes are counted in runes.
type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText implements TextChunker. Lines are kept whole when they fit, so a
// transcript turn is never cut in the middle; longer lines are split on word
// boundaries. Consecutive chunks repeat up to overlap runes of whole lines.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	var units []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		units = append(units, splitLine(line, maxChunkSize)...)
	}

	var (
		chunks  []string
		current []string
		size    int
	)
	for _, unit := range units {
		n := utf8.RuneCountInString(unit)
		if len(current) > 0 && size+1+n > maxChunkSize {
			chunks = append(chunks, strings.Join(current, "\n"))
			current, size = overlapTail(current, min(overlap, maxChunkSize-n-1))
		}
		if len(current) > 0 {
			size++
		}
		current = append(current, unit)
		size += n
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}

	return chunks
}

// overlapTail returns the longest suffix of units whose joined length is at
// most limit, together with that length.
func overlapTail(units []string, limit int) ([]string, int) {
	start, size := len(units), 0
	for i := len(units) - 1; i >= 0; i-- {
		n := utf8.RuneCountInString(units[i])
		if start < len(units) {
			n++
		}
		if size+n > limit {
			break
		}
		size += n
		start = i
	}
	return append([]string(nil), units[start:]...), size
}

// splitLine breaks a line longer than max into word-aligned pieces. A single
// word longer than max is cut at max runes.
func splitLine(line string, max int) []string {
	if utf8.RuneCountInString(line) <= max {
		return []string{line}
	}

	var (
		pieces []string
		sb     strings.Builder
		size   int
	)
	flush := func() {
		if size > 0 {
			pieces = append(pieces, sb.String())
			sb.Reset()
			size = 0
		}
	}

	for _, word := range strings.Fields(line) {
		for utf8.RuneCountInString(word) > max {
			flush()
			r := []rune(word)
			pieces = append(pieces, string(r[:max]))
			word = string(r[max:])
		}
		if word == "" {
			continue
		}

		n := utf8.RuneCountInString(word)
		if size > 0 && size+1+n > max {
			flush()
		}
		if size > 0 {
			sb.WriteByte(' ')
			size++
		}
		sb.WriteString(word)
		size += n
	}
	flush()

	return pieces
}
