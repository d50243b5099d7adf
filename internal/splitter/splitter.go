// Package splitter slices documents into fixed-length overlapping chunks.
//
// Splitting is purely length-based over runes: no sentence or markup
// awareness. For a document of N runes, target length L and overlap O
// (0 <= O < L), consecutive chunks share exactly O runes and the chunk
// count is ceil((N-O)/(L-O)).
package splitter

import (
	"fmt"

	"github.com/bull/docchat/internal/document"
	"github.com/bull/docchat/internal/errs"
)

// Chunk is a contiguous slice of a source document.
type Chunk struct {
	Source string // source identifier of the parent document
	Offset int    // rune offset of the chunk start within the document
	Index  int    // position in the split sequence (0, 1, 2...)
	Text   string
}

// Splitter produces overlapping chunks of a fixed target size.
type Splitter struct {
	size    int
	overlap int
}

// New creates a Splitter with the given chunk size and overlap, both in
// runes. Overlap must be strictly less than size.
func New(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", errs.ErrConfiguration, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap %d must be in [0, %d)", errs.ErrConfiguration, overlap, size)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Split slices the document into ordered chunks. A document shorter than
// the chunk size yields exactly one chunk containing the whole document.
func (s *Splitter) Split(doc *document.Document) []Chunk {
	runes := []rune(doc.Content)
	n := len(runes)

	if n <= s.size {
		return []Chunk{{
			Source: doc.Source,
			Offset: 0,
			Index:  0,
			Text:   string(runes),
		}}
	}

	step := s.size - s.overlap
	var chunks []Chunk
	for start := 0; ; start += step {
		end := start + s.size
		if end > n {
			end = n
		}
		chunks = append(chunks, Chunk{
			Source: doc.Source,
			Offset: start,
			Index:  len(chunks),
			Text:   string(runes[start:end]),
		})
		if end == n {
			break
		}
	}
	return chunks
}
