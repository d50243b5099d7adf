package store

import (
	"errors"
	"fmt"

	"github.com/bull/docchat/internal/errs"
)

var (
	// ErrUnreachable means the backing vector store could not be reached.
	ErrUnreachable = errors.New("vector store unreachable")

	// ErrEmptyIndex means a search ran against an index with no entries,
	// typically because ingestion has not been run yet.
	ErrEmptyIndex = fmt.Errorf("%w: index is empty, run ingest first", errs.ErrConfiguration)

	// ErrDimensionMismatch means an embedding did not match VectorDimension.
	ErrDimensionMismatch = fmt.Errorf("%w: embedding dimension mismatch", errs.ErrConfiguration)
)
