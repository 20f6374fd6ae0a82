package doctext

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPath     = errors.New("invalid path")
	ErrFileNotFound    = errors.New("file not found")
	ErrNotDocx         = errors.New("not a docx file")
	ErrIndexOutOfRange = errors.New("paragraph index out of range")
	ErrSearchNotFound  = errors.New("search text not found")
	ErrMalformedTable  = errors.New("malformed table block")
)

// IndexError reports a paragraph_index that does not address a block.
type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("paragraph index %d out of range (document has %d paragraphs)", e.Index, e.Count)
}

func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

// SearchNotFoundError lists every search string that did not match its target.
type SearchNotFoundError struct {
	Searches []string
}

func (e *SearchNotFoundError) Error() string {
	return "search text not found: " + strings.Join(e.Searches, ", ")
}

func (e *SearchNotFoundError) Is(target error) bool {
	return target == ErrSearchNotFound
}

func malformedTable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedTable, fmt.Sprintf(format, args...))
}
