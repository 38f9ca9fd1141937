package sources

import (
	"fmt"

	"github.com/bradykim7/pagecrawl/internal/models"
)

// ParseError reports an expected element missing from a fetched page
type ParseError struct {
	Source  models.SourceType
	Element string
	Index   int
	Err     error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s: expected element %q not found", e.Source, e.Element)
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s: item %d: expected element %q not found", e.Source, e.Index, e.Element)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnsupportedSourceError reports a source type with no registered strategy
type UnsupportedSourceError struct {
	SourceType models.SourceType
}

func (e *UnsupportedSourceError) Error() string {
	return fmt.Sprintf("unsupported source type %q", e.SourceType)
}

func missing(src models.SourceType, element string, index int) *ParseError {
	return &ParseError{Source: src, Element: element, Index: index}
}
