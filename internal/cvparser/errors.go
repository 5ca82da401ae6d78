package cvparser

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported CV format")
	ErrEmptyFile         = errors.New("empty CV file")
	ErrNoText            = errors.New("no text could be extracted")
)

// ErrorKind classifies extraction failures
type ErrorKind string

const (
	KindUnsupported ErrorKind = "unsupported"
	KindUnreadable  ErrorKind = "unreadable"
)

// ExtractionError is returned next to an empty ParsedCV when a file cannot be read
type ExtractionError struct {
	Kind     ErrorKind
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("cv extraction (%s) failed for %s: %v", e.Kind, e.Filename, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
