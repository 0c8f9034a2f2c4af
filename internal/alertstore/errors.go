package alertstore

import "fmt"

// ValidationError reports a document that cannot be decoded into alerts:
// a required field is missing or a severity token is unknown.
type ValidationError struct {
	Field string
	Pos   int // 1-based position of the alert element in the document
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid alert %d: field %s: %s", e.Pos, e.Field, e.Msg)
	}
	return fmt.Sprintf("invalid alert document: %s", e.Msg)
}

// PersistenceError reports an I/O failure reading or writing the alert
// document file.
type PersistenceError struct {
	Op   string // "read", "write", "rename"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("alert document %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
