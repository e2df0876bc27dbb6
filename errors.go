package casecells

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingColumn is returned when a required column role cannot be found in the header.
	ErrMissingColumn = errors.New("missing required column")
	// ErrPersist is returned when the output workbook cannot be written.
	ErrPersist = errors.New("persist workbook")
	// ErrMissingKey is returned when a generation document lacks an expected field.
	ErrMissingKey = errors.New("missing key")
)

// MissingColumnError reports a required role with no matching header.
type MissingColumnError struct {
	Role     Role
	Keywords []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: %s (keywords %s)", ErrMissingColumn, e.Role, strings.Join(e.Keywords, ", "))
}

func (e *MissingColumnError) Unwrap() error { return ErrMissingColumn }

// PersistError reports a failure while writing the output file.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrPersist, e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *PersistError) Unwrap() []error { return []error{ErrPersist, e.Err} }

// MissingKeyError reports a generation document field that is absent.
// Path uses gjson syntax, e.g. "business_functions.0.scenarios.2.priority".
type MissingKeyError struct {
	Path string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingKey, e.Path)
}

func (e *MissingKeyError) Unwrap() error { return ErrMissingKey }
