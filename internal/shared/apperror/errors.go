// Package apperror defines the error kinds shared by every feature.
// Feature-level sentinels wrap one of these kinds so transport adapters can
// classify failures with errors.Is without knowing each feature's errors.
package apperror

import "errors"

var (
	// ErrConflict indicates a uniqueness violation (for example, an email that is already registered).
	ErrConflict = errors.New("conflict")

	// ErrUnauthenticated indicates bad credentials or a missing, invalid or expired token.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound indicates that a resource does not exist or is not visible to the requesting principal.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed identifiers or missing required fields.
	ErrInvalidInput = errors.New("invalid input")
)

// kindError carries a user-facing message while matching its kind under errors.Is.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// New returns an error with the given message that matches kind under errors.Is.
func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Kind returns the error kind wrapped by err, or nil when err is not classified.
func Kind(err error) error {
	for _, kind := range []error{ErrConflict, ErrUnauthenticated, ErrNotFound, ErrInvalidInput} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
