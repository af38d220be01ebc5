package shortener

import "errors"

var (
	// ErrNotFound is returned by a DocumentStore when a ref or path does not exist.
	ErrNotFound = errors.New("not found")

	// ErrRefConflict is returned by a DocumentStore when a ref no longer points at the expected commit.
	ErrRefConflict = errors.New("ref has moved")
)

// Mutation error taxonomy. Callers match these with errors.Is; the full wrapped
// message is what the user sees.
var (
	ErrMalformedDocument      = errors.New("malformed shortlink document")
	ErrAliasConflict          = errors.New("alias conflict")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrNetworkFailure         = errors.New("document store unavailable")
	ErrInvalidInput           = errors.New("invalid input")
)
