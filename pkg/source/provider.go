package source

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a named spec document does not exist in
// the provider's backing store. Callers report it as user input trouble,
// not as an infrastructure fault.
var ErrNotFound = errors.New("spec document not found")

// Provider supplies raw spec documents by name. Implementations are
// read-only: a provider never writes to its backing store.
type Provider interface {
	// Fetch returns the raw bytes of the named spec document.
	Fetch(ctx context.Context, name string) ([]byte, error)
}
