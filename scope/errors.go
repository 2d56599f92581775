package scope

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCyclicConfiguration is matched by every *CycleError.
var ErrCyclicConfiguration = errors.New("cyclical configuration chain")

// CycleError reports a parent chain that loops back on itself. The link
// that would have closed the loop is never committed.
type CycleError struct {
	// Chain lists the scopes from the child being linked up to and
	// including the first repeated scope.
	Chain []string

	nodes []NodeID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCyclicConfiguration, strings.Join(e.Chain, " -> "))
}

// Unwrap allows errors.Is(err, ErrCyclicConfiguration).
func (e *CycleError) Unwrap() error {
	return ErrCyclicConfiguration
}

// SourceError reports a directive source that could not be read.
type SourceError struct {
	// File is the configuration file that failed to load.
	File string
	// Err is the error returned by the DirectiveSource.
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("reading configuration %s: %v", e.File, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

func isSourceError(err error) bool {
	var serr *SourceError
	return errors.As(err, &serr)
}
