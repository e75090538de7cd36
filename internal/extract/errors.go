package extract

import "errors"

// Error taxonomy. Only ErrInvalidRepository is fatal to a whole request;
// every other condition degrades to a recorded warning or note so callers
// always receive a usable result when at least one file matches a pattern.
var (
	// ErrInvalidRepository reports a malformed repository identity.
	ErrInvalidRepository = errors.New("invalid repository reference")

	// ErrNoFiles reports that no input file matched any include pattern.
	ErrNoFiles = errors.New("no files matched the include patterns")
)

// errDegenerateSkeleton is the internal fallback trigger; it is recorded as
// a fallback reason, never surfaced as an error.
type errDegenerateSkeleton struct {
	reason string
}

func (e errDegenerateSkeleton) Error() string { return e.reason }
