package audit

import (
	"errors"
	"fmt"
)

// ErrChainIntegrity is the sentinel wrapped by all chain verification
// failures. It is fatal to the report command and is never silently
// repaired.
var ErrChainIntegrity = errors.New("chain integrity violation")

// IntegrityError describes one broken link in the hash chain.
type IntegrityError struct {
	// Seq is the 1-based position of the offending report.
	Seq int

	// Path is the chain record file.
	Path string

	// Reason describes the mismatch.
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("chain entry %d (%s): %s", e.Seq, e.Path, e.Reason)
}

func (e *IntegrityError) Unwrap() error {
	return ErrChainIntegrity
}
