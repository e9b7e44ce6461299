package collector

import (
	"errors"
	"fmt"

	"github.com/robotalks/tmon/pkg/link"
)

var (
	// ErrTimeout indicates no frame arrived before the deadline.
	ErrTimeout = link.ErrTimeout
	// ErrMissed indicates a node did not answer within the retry budget.
	ErrMissed = errors.New("node missed")
	// ErrNotReply indicates a valid frame which is not a REPLY.
	ErrNotReply = errors.New("not a reply")
)

// MissError describes a missed node.
type MissError struct {
	Address  byte
	Attempts int
	Last     error
}

// Error implements error.
func (e *MissError) Error() string {
	return fmt.Sprintf("addr %d: no reply after %d attempts: %v", e.Address, e.Attempts, e.Last)
}

// Is makes errors.Is(err, ErrMissed) true.
func (e *MissError) Is(target error) bool {
	return target == ErrMissed
}

// Unwrap returns the error of the last attempt.
func (e *MissError) Unwrap() error {
	return e.Last
}
