package judge

import "fmt"

// InvariantError is a programming fault found while advancing, the tick
// that found it is abandoned.
type InvariantError struct {
	Serial int
	Index  int
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("judge invariant violated by note %d (index %d): %s", e.Serial, e.Index, e.Reason)
}
