package domain

import (
	"errors"
	"fmt"
)

// ErrJobStatusUnavailable is returned when the executor reports a job
// status this package has no mapping for.
var ErrJobStatusUnavailable = errors.New("the job status cannot be retrieved")

// CircuitNotRunError reports a handle that does not correspond to any
// submitted circuit.
type CircuitNotRunError struct {
	Handle ResultHandle
}

func (e CircuitNotRunError) Error() string {
	return fmt.Sprintf("circuit for handle %s has not been run", e.Handle)
}
