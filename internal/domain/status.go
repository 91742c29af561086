package domain

// Status is the lifecycle state of a submitted circuit.
type Status int

const (
	// StatusQueued means the circuit is accepted but not yet handed to
	// an executor.
	StatusQueued Status = iota
	// StatusSubmitted means the executor holds the job but has not
	// started running it.
	StatusSubmitted
	// StatusRunning means the job is executing.
	StatusRunning
	// StatusCompleted means results are available.
	StatusCompleted
	// StatusErrored means the job failed; see the status message.
	StatusErrored
	// StatusCancelled means the job was cancelled before completing.
	StatusCancelled
)

var statusNames = map[Status]string{
	StatusQueued:    "QUEUED",
	StatusSubmitted: "SUBMITTED",
	StatusRunning:   "RUNNING",
	StatusCompleted: "COMPLETED",
	StatusErrored:   "ERRORED",
	StatusCancelled: "CANCELLED",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Terminal reports whether the status can no longer change.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusErrored, StatusCancelled:
		return true
	}
	return false
}

// CircuitStatus pairs a Status with an optional backend message, such
// as the failure reason of an errored job.
type CircuitStatus struct {
	Status  Status
	Message string
}
