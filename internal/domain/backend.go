package domain

import (
	"context"
	"fmt"

	"quilbridge/internal/circuit"
	"quilbridge/internal/passes"
)

// ProcessOptions tune circuit submission.
type ProcessOptions struct {
	// SkipValidCheck submits circuits without verifying the backend's
	// required predicates first.
	SkipValidCheck bool
	// Seed makes the executor's sampling reproducible; zero means the
	// executor picks its own entropy.
	Seed int64
}

// Backend executes compiled circuits. Implementations decide whether
// execution is synchronous (results cached on submission) or deferred
// to an external job service.
type Backend interface {
	// Info describes the backend and its device.
	Info() BackendInfo

	// Capabilities states what the backend supports.
	Capabilities() Capabilities

	// RequiredPredicates lists the properties a circuit must satisfy to
	// be accepted.
	RequiredPredicates() []circuit.Predicate

	// DefaultCompilationPass returns a pass guaranteeing the required
	// predicates at the given optimisation level (0 to 2).
	DefaultCompilationPass(level int) passes.Pass

	// ProcessCircuits submits circuits for execution. shots holds a
	// per-circuit shot count: one entry per circuit, or a single entry
	// applied to all. It returns one handle per circuit, in order.
	ProcessCircuits(ctx context.Context, circuits []*circuit.Circuit, shots []int, opts ProcessOptions) ([]ResultHandle, error)

	// CircuitStatus reports the execution state of a handle.
	CircuitStatus(ctx context.Context, handle ResultHandle) (CircuitStatus, error)

	// Result fetches the result for a completed handle.
	Result(ctx context.Context, handle ResultHandle) (*Result, error)
}

// ShotsList expands per-circuit shot counts: a single value fans out
// to every circuit, otherwise one value per circuit is required.
func ShotsList(shots []int, nCircuits int) ([]int, error) {
	switch len(shots) {
	case 1:
		out := make([]int, nCircuits)
		for i := range out {
			out[i] = shots[0]
		}
		return out, nil
	case nCircuits:
		return shots, nil
	}
	return nil, fmt.Errorf("domain: %d shot counts for %d circuits", len(shots), nCircuits)
}
