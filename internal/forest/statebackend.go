// internal/forest/statebackend.go
package forest

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"quilbridge/internal/circuit"
	"quilbridge/internal/convert"
	"quilbridge/internal/domain"
	"quilbridge/internal/passes"
	"quilbridge/internal/quil"
	"quilbridge/internal/qvm"
	"quilbridge/internal/sim"
)

var stateGates = []circuit.OpType{
	circuit.X,
	circuit.Y,
	circuit.Z,
	circuit.H,
	circuit.S,
	circuit.T,
	circuit.Rx,
	circuit.Ry,
	circuit.Rz,
	circuit.CZ,
	circuit.CX,
	circuit.CCX,
	circuit.CU1,
	circuit.U1,
	circuit.SWAP,
	circuit.Barrier,
}

// hermitianTolerance bounds the imaginary part an operator coefficient
// may carry before OperatorExpectation rejects it.
const hermitianTolerance = 1e-12

// StateBackend executes circuits on the wavefunction endpoint of qvmd
// and returns full statevectors. Execution is synchronous: handles are
// resolved at submission and do not outlive the process.
type StateBackend struct {
	client    *qvm.Client
	info      domain.BackendInfo
	maxQubits int

	mu    sync.Mutex
	cache map[string]*domain.Result
}

var _ domain.Backend = (*StateBackend)(nil)

// NewStateBackend builds a wavefunction backend over the given client.
func NewStateBackend(client *qvm.Client) *StateBackend {
	return &StateBackend{
		client:    client,
		info:      backendInfo("ForestStateBackend", "wavefunction-simulator", nil, stateGates),
		maxQubits: sim.DefaultMaxQubits,
		cache:     make(map[string]*domain.Result),
	}
}

func (b *StateBackend) Info() domain.BackendInfo { return b.info }

func (b *StateBackend) Capabilities() domain.Capabilities {
	return domain.Capabilities{State: true, Expectation: true}
}

func (b *StateBackend) RequiredPredicates() []circuit.Predicate {
	return []circuit.Predicate{
		circuit.NoClassicalControlPredicate{},
		circuit.NoFastFeedforwardPredicate{},
		circuit.NoMidMeasurePredicate{},
		circuit.NewGateSetPredicate(stateGates...),
		circuit.DefaultRegisterPredicate{},
		circuit.MaxNQubitsPredicate{Max: b.maxQubits},
	}
}

// DefaultCompilationPass flattens and rebases; levels above 0 add
// cleanup and rotation squashing. No placement or routing: the
// simulator has no coupling constraints. Levels outside 0..2 are
// clamped.
func (b *StateBackend) DefaultCompilationPass(level int) passes.Pass {
	seq := []passes.Pass{passes.FlattenRegisters()}
	if level >= 1 {
		seq = append(seq, passes.RemoveRedundancies())
	}
	seq = append(seq, passes.Rebase())
	if level >= 1 {
		seq = append(seq, passes.EulerAngleReduction())
	}
	if level >= 2 {
		seq = append(seq, passes.RemoveRedundancies())
	}
	return passes.Sequence(seq...)
}

// ProcessCircuits simulates each circuit immediately and caches the
// final statevector under a fresh handle. shots is ignored: a
// statevector has no shot count.
func (b *StateBackend) ProcessCircuits(ctx context.Context, circuits []*circuit.Circuit, shots []int, opts domain.ProcessOptions) ([]domain.ResultHandle, error) {
	if !opts.SkipValidCheck {
		for i, c := range circuits {
			if err := circuit.VerifyAll(c, b.RequiredPredicates()); err != nil {
				return nil, errors.Wrapf(err, "circuit %d", i)
			}
		}
	}

	handles := make([]domain.ResultHandle, len(circuits))
	for i, c := range circuits {
		res, err := b.runState(ctx, c)
		if err != nil {
			return nil, errors.Wrapf(err, "circuit %d", i)
		}
		h := domain.NewHandle()
		b.mu.Lock()
		b.cache[h.ID] = res
		b.mu.Unlock()
		handles[i] = h
	}
	return handles, nil
}

func (b *StateBackend) runState(ctx context.Context, c *circuit.Circuit) (*domain.Result, error) {
	p, err := convert.ToQuil(c, convert.Options{})
	if err != nil {
		return nil, err
	}
	// Gateless qubits never reach the program text. Pad with
	// identities so the statevector spans the circuit's full width.
	for _, q := range c.Qubits() {
		p.Add(quil.Gate{Name: "I", Qubits: []int{q.Index}})
	}

	amps, err := b.client.Wavefunction(ctx, p.Text())
	if err != nil {
		return nil, err
	}
	if phase := c.Phase(); phase != 0 {
		coeff := cmplx.Exp(complex(0, math.Pi*phase))
		for i := range amps {
			amps[i] *= coeff
		}
	}

	perm := c.ImplicitPermutation()
	qubits := append([]circuit.Qubit(nil), c.Qubits()...)
	sort.Slice(qubits, func(i, k int) bool { return qubits[k].Less(qubits[i]) })
	resQubits := make([]circuit.Qubit, len(qubits))
	for i, q := range qubits {
		to, ok := perm[q]
		if !ok {
			to = q
		}
		resQubits[i] = to
	}
	return &domain.Result{State: amps, Qubits: resQubits}, nil
}

// CircuitStatus reports COMPLETED for every known handle: state
// execution is synchronous, so a handle either has a result or was
// never produced by this backend.
func (b *StateBackend) CircuitStatus(ctx context.Context, handle domain.ResultHandle) (domain.CircuitStatus, error) {
	b.mu.Lock()
	_, ok := b.cache[handle.ID]
	b.mu.Unlock()
	if !ok {
		return domain.CircuitStatus{}, domain.CircuitNotRunError{Handle: handle}
	}
	return domain.CircuitStatus{Status: domain.StatusCompleted}, nil
}

func (b *StateBackend) Result(ctx context.Context, handle domain.ResultHandle) (*domain.Result, error) {
	b.mu.Lock()
	res, ok := b.cache[handle.ID]
	b.mu.Unlock()
	if !ok {
		return nil, domain.CircuitNotRunError{Handle: handle}
	}
	return res, nil
}

// PauliExpectation returns <psi|P|psi> where psi is the state prepared
// by the circuit and P is a Pauli string: character i acts on qubit i,
// drawn from I, X, Y and Z.
func (b *StateBackend) PauliExpectation(ctx context.Context, c *circuit.Circuit, pauli string) (float64, error) {
	op, err := pauliProgram(pauli)
	if err != nil {
		return 0, err
	}
	vals, err := b.expectation(ctx, c, []string{op})
	if err != nil {
		return 0, err
	}
	return vals[0], nil
}

// OperatorExpectation returns <psi|H|psi> for a Hermitian operator
// given as a linear combination of Pauli strings. Coefficients with an
// imaginary part are rejected.
func (b *StateBackend) OperatorExpectation(ctx context.Context, c *circuit.Circuit, operator map[string]complex128) (float64, error) {
	terms := make([]string, 0, len(operator))
	for pauli, coeff := range operator {
		if math.Abs(imag(coeff)) > hermitianTolerance {
			return 0, errors.Errorf("forest: operator term %q has imaginary coefficient %v; only Hermitian operators are supported", pauli, coeff)
		}
		terms = append(terms, pauli)
	}
	sort.Strings(terms)

	ops := make([]string, len(terms))
	for i, pauli := range terms {
		op, err := pauliProgram(pauli)
		if err != nil {
			return 0, err
		}
		ops[i] = op
	}
	vals, err := b.expectation(ctx, c, ops)
	if err != nil {
		return 0, err
	}
	var total float64
	for i, pauli := range terms {
		total += real(operator[pauli]) * vals[i]
	}
	return total, nil
}

func (b *StateBackend) expectation(ctx context.Context, c *circuit.Circuit, operators []string) ([]float64, error) {
	prep, err := convert.ToQuil(c, convert.Options{})
	if err != nil {
		return nil, err
	}
	return b.client.Expectation(ctx, prep.Text(), operators)
}

// pauliProgram renders a Pauli string as a gates-only Quil program.
// Identity positions emit nothing.
func pauliProgram(pauli string) (string, error) {
	var lines []string
	for i, ch := range pauli {
		switch ch {
		case 'I':
		case 'X', 'Y', 'Z':
			lines = append(lines, fmt.Sprintf("%c %d", ch, i))
		default:
			return "", errors.Errorf("forest: pauli string %q: %q at position %d is not one of I, X, Y, Z", pauli, string(ch), i)
		}
	}
	return strings.Join(lines, "\n"), nil
}
