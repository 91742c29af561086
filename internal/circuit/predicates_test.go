// internal/circuit/predicates_test.go
package circuit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"quilbridge/internal/circuit"
)

func TestGateSetPredicate_OK(t *testing.T) {
	c := circuit.New(2, 1)
	require.NoError(t, c.Rz(0.5, 0))
	require.NoError(t, c.CZ(0, 1))
	require.NoError(t, c.Measure(0, 0))

	p := circuit.NewGateSetPredicate(circuit.Rx, circuit.Rz, circuit.CZ, circuit.Measure, circuit.Barrier)
	require.NoError(t, p.Verify(c))
}

func TestGateSetPredicate_RejectsForeignOp(t *testing.T) {
	c := circuit.New(1, 0)
	require.NoError(t, c.H(0))

	p := circuit.NewGateSetPredicate(circuit.Rx, circuit.Rz, circuit.CZ)
	err := p.Verify(c)
	require.Error(t, err)
	require.Contains(t, err.Error(), "H")
}

func TestNoClassicalControlPredicate(t *testing.T) {
	c := circuit.New(1, 1)
	require.NoError(t, c.AddConditional(
		circuit.Command{Op: circuit.X, Qubits: []circuit.Qubit{circuit.Q(0)}},
		circuit.B(0), 1,
	))

	err := circuit.NoClassicalControlPredicate{}.Verify(c)
	require.Error(t, err)

	plain := circuit.New(1, 0)
	require.NoError(t, plain.X(0))
	require.NoError(t, circuit.NoClassicalControlPredicate{}.Verify(plain))
}

func TestNoFastFeedforwardPredicate(t *testing.T) {
	// Conditioning on a bit before it is measured is allowed.
	ok := circuit.New(1, 1)
	require.NoError(t, ok.AddConditional(
		circuit.Command{Op: circuit.X, Qubits: []circuit.Qubit{circuit.Q(0)}},
		circuit.B(0), 1,
	))
	require.NoError(t, ok.Measure(0, 0))
	require.NoError(t, circuit.NoFastFeedforwardPredicate{}.Verify(ok))

	// Conditioning on a measured bit is feedforward.
	bad := circuit.New(2, 1)
	require.NoError(t, bad.Measure(0, 0))
	require.NoError(t, bad.AddConditional(
		circuit.Command{Op: circuit.X, Qubits: []circuit.Qubit{circuit.Q(1)}},
		circuit.B(0), 1,
	))
	require.Error(t, circuit.NoFastFeedforwardPredicate{}.Verify(bad))
}

func TestNoMidMeasurePredicate(t *testing.T) {
	bad := circuit.New(1, 1)
	require.NoError(t, bad.Measure(0, 0))
	require.NoError(t, bad.X(0))
	require.Error(t, circuit.NoMidMeasurePredicate{}.Verify(bad))

	// Barriers after a measurement are fine.
	ok := circuit.New(1, 1)
	require.NoError(t, ok.X(0))
	require.NoError(t, ok.Measure(0, 0))
	require.NoError(t, ok.AddBarrier())
	require.NoError(t, circuit.NoMidMeasurePredicate{}.Verify(ok))
}

func TestMaxNQubitsPredicate(t *testing.T) {
	c := circuit.New(5, 0)

	require.NoError(t, circuit.MaxNQubitsPredicate{Max: 5}.Verify(c))
	require.Error(t, circuit.MaxNQubitsPredicate{Max: 4}.Verify(c))
}

func TestDefaultRegisterPredicate(t *testing.T) {
	ok := circuit.New(2, 1)
	require.NoError(t, circuit.DefaultRegisterPredicate{}.Verify(ok))

	named := circuit.New(1, 0)
	require.NoError(t, named.AddQubit(circuit.Qubit{Register: "node", Index: 3}))
	require.Error(t, circuit.DefaultRegisterPredicate{}.Verify(named))

	gapped := circuit.New(0, 0)
	require.NoError(t, gapped.AddQubit(circuit.Q(1)))
	require.Error(t, circuit.DefaultRegisterPredicate{}.Verify(gapped))
}

func TestVerifyAll_NamesFailingPredicate(t *testing.T) {
	c := circuit.New(1, 1)
	require.NoError(t, c.Measure(0, 0))
	require.NoError(t, c.X(0))

	err := circuit.VerifyAll(c, []circuit.Predicate{
		circuit.NoClassicalControlPredicate{},
		circuit.NoMidMeasurePredicate{},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "NoMidMeasure")
}
