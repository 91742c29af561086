// internal/circuit/circuit_test.go
package circuit_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"quilbridge/internal/circuit"
)

func TestNew_Counts_OK(t *testing.T) {
	c := circuit.New(3, 2)

	require.Equal(t, 3, c.NQubits())
	require.Equal(t, 2, c.NBits())
	require.Equal(t, 0, c.NCommands())

	qs := c.Qubits()
	require.Len(t, qs, 3)
	require.Equal(t, "q[0]", qs[0].String())
	require.Equal(t, "q[2]", qs[2].String())
}

func TestAddGate_UnknownQubit_Fails(t *testing.T) {
	c := circuit.New(1, 0)

	err := c.H(1)
	require.ErrorIs(t, err, circuit.ErrUnknownUnit)
}

func TestAddGate_WrongArity_Fails(t *testing.T) {
	c := circuit.New(2, 0)

	err := c.AddGate(circuit.CX, circuit.Q(0))
	require.ErrorIs(t, err, circuit.ErrArityMismatch)
}

func TestAddRotation_WrongParams_Fails(t *testing.T) {
	c := circuit.New(1, 0)

	err := c.AddRotation(circuit.Rx, nil, circuit.Q(0))
	require.ErrorIs(t, err, circuit.ErrParamMismatch)

	err = c.AddRotation(circuit.H, []float64{0.5}, circuit.Q(0))
	require.ErrorIs(t, err, circuit.ErrParamMismatch)
}

func TestAddGate_RepeatedQubit_Fails(t *testing.T) {
	c := circuit.New(2, 0)

	err := c.AddGate(circuit.CX, circuit.Q(0), circuit.Q(0))
	require.ErrorIs(t, err, circuit.ErrDuplicateUnit)
}

func TestMeasureAll_AddsBits(t *testing.T) {
	c := circuit.New(3, 0)
	require.NoError(t, c.MeasureAll())

	require.Equal(t, 3, c.NBits())
	require.Equal(t, 3, c.NGatesOf(circuit.Measure))
	require.Len(t, c.UsedBits(), 3)
}

func TestUsedBits_OnlyMeasuredBits(t *testing.T) {
	c := circuit.New(2, 4)
	require.NoError(t, c.H(0))
	require.NoError(t, c.Measure(0, 2))

	used := c.UsedBits()
	require.Len(t, used, 1)
	require.Equal(t, "c[2]", used[0].String())
}

func TestDepth_IgnoresBarriers(t *testing.T) {
	c := circuit.New(2, 0)
	require.NoError(t, c.H(0))
	require.NoError(t, c.H(1))
	require.NoError(t, c.AddBarrier())
	require.NoError(t, c.CX(0, 1))
	require.NoError(t, c.Rz(0.25, 1))

	require.Equal(t, 3, c.Depth())
}

func TestAddPhase_NormalisesToTwoHalfTurns(t *testing.T) {
	c := circuit.New(1, 0)

	c.AddPhase(1.5)
	c.AddPhase(1.0)
	require.InDelta(t, 0.5, c.Phase(), 1e-12)

	c.AddPhase(-1.25)
	require.InDelta(t, 1.25, c.Phase(), 1e-12)
}

func TestClone_Independent(t *testing.T) {
	c := circuit.New(2, 1)
	require.NoError(t, c.H(0))
	require.NoError(t, c.Measure(0, 0))

	dup := c.Clone()
	require.NoError(t, dup.CX(0, 1))
	dup.AddPhase(0.5)

	require.Equal(t, 2, c.NCommands())
	require.Equal(t, 3, dup.NCommands())
	require.InDelta(t, 0.0, c.Phase(), 1e-12)
}

func TestRenameUnits_RewritesCommands(t *testing.T) {
	c := circuit.New(2, 1)
	require.NoError(t, c.CX(0, 1))
	require.NoError(t, c.Measure(1, 0))

	err := c.RenameUnits(
		map[circuit.Qubit]circuit.Qubit{
			circuit.Q(0): {Register: "node", Index: 5},
			circuit.Q(1): {Register: "node", Index: 7},
		},
		nil,
	)
	require.NoError(t, err)

	cmds := c.Commands()
	require.Equal(t, "node[5]", cmds[0].Qubits[0].String())
	require.Equal(t, "node[7]", cmds[0].Qubits[1].String())
	require.Equal(t, "node[7]", cmds[1].Qubits[0].String())
	require.False(t, c.HasQubit(circuit.Q(0)))
}

func TestRenameUnits_Collision_Fails(t *testing.T) {
	c := circuit.New(2, 0)

	err := c.RenameUnits(map[circuit.Qubit]circuit.Qubit{circuit.Q(0): circuit.Q(1)}, nil)
	require.ErrorIs(t, err, circuit.ErrDuplicateUnit)
}

func TestImplicitPermutation_DefaultsToIdentity(t *testing.T) {
	c := circuit.New(2, 0)

	perm := c.ImplicitPermutation()
	require.Equal(t, circuit.Q(0), perm[circuit.Q(0)])
	require.Equal(t, circuit.Q(1), perm[circuit.Q(1)])

	require.NoError(t, c.SetImplicitPermutation(map[circuit.Qubit]circuit.Qubit{
		circuit.Q(0): circuit.Q(1),
		circuit.Q(1): circuit.Q(0),
	}))
	perm = c.ImplicitPermutation()
	require.Equal(t, circuit.Q(1), perm[circuit.Q(0)])
}

func TestJSON_RoundTrip(t *testing.T) {
	c := circuit.New(2, 2)
	c.SetName("bell")
	require.NoError(t, c.H(0))
	require.NoError(t, c.CX(0, 1))
	require.NoError(t, c.Rz(0.75, 1))
	require.NoError(t, c.Measure(0, 0))
	require.NoError(t, c.Measure(1, 1))
	c.AddPhase(0.25)
	require.NoError(t, c.SetImplicitPermutation(map[circuit.Qubit]circuit.Qubit{
		circuit.Q(0): circuit.Q(1),
		circuit.Q(1): circuit.Q(0),
	}))

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var got circuit.Circuit
	require.NoError(t, json.Unmarshal(data, &got))

	require.Equal(t, "bell", got.Name())
	require.InDelta(t, c.Phase(), got.Phase(), 1e-12)
	require.Equal(t, c.NQubits(), got.NQubits())
	require.Equal(t, c.Commands(), got.Commands())
	require.Equal(t, c.ImplicitPermutation(), got.ImplicitPermutation())
}

func TestJSON_UnknownOp_Fails(t *testing.T) {
	var got circuit.Circuit
	err := json.Unmarshal([]byte(`{"qubits":[],"bits":[],"commands":[{"op":"Frobnicate","qubits":[]}]}`), &got)
	require.Error(t, err)
}

func TestConditional_RendersAndClones(t *testing.T) {
	c := circuit.New(1, 1)
	cmd := circuit.Command{Op: circuit.X, Qubits: []circuit.Qubit{circuit.Q(0)}}
	require.NoError(t, c.AddConditional(cmd, circuit.B(0), 1))

	cmds := c.Commands()
	require.NotNil(t, cmds[0].Condition)
	require.Equal(t, 1, cmds[0].Condition.Value)
	require.Equal(t, "X q[0] if c[0]==1", cmds[0].String())
}

func TestReplaceCommands_Validates(t *testing.T) {
	c := circuit.New(1, 0)
	require.NoError(t, c.H(0))

	err := c.ReplaceCommands([]circuit.Command{
		{Op: circuit.CX, Qubits: []circuit.Qubit{circuit.Q(0), circuit.Q(1)}},
	})
	require.ErrorIs(t, err, circuit.ErrUnknownUnit)
	require.Equal(t, 1, c.NCommands())

	require.NoError(t, c.ReplaceCommands([]circuit.Command{
		{Op: circuit.Rx, Params: []float64{0.5}, Qubits: []circuit.Qubit{circuit.Q(0)}},
	}))
	require.Equal(t, circuit.Rx, c.Commands()[0].Op)
}

func TestParseOpType_RoundTrip(t *testing.T) {
	for _, op := range []circuit.OpType{circuit.H, circuit.Rx, circuit.CCX, circuit.Measure, circuit.Barrier} {
		got, err := circuit.ParseOpType(op.String())
		require.NoError(t, err)
		require.Equal(t, op, got)
	}

	_, err := circuit.ParseOpType("NotAGate")
	require.Error(t, err)
}
