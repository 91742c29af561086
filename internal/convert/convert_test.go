// internal/convert/convert_test.go
package convert_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"quilbridge/internal/circuit"
	"quilbridge/internal/convert"
	"quilbridge/internal/quil"
)

func bellCircuit(t *testing.T) *circuit.Circuit {
	t.Helper()
	c := circuit.New(2, 2)
	require.NoError(t, c.H(0))
	require.NoError(t, c.CX(0, 1))
	require.NoError(t, c.Measure(0, 0))
	require.NoError(t, c.Measure(1, 1))
	return c
}

func TestToQuil_Bell(t *testing.T) {
	p, err := convert.ToQuil(bellCircuit(t), convert.Options{})
	require.NoError(t, err)

	want := "DECLARE ro BIT[2]\n" +
		"H 0\n" +
		"CNOT 0 1\n" +
		"MEASURE 0 ro[0]\n" +
		"MEASURE 1 ro[1]\n"
	require.Equal(t, want, p.Text())
}

func TestToQuil_ActiveReset_Prepended(t *testing.T) {
	p, err := convert.ToQuil(bellCircuit(t), convert.Options{ActiveReset: true})
	require.NoError(t, err)
	require.Equal(t, "RESET", p.Instructions()[0].Quil())
}

func TestToQuilWithBits_ReportsMeasuredBitsOnly(t *testing.T) {
	c := circuit.New(2, 4)
	require.NoError(t, c.H(0))
	require.NoError(t, c.Measure(0, 3))

	p, bits, err := convert.ToQuilWithBits(c, convert.Options{})
	require.NoError(t, err)

	require.Len(t, bits, 1)
	require.Equal(t, "c[3]", bits[0].String())
	// Readout is declared at full register width.
	require.Equal(t, 4, p.DeclaredSize("ro"))
}

func TestToQuil_AnglesBecomeRadians(t *testing.T) {
	c := circuit.New(1, 0)
	require.NoError(t, c.Rx(0.5, 0))

	p, err := convert.ToQuil(c, convert.Options{})
	require.NoError(t, err)
	require.Equal(t, "RX(1.5707963267948966) 0\n", p.Text())
}

func TestToQuil_BarrierBecomesFence(t *testing.T) {
	c := circuit.New(3, 0)
	require.NoError(t, c.AddBarrier(circuit.Q(2), circuit.Q(0)))

	p, err := convert.ToQuil(c, convert.Options{})
	require.NoError(t, err)
	require.Equal(t, "FENCE 0 2\n", p.Text())
}

func TestToQuil_ConditionalGate_Unsupported(t *testing.T) {
	c := circuit.New(1, 1)
	require.NoError(t, c.AddConditional(
		circuit.Command{Op: circuit.X, Qubits: []circuit.Qubit{circuit.Q(0)}},
		circuit.B(0), 1,
	))

	_, err := convert.ToQuil(c, convert.Options{})
	var unsupported *convert.UnsupportedError
	require.ErrorAs(t, err, &unsupported)
}

func TestToQuil_OpWithoutQuilSpelling_Unsupported(t *testing.T) {
	c := circuit.New(2, 0)
	require.NoError(t, c.CY(0, 1))

	_, err := convert.ToQuil(c, convert.Options{})
	var unsupported *convert.UnsupportedError
	require.ErrorAs(t, err, &unsupported)
	require.Contains(t, err.Error(), "CY")
}

func TestToQuil_MultipleQubitRegisters_Unsupported(t *testing.T) {
	c := circuit.New(1, 0)
	require.NoError(t, c.AddQubit(circuit.Qubit{Register: "anc", Index: 0}))

	_, err := convert.ToQuil(c, convert.Options{})
	var unsupported *convert.UnsupportedError
	require.ErrorAs(t, err, &unsupported)
}

func TestToCircuit_ParsedProgram(t *testing.T) {
	p, err := quil.Parse(
		"DECLARE ro BIT[2]\n" +
			"H 0\n" +
			"RZ(pi/2) 1\n" +
			"CNOT 0 1\n" +
			"MEASURE 0 ro[0]\n" +
			"MEASURE 1 ro[1]\n",
	)
	require.NoError(t, err)

	c, err := convert.ToCircuit(p)
	require.NoError(t, err)

	require.Equal(t, 2, c.NQubits())
	require.Equal(t, 2, c.NBits())

	cmds := c.Commands()
	require.Equal(t, circuit.H, cmds[0].Op)
	require.Equal(t, circuit.Rz, cmds[1].Op)
	require.InDelta(t, 0.5, cmds[1].Params[0], 1e-12)
	require.Equal(t, circuit.CX, cmds[2].Op)
	require.Equal(t, circuit.Measure, cmds[3].Op)
	require.Equal(t, "ro[0]", cmds[3].Bits[0].String())
}

func TestToCircuit_DropsPrologueAndPragmas_HaltStops(t *testing.T) {
	p, err := quil.Parse(
		"RESET\n" +
			"PRAGMA INITIAL_REWIRING \"NAIVE\"\n" +
			"X 0\n" +
			"HALT\n" +
			"Y 0\n",
	)
	require.NoError(t, err)

	c, err := convert.ToCircuit(p)
	require.NoError(t, err)

	cmds := c.Commands()
	require.Len(t, cmds, 1)
	require.Equal(t, circuit.X, cmds[0].Op)
}

func TestToCircuit_UnknownGate_Unsupported(t *testing.T) {
	p, err := quil.Parse("XY(pi) 0 1\n")
	require.NoError(t, err)

	_, err = convert.ToCircuit(p)
	var unsupported *convert.UnsupportedError
	require.ErrorAs(t, err, &unsupported)
}

func TestToCircuit_NonBitRegion_Unsupported(t *testing.T) {
	p := quil.NewProgram()
	p.Add(quil.Declare{Name: "theta", Type: "REAL", Size: 1})

	_, err := convert.ToCircuit(p)
	var unsupported *convert.UnsupportedError
	require.ErrorAs(t, err, &unsupported)
}

func TestToCircuit_MeasureWithoutTarget_Unsupported(t *testing.T) {
	p := quil.NewProgram()
	p.Add(quil.Measurement{Qubit: 0})

	_, err := convert.ToCircuit(p)
	var unsupported *convert.UnsupportedError
	require.ErrorAs(t, err, &unsupported)
}

func TestRoundTrip_PreservesStructure(t *testing.T) {
	c := circuit.New(3, 3)
	require.NoError(t, c.Rz(0.75, 0))
	require.NoError(t, c.Rx(1.25, 1))
	require.NoError(t, c.CZ(0, 1))
	require.NoError(t, c.ISWAP(1, 2))
	require.NoError(t, c.Measure(2, 2))

	p, err := convert.ToQuil(c, convert.Options{})
	require.NoError(t, err)

	back, err := convert.ToCircuit(p)
	require.NoError(t, err)

	want := c.Commands()
	got := back.Commands()
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, want[i].Op, got[i].Op, "command %d", i)
		require.Equal(t, len(want[i].Qubits), len(got[i].Qubits))
		for j := range want[i].Qubits {
			require.Equal(t, want[i].Qubits[j].Index, got[i].Qubits[j].Index)
		}
		require.Len(t, got[i].Params, len(want[i].Params))
		for j := range want[i].Params {
			require.InDelta(t, want[i].Params[j], got[i].Params[j], 1e-12)
		}
	}
}
