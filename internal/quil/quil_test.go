// internal/quil/quil_test.go
package quil_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"quilbridge/internal/quil"
)

func TestProgram_Text_RendersWireSyntax(t *testing.T) {
	p := quil.NewProgram()
	p.Add(
		quil.Declare{Name: "ro", Type: "BIT", Size: 2},
		quil.Gate{Name: "H", Qubits: []int{0}},
		quil.Gate{Name: "RX", Params: []float64{math.Pi / 2}, Qubits: []int{1}},
		quil.Gate{Name: "CZ", Qubits: []int{0, 1}},
		quil.Fence{},
		quil.Measurement{Qubit: 0, Target: &quil.MemoryRef{Name: "ro", Index: 0}},
		quil.Measurement{Qubit: 1, Target: &quil.MemoryRef{Name: "ro", Index: 1}},
	)

	want := "DECLARE ro BIT[2]\n" +
		"H 0\n" +
		"RX(1.5707963267948966) 1\n" +
		"CZ 0 1\n" +
		"FENCE\n" +
		"MEASURE 0 ro[0]\n" +
		"MEASURE 1 ro[1]\n"
	require.Equal(t, want, p.Text())
}

func TestProgram_Qubits_SortedDistinct(t *testing.T) {
	p := quil.NewProgram()
	p.Add(
		quil.Gate{Name: "CZ", Qubits: []int{3, 1}},
		quil.Gate{Name: "X", Qubits: []int{1}},
		quil.Measurement{Qubit: 0},
	)

	require.Equal(t, []int{0, 1, 3}, p.Qubits())
}

func TestProgram_DeclaredSize(t *testing.T) {
	p := quil.NewProgram()
	p.Add(quil.Declare{Name: "ro", Type: "BIT", Size: 5})

	require.Equal(t, 5, p.DeclaredSize("ro"))
	require.Equal(t, 0, p.DeclaredSize("theta"))
}

func TestParse_RoundTrip(t *testing.T) {
	p := quil.NewProgram()
	p.Add(
		quil.Declare{Name: "ro", Type: "BIT", Size: 3},
		quil.Gate{Name: "RZ", Params: []float64{0.25}, Qubits: []int{0}},
		quil.Gate{Name: "CNOT", Qubits: []int{0, 2}},
		quil.Fence{Qubits: []int{0, 2}},
		quil.Reset{},
		quil.Measurement{Qubit: 2, Target: &quil.MemoryRef{Name: "ro", Index: 2}},
		quil.Halt{},
	)

	got, err := quil.Parse(p.Text())
	require.NoError(t, err)
	require.Equal(t, p.Instructions(), got.Instructions())
}

func TestParse_CommentsAndBlankLines(t *testing.T) {
	text := "# prepared by hand\n\nX 0  # flip\n\nMEASURE 0 ro[0]\n"

	p, err := quil.Parse(text)
	require.NoError(t, err)
	require.Equal(t, 2, p.Len())
	require.Equal(t, "X 0", p.Instructions()[0].Quil())
}

func TestParse_PiSpellings(t *testing.T) {
	p, err := quil.Parse("RX(pi) 0\nRZ(-pi/2) 0\nRY(0.5*pi) 1\n")
	require.NoError(t, err)

	gates := p.Instructions()
	require.InDelta(t, math.Pi, gates[0].(quil.Gate).Params[0], 1e-12)
	require.InDelta(t, -math.Pi/2, gates[1].(quil.Gate).Params[0], 1e-12)
	require.InDelta(t, math.Pi/2, gates[2].(quil.Gate).Params[0], 1e-12)
}

func TestParse_BadLines_Fail(t *testing.T) {
	for _, text := range []string{
		"RX(0.5 0",          // unbalanced parens
		"MEASURE zero ro[0]", // non-numeric qubit
		"DECLARE ro",         // missing type
		"123 0",              // invalid gate name
		"H",                  // gate without qubits
	} {
		_, err := quil.Parse(text)
		require.ErrorIs(t, err, quil.ErrSyntax, "input %q", text)
	}
}

func TestGatesOnly(t *testing.T) {
	ops := quil.NewProgram()
	ops.Add(quil.Gate{Name: "X", Qubits: []int{0}}, quil.Gate{Name: "Z", Qubits: []int{1}})
	require.True(t, ops.GatesOnly())

	ops.Add(quil.Measurement{Qubit: 0})
	require.False(t, ops.GatesOnly())
}
