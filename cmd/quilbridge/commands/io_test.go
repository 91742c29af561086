// cmd/quilbridge/commands/io_test.go
package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"quilbridge/internal/circuit"
)

func TestParseOperator_AccumulatesAndUppercases(t *testing.T) {
	op, err := parseOperator("zz:0.5, IZ:-1,ZZ:0.25")
	require.NoError(t, err)
	require.Equal(t, map[string]complex128{"ZZ": 0.75, "IZ": -1}, op)
}

func TestParseOperator_RejectsMalformedTerms(t *testing.T) {
	for _, bad := range []string{"", "ZZ", "ZZ:abc", ","} {
		_, err := parseOperator(bad)
		require.Error(t, err, "input %q", bad)
	}
}

func TestCircuitFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := circuit.New(2, 2)
	require.NoError(t, c.H(0))
	require.NoError(t, c.CX(0, 1))
	require.NoError(t, c.MeasureAll())

	jsonPath := filepath.Join(dir, "bell.json")
	require.NoError(t, writeCircuit(c, jsonPath))
	loaded, err := loadCircuit(jsonPath)
	require.NoError(t, err)
	require.Equal(t, c.Commands(), loaded.Commands())
	require.Equal(t, c.NQubits(), loaded.NQubits())

	quilPath := filepath.Join(dir, "bell.quil")
	require.NoError(t, writeCircuit(c, quilPath))
	fromQuil, err := loadCircuit(quilPath)
	require.NoError(t, err)
	require.Equal(t, 2, fromQuil.NQubits())
	require.Equal(t, 2, fromQuil.NGatesOf(circuit.Measure))
}

func TestLoadCircuit_MissingFileFails(t *testing.T) {
	_, err := loadCircuit(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
