package domain

import (
	"sort"
	"strings"

	"quilbridge/internal/circuit"
)

// Result holds the output of one circuit execution. Shot backends fill
// Shots and Bits; state backends fill State and Qubits.
type Result struct {
	// Shots is the readout table, one row per shot. Column i holds the
	// value measured into Bits[i].
	Shots [][]int       `json:"shots,omitempty"`
	Bits  []circuit.Bit `json:"bits,omitempty"`

	// State is the final statevector. Qubits gives the interpretation
	// order of the amplitude indices, most significant qubit first.
	State  []complex128    `json:"-"`
	Qubits []circuit.Qubit `json:"qubits,omitempty"`
}

// EmptyResult returns a completed result with nShots rows and no
// readout columns, for circuits that measure nothing.
func EmptyResult(nShots int) *Result {
	return &Result{Shots: make([][]int, nShots)}
}

// NShots returns the number of recorded shots.
func (r *Result) NShots() int { return len(r.Shots) }

// bitstring renders one shot row, bit values in column order.
func bitstring(row []int) string {
	var sb strings.Builder
	for _, v := range row {
		if v == 0 {
			sb.WriteByte('0')
		} else {
			sb.WriteByte('1')
		}
	}
	return sb.String()
}

// Counts tallies shots by readout bitstring.
func (r *Result) Counts() map[string]int {
	out := make(map[string]int)
	for _, row := range r.Shots {
		out[bitstring(row)]++
	}
	return out
}

// DistinctShots returns the distinct readout rows in lexicographic
// order.
func (r *Result) DistinctShots() [][]int {
	seen := make(map[string][]int)
	for _, row := range r.Shots {
		key := bitstring(row)
		if _, ok := seen[key]; !ok {
			seen[key] = append([]int(nil), row...)
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][]int, len(keys))
	for i, k := range keys {
		out[i] = seen[k]
	}
	return out
}
