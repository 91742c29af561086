package convert

import (
	"math"
	"sort"

	"quilbridge/internal/circuit"
	"quilbridge/internal/quil"
)

// Options tune circuit-to-Quil conversion.
type Options struct {
	// ActiveReset prepends a global RESET so the executor starts from
	// |0..0> without waiting for passive decay.
	ActiveReset bool
}

// ToQuil converts a circuit to a Quil program.
func ToQuil(c *circuit.Circuit, opts Options) (*quil.Program, error) {
	p, _, err := ToQuilWithBits(c, opts)
	return p, err
}

// ToQuilWithBits converts a circuit to a Quil program and returns the
// bits written by measurements, sorted. The readout region is declared
// at the circuit's full bit width, so result tables must be filtered
// down to the returned bits.
func ToQuilWithBits(c *circuit.Circuit, opts Options) (*quil.Program, []circuit.Bit, error) {
	if err := checkSingleRegisters(c); err != nil {
		return nil, nil, err
	}

	p := quil.NewProgram()
	if opts.ActiveReset {
		p.Add(quil.Reset{})
	}
	if n := roSize(c); n > 0 {
		p.Add(quil.Declare{Name: "ro", Type: "BIT", Size: n})
	}

	used := make(map[circuit.Bit]struct{})
	for _, cmd := range c.Commands() {
		if cmd.Condition != nil {
			return nil, nil, unsupportedf("cannot convert classically conditioned %s to Quil", cmd.Op)
		}
		switch cmd.Op {
		case circuit.Measure:
			q, b := cmd.Qubits[0], cmd.Bits[0]
			p.Add(quil.Measurement{
				Qubit:  q.Index,
				Target: &quil.MemoryRef{Name: "ro", Index: b.Index},
			})
			used[b] = struct{}{}
		case circuit.Barrier:
			qs := make([]int, len(cmd.Qubits))
			for i, q := range cmd.Qubits {
				qs[i] = q.Index
			}
			sort.Ints(qs)
			p.Add(quil.Fence{Qubits: qs})
		case circuit.Reset:
			q := cmd.Qubits[0].Index
			p.Add(quil.Reset{Qubit: &q})
		case circuit.Noop:
			// nothing to emit
		default:
			name, ok := quilNames[cmd.Op]
			if !ok {
				return nil, nil, unsupportedf("cannot convert op %s to Quil", cmd.Op)
			}
			g := quil.Gate{Name: name}
			if len(cmd.Params) > 0 {
				g.Params = make([]float64, len(cmd.Params))
				for i, halfTurns := range cmd.Params {
					g.Params[i] = halfTurns * math.Pi
				}
			}
			g.Qubits = make([]int, len(cmd.Qubits))
			for i, q := range cmd.Qubits {
				g.Qubits[i] = q.Index
			}
			p.Add(g)
		}
	}

	bits := make([]circuit.Bit, 0, len(used))
	for b := range used {
		bits = append(bits, b)
	}
	sort.Slice(bits, func(i, j int) bool { return bits[i].Less(bits[j]) })
	return p, bits, nil
}

// checkSingleRegisters rejects circuits whose qubits or bits span more
// than one register: Quil addresses qubits by bare index, so register
// names cannot survive.
func checkSingleRegisters(c *circuit.Circuit) error {
	qregs := make(map[string]struct{})
	for _, q := range c.Qubits() {
		qregs[q.Register] = struct{}{}
	}
	if len(qregs) > 1 {
		return unsupportedf("cannot convert circuit with %d qubit registers", len(qregs))
	}
	bregs := make(map[string]struct{})
	for _, b := range c.Bits() {
		bregs[b.Register] = struct{}{}
	}
	if len(bregs) > 1 {
		return unsupportedf("cannot convert circuit with %d bit registers", len(bregs))
	}
	return nil
}

// roSize is the declared width of the readout region: one past the
// highest bit index, regardless of which bits are measured.
func roSize(c *circuit.Circuit) int {
	max := 0
	for _, b := range c.Bits() {
		if b.Index+1 > max {
			max = b.Index + 1
		}
	}
	return max
}
