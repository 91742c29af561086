package convert

import (
	"math"

	"quilbridge/internal/circuit"
	"quilbridge/internal/quil"
)

// ToCircuit converts a Quil program back to a circuit. Qubit indices
// are preserved in the default register; declared BIT regions become
// bit registers under their declared names. A leading global RESET is
// treated as the active-reset prologue and dropped; HALT stops
// conversion.
func ToCircuit(p *quil.Program) (*circuit.Circuit, error) {
	c := circuit.New(0, 0)
	for _, q := range p.Qubits() {
		if err := c.AddQubit(circuit.Q(q)); err != nil {
			return nil, err
		}
	}

	for _, ins := range p.Instructions() {
		switch v := ins.(type) {
		case quil.Declare:
			if v.Type != "BIT" {
				return nil, unsupportedf("cannot convert %s memory region %s", v.Type, v.Name)
			}
			if err := c.AddBitRegister(v.Name, v.Size); err != nil {
				return nil, err
			}
		case quil.Gate:
			op, ok := opsByQuilName[v.Name]
			if !ok {
				return nil, unsupportedf("cannot convert Quil gate %s", v.Name)
			}
			cmd := circuit.Command{Op: op}
			if len(v.Params) > 0 {
				cmd.Params = make([]float64, len(v.Params))
				for i, radians := range v.Params {
					cmd.Params[i] = radians / math.Pi
				}
			}
			cmd.Qubits = make([]circuit.Qubit, len(v.Qubits))
			for i, q := range v.Qubits {
				cmd.Qubits[i] = circuit.Q(q)
			}
			if err := c.Append(cmd); err != nil {
				return nil, err
			}
		case quil.Measurement:
			if v.Target == nil {
				return nil, unsupportedf("cannot convert measurement without a target")
			}
			cmd := circuit.Command{
				Op:     circuit.Measure,
				Qubits: []circuit.Qubit{circuit.Q(v.Qubit)},
				Bits:   []circuit.Bit{{Register: v.Target.Name, Index: v.Target.Index}},
			}
			if err := c.Append(cmd); err != nil {
				return nil, err
			}
		case quil.Fence:
			qs := make([]circuit.Qubit, len(v.Qubits))
			for i, q := range v.Qubits {
				qs[i] = circuit.Q(q)
			}
			if err := c.AddBarrier(qs...); err != nil {
				return nil, err
			}
		case quil.Reset:
			if v.Qubit == nil {
				// Active-reset prologue.
				continue
			}
			if err := c.AddGate(circuit.Reset, circuit.Q(*v.Qubit)); err != nil {
				return nil, err
			}
		case quil.Halt:
			return c, nil
		case quil.Pragma:
			// directives do not affect circuit semantics
		default:
			return nil, unsupportedf("cannot convert Quil instruction %q", ins.Quil())
		}
	}
	return c, nil
}
