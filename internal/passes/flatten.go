package passes

import (
	"quilbridge/internal/circuit"
)

// FlattenRegistersPass renames every unit into the default registers,
// q[0..n) and c[0..m), in sorted unit order. The rename maps from the
// most recent Apply are kept on the pass for callers that need to
// relate original unit names to flattened ones.
type FlattenRegistersPass struct {
	QubitMap map[circuit.Qubit]circuit.Qubit
	BitMap   map[circuit.Bit]circuit.Bit
}

// FlattenRegisters returns a fresh flattening pass.
func FlattenRegisters() *FlattenRegistersPass { return &FlattenRegistersPass{} }

func (p *FlattenRegistersPass) Name() string { return "FlattenRegisters" }

func (p *FlattenRegistersPass) Apply(c *circuit.Circuit) (bool, error) {
	qmap := make(map[circuit.Qubit]circuit.Qubit)
	changed := false
	for i, q := range c.Qubits() {
		to := circuit.Q(i)
		qmap[q] = to
		if q != to {
			changed = true
		}
	}
	bmap := make(map[circuit.Bit]circuit.Bit)
	for i, b := range c.Bits() {
		to := circuit.B(i)
		bmap[b] = to
		if b != to {
			changed = true
		}
	}
	p.QubitMap = qmap
	p.BitMap = bmap
	if !changed {
		return false, nil
	}
	if err := c.RenameUnits(qmap, bmap); err != nil {
		return false, err
	}
	return true, nil
}
