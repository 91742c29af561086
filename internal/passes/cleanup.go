package passes

import (
	"quilbridge/internal/circuit"
)

// RemoveRedundanciesPass drops zero-angle rotations, merges rotations
// that are adjacent on their qubits, and cancels adjacent self-inverse
// gate pairs. It iterates to a fixpoint.
type RemoveRedundanciesPass struct{}

// RemoveRedundancies returns the cleanup pass.
func RemoveRedundancies() *RemoveRedundanciesPass { return &RemoveRedundanciesPass{} }

func (*RemoveRedundanciesPass) Name() string { return "RemoveRedundancies" }

// selfInverse lists the gates that square to the identity.
var selfInverse = map[circuit.OpType]struct{}{
	circuit.H:     {},
	circuit.X:     {},
	circuit.Y:     {},
	circuit.Z:     {},
	circuit.CX:    {},
	circuit.CY:    {},
	circuit.CZ:    {},
	circuit.SWAP:  {},
	circuit.CCX:   {},
	circuit.CSWAP: {},
}

// symmetricOps act identically under qubit-argument reversal.
var symmetricOps = map[circuit.OpType]struct{}{
	circuit.CZ:    {},
	circuit.SWAP:  {},
	circuit.ISWAP: {},
	circuit.CU1:   {},
}

func (*RemoveRedundanciesPass) Apply(c *circuit.Circuit) (bool, error) {
	changed := false
	cmds := c.Commands()
	phase := 0.0
	for {
		next, ph, ch := sweepRedundancies(cmds)
		if !ch {
			break
		}
		cmds, phase, changed = next, phase+ph, true
	}
	if !changed {
		return false, nil
	}
	if err := c.ReplaceCommands(cmds); err != nil {
		return false, err
	}
	c.AddPhase(phase)
	return true, nil
}

// sweepRedundancies performs one left-to-right simplification sweep.
func sweepRedundancies(cmds []circuit.Command) ([]circuit.Command, float64, bool) {
	var out []circuit.Command
	phase := 0.0
	changed := false
	// lastOn[q] is the index in out of the newest command touching q.
	lastOn := make(map[circuit.Qubit]int)
	dropped := make(map[int]struct{})

	touch := func(idx int, cmd circuit.Command) {
		for _, q := range cmd.Qubits {
			lastOn[q] = idx
		}
	}

	// prevMatching returns the index of the previous live command when
	// it covers exactly the same qubits as cmd, with nothing touching
	// those qubits in between.
	prevMatching := func(cmd circuit.Command) (int, bool) {
		idx := -1
		for _, q := range cmd.Qubits {
			i, ok := lastOn[q]
			if !ok {
				return 0, false
			}
			if idx == -1 {
				idx = i
			} else if idx != i {
				return 0, false
			}
		}
		if idx == -1 {
			return 0, false
		}
		if _, gone := dropped[idx]; gone {
			return 0, false
		}
		prev := out[idx]
		if len(prev.Qubits) != len(cmd.Qubits) || prev.Condition != nil {
			return 0, false
		}
		return idx, true
	}

	sameQubits := func(a, b circuit.Command) bool {
		for i := range a.Qubits {
			if a.Qubits[i] != b.Qubits[i] {
				return false
			}
		}
		return true
	}
	reversedQubits := func(a, b circuit.Command) bool {
		n := len(a.Qubits)
		if n != 2 {
			return false
		}
		return a.Qubits[0] == b.Qubits[1] && a.Qubits[1] == b.Qubits[0]
	}

	for _, cmd := range cmds {
		if cmd.Op.IsRotation() && cmd.Condition == nil {
			angle := cmd.Params[0]
			if cmd.Op == circuit.U1 || cmd.Op == circuit.CU1 {
				angle = normalisePhaseAngle(angle)
			} else {
				angle = normaliseRotation(angle)
			}
			if isZeroAngle(angle) {
				changed = true
				continue
			}
			cmd = cmd.Clone()
			cmd.Params[0] = angle
		}
		if cmd.Op.IsGate() && cmd.Condition == nil {
			if idx, ok := prevMatching(cmd); ok {
				prev := out[idx]
				_, sym := symmetricOps[cmd.Op]
				aligned := sameQubits(prev, cmd) || (sym && reversedQubits(prev, cmd))
				if prev.Op == cmd.Op && aligned {
					if _, inv := selfInverse[cmd.Op]; inv {
						dropped[idx] = struct{}{}
						changed = true
						continue
					}
					if cmd.Op.IsRotation() {
						merged := prev.Params[0] + cmd.Params[0]
						if cmd.Op == circuit.U1 || cmd.Op == circuit.CU1 {
							merged = normalisePhaseAngle(merged)
						} else {
							merged = normaliseRotation(merged)
						}
						changed = true
						if isZeroAngle(merged) {
							dropped[idx] = struct{}{}
							continue
						}
						// A full turn of Rx/Rz/Ry is -identity.
						if cmd.Op != circuit.U1 && cmd.Op != circuit.CU1 && isZeroAngle(normalisePhaseAngle(merged)) {
							dropped[idx] = struct{}{}
							phase++
							continue
						}
						out[idx].Params[0] = merged
						continue
					}
				}
			}
		}
		out = append(out, cmd)
		touch(len(out)-1, cmd)
	}

	if len(dropped) == 0 && !changed {
		return cmds, 0, false
	}
	kept := make([]circuit.Command, 0, len(out))
	for i, cmd := range out {
		if _, gone := dropped[i]; gone {
			continue
		}
		kept = append(kept, cmd)
	}
	return kept, phase, changed
}
