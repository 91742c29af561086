package passes

import (
	"github.com/pkg/errors"

	"quilbridge/internal/circuit"
)

// ErrCannotRebase reports a command the rebase has no rule for.
var ErrCannotRebase = errors.New("passes: cannot rebase command")

// RebasePass rewrites every gate into the native set {CZ, Rz, Rx},
// leaving measurements, barriers and resets alone. Decompositions are
// exact; the global phase they introduce is accounted on the circuit.
type RebasePass struct{}

// Rebase returns the native-gate rewrite pass.
func Rebase() *RebasePass { return &RebasePass{} }

func (*RebasePass) Name() string { return "Rebase" }

func (*RebasePass) Apply(c *circuit.Circuit) (bool, error) {
	r := &rebaser{}
	changed := false
	for _, cmd := range c.Commands() {
		switch cmd.Op {
		case circuit.Rx, circuit.Rz, circuit.CZ,
			circuit.Measure, circuit.Barrier, circuit.Reset:
			r.keep(cmd)
			continue
		case circuit.Noop:
			changed = true
			continue
		}
		if cmd.Condition != nil {
			return false, errors.Wrapf(ErrCannotRebase, "%s is classically controlled", cmd)
		}
		if err := r.emit(cmd); err != nil {
			return false, err
		}
		changed = true
	}
	if !changed {
		return false, nil
	}
	if err := c.ReplaceCommands(r.out); err != nil {
		return false, err
	}
	c.AddPhase(r.phase)
	return true, nil
}

// rebaser accumulates rewritten commands and the global phase the
// rewrites introduce, in half-turns.
type rebaser struct {
	out   []circuit.Command
	phase float64
}

func (r *rebaser) keep(cmd circuit.Command) {
	r.out = append(r.out, cmd)
}

func (r *rebaser) gate(op circuit.OpType, params []float64, qs ...circuit.Qubit) {
	r.out = append(r.out, circuit.Command{Op: op, Params: params, Qubits: qs})
}

func (r *rebaser) rx(halfTurns float64, q circuit.Qubit) {
	r.gate(circuit.Rx, []float64{halfTurns}, q)
}

func (r *rebaser) rz(halfTurns float64, q circuit.Qubit) {
	r.gate(circuit.Rz, []float64{halfTurns}, q)
}

func (r *rebaser) cz(a, b circuit.Qubit) {
	r.gate(circuit.CZ, nil, a, b)
}

// Exact single-qubit identities, each with its global phase:
//
//	H = e^{i pi/2} Rz(1/2) Rx(1/2) Rz(1/2)
//	X = e^{i pi/2} Rx(1)        Z = e^{i pi/2} Rz(1)
//	Y = e^{i pi/2} Rz(1) Rx(1)  S = e^{i pi/4} Rz(1/2)
//	T = e^{i pi/8} Rz(1/4)      U1(t) = e^{i pi t/2} Rz(t)
//	Ry(t) = Rz(1/2) Rx(t) Rz(-1/2)  (phase free)
//
// Multi-qubit gates unroll through CX = (I x H) CZ (I x H) and the
// standard exact CX networks. Commands are appended in program order,
// so a matrix product A.B appears as emit(B) then emit(A).

func (r *rebaser) h(q circuit.Qubit) {
	r.rz(0.5, q)
	r.rx(0.5, q)
	r.rz(0.5, q)
	r.phase += 0.5
}

func (r *rebaser) s(q circuit.Qubit) {
	r.rz(0.5, q)
	r.phase += 0.25
}

func (r *rebaser) sdg(q circuit.Qubit) {
	r.rz(-0.5, q)
	r.phase -= 0.25
}

func (r *rebaser) t(q circuit.Qubit) {
	r.rz(0.25, q)
	r.phase += 0.125
}

func (r *rebaser) tdg(q circuit.Qubit) {
	r.rz(-0.25, q)
	r.phase -= 0.125
}

func (r *rebaser) u1(halfTurns float64, q circuit.Qubit) {
	r.rz(halfTurns, q)
	r.phase += halfTurns / 2
}

func (r *rebaser) cx(ctrl, tgt circuit.Qubit) {
	r.h(tgt)
	r.cz(ctrl, tgt)
	r.h(tgt)
}

func (r *rebaser) emit(cmd circuit.Command) error {
	qs := cmd.Qubits
	switch cmd.Op {
	case circuit.H:
		r.h(qs[0])
	case circuit.X:
		r.rx(1, qs[0])
		r.phase += 0.5
	case circuit.Y:
		r.rx(1, qs[0])
		r.rz(1, qs[0])
		r.phase += 0.5
	case circuit.Z:
		r.rz(1, qs[0])
		r.phase += 0.5
	case circuit.S:
		r.s(qs[0])
	case circuit.Sdg:
		r.sdg(qs[0])
	case circuit.T:
		r.t(qs[0])
	case circuit.Tdg:
		r.tdg(qs[0])
	case circuit.Ry:
		r.rz(-0.5, qs[0])
		r.rx(cmd.Params[0], qs[0])
		r.rz(0.5, qs[0])
	case circuit.U1:
		r.u1(cmd.Params[0], qs[0])
	case circuit.CX:
		r.cx(qs[0], qs[1])
	case circuit.CY:
		r.sdg(qs[1])
		r.cx(qs[0], qs[1])
		r.s(qs[1])
	case circuit.CU1:
		half := cmd.Params[0] / 2
		r.u1(half, qs[0])
		r.cx(qs[0], qs[1])
		r.u1(-half, qs[1])
		r.cx(qs[0], qs[1])
		r.u1(half, qs[1])
	case circuit.SWAP:
		r.cx(qs[0], qs[1])
		r.cx(qs[1], qs[0])
		r.cx(qs[0], qs[1])
	case circuit.ISWAP:
		r.s(qs[0])
		r.s(qs[1])
		r.cz(qs[0], qs[1])
		r.cx(qs[0], qs[1])
		r.cx(qs[1], qs[0])
		r.cx(qs[0], qs[1])
	case circuit.CCX:
		a, b, tgt := qs[0], qs[1], qs[2]
		r.h(tgt)
		r.cx(b, tgt)
		r.tdg(tgt)
		r.cx(a, tgt)
		r.t(tgt)
		r.cx(b, tgt)
		r.tdg(tgt)
		r.cx(a, tgt)
		r.t(b)
		r.t(tgt)
		r.h(tgt)
		r.cx(a, b)
		r.t(a)
		r.tdg(b)
		r.cx(a, b)
	case circuit.CSWAP:
		a, b, tgt := qs[0], qs[1], qs[2]
		r.cx(tgt, b)
		if err := r.emit(circuit.Command{Op: circuit.CCX, Qubits: []circuit.Qubit{a, b, tgt}}); err != nil {
			return err
		}
		r.cx(tgt, b)
	default:
		return errors.Wrapf(ErrCannotRebase, "%s", cmd)
	}
	return nil
}
