package passes

import (
	"math"
	"math/cmplx"
	"sort"

	"quilbridge/internal/circuit"
)

// EulerAngleReductionPass squashes runs of three or more single-qubit
// Rx/Rz rotations into a canonical Rz-Rx-Rz triple, tracking the global
// phase of the rewrite. Runs are per qubit; a run ends at any command
// touching that qubit.
type EulerAngleReductionPass struct{}

// EulerAngleReduction returns the rotation-squashing pass.
func EulerAngleReduction() *EulerAngleReductionPass { return &EulerAngleReductionPass{} }

func (*EulerAngleReductionPass) Name() string { return "EulerAngleReduction" }

func (*EulerAngleReductionPass) Apply(c *circuit.Circuit) (bool, error) {
	in := c.Commands()
	out := make([]circuit.Command, 0, len(in))
	phase := 0.0

	type run struct {
		first int // arrival order of the earliest buffered rotation
		cmds  []circuit.Command
	}
	pending := make(map[circuit.Qubit]*run)

	flush := func(q circuit.Qubit) {
		r, ok := pending[q]
		if !ok {
			return
		}
		delete(pending, q)
		if len(r.cmds) < 3 {
			out = append(out, r.cmds...)
			return
		}
		squashed, ph := squashRun(q, r.cmds)
		out = append(out, squashed...)
		phase += ph
	}
	flushAll := func() {
		qs := make([]circuit.Qubit, 0, len(pending))
		for q := range pending {
			qs = append(qs, q)
		}
		sort.Slice(qs, func(i, j int) bool { return pending[qs[i]].first < pending[qs[j]].first })
		for _, q := range qs {
			flush(q)
		}
	}

	for i, cmd := range in {
		if (cmd.Op == circuit.Rx || cmd.Op == circuit.Rz) && cmd.Condition == nil {
			q := cmd.Qubits[0]
			if r, ok := pending[q]; ok {
				r.cmds = append(r.cmds, cmd)
			} else {
				pending[q] = &run{first: i, cmds: []circuit.Command{cmd}}
			}
			continue
		}
		for _, q := range cmd.Qubits {
			flush(q)
		}
		out = append(out, cmd)
	}
	flushAll()

	if commandsEqual(in, out) {
		return false, nil
	}
	if err := c.ReplaceCommands(out); err != nil {
		return false, err
	}
	c.AddPhase(phase)
	return true, nil
}

// squashRun multiplies the run's rotations into one 2x2 unitary and
// re-expresses it as Rz(a) then Rx(b) then Rz(c), returning the
// surviving rotations and the global phase in half-turns.
func squashRun(q circuit.Qubit, cmds []circuit.Command) ([]circuit.Command, float64) {
	u := mat2{1, 0, 0, 1}
	for _, cmd := range cmds {
		var g mat2
		if cmd.Op == circuit.Rx {
			g = mat2Rx(cmd.Params[0])
		} else {
			g = mat2Rz(cmd.Params[0])
		}
		u = g.mul(u)
	}
	a, b, c, phase := zxzAngles(u)
	out := make([]circuit.Command, 0, 3)
	for _, rot := range []struct {
		op    circuit.OpType
		angle float64
	}{{circuit.Rz, a}, {circuit.Rx, b}, {circuit.Rz, c}} {
		angle := normaliseRotation(rot.angle)
		if isZeroAngle(angle) {
			continue
		}
		if isZeroAngle(normalisePhaseAngle(angle)) {
			// A full turn is -identity.
			phase++
			continue
		}
		out = append(out, circuit.Command{
			Op:     rot.op,
			Params: []float64{angle},
			Qubits: []circuit.Qubit{q},
		})
	}
	return out, phase
}

// mat2 is a row-major 2x2 complex matrix.
type mat2 [4]complex128

func (m mat2) mul(o mat2) mat2 {
	return mat2{
		m[0]*o[0] + m[1]*o[2], m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2], m[2]*o[1] + m[3]*o[3],
	}
}

func mat2Rz(halfTurns float64) mat2 {
	return mat2{
		cmplx.Exp(complex(0, -halfTurns*math.Pi/2)), 0,
		0, cmplx.Exp(complex(0, halfTurns*math.Pi/2)),
	}
}

func mat2Rx(halfTurns float64) mat2 {
	cos := complex(math.Cos(halfTurns*math.Pi/2), 0)
	sin := complex(0, -math.Sin(halfTurns*math.Pi/2))
	return mat2{cos, sin, sin, cos}
}

// zxzAngles decomposes u as e^{i pi phase} Rz(c) Rx(b) Rz(a) in matrix
// order, i.e. Rz(a) applies first. All results are half-turns.
func zxzAngles(u mat2) (a, b, c, phase float64) {
	det := u[0]*u[3] - u[1]*u[2]
	delta := cmplx.Phase(det) / 2
	phase = delta / math.Pi
	inv := cmplx.Exp(complex(0, -delta))
	u00 := inv * u[0]
	u10 := inv * u[2]

	cb := cmplx.Abs(u00)
	sb := cmplx.Abs(u10)
	b = 2 * math.Atan2(sb, cb) / math.Pi

	const eps = 1e-9
	switch {
	case sb < eps:
		// Diagonal: only a+c is defined.
		a = -2 * cmplx.Phase(u00) / math.Pi
		c = 0
	case cb < eps:
		// Anti-diagonal: only a-c is defined.
		a = -(2*cmplx.Phase(u10)/math.Pi + 1)
		c = 0
	default:
		sum := -2 * cmplx.Phase(u00) / math.Pi
		diff := -(2*cmplx.Phase(u10)/math.Pi + 1)
		a = (sum + diff) / 2
		c = (sum - diff) / 2
	}
	return a, b, c, phase
}

func commandsEqual(a, b []circuit.Command) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.Op != y.Op || len(x.Params) != len(y.Params) || len(x.Qubits) != len(y.Qubits) {
			return false
		}
		for j := range x.Params {
			if math.Abs(x.Params[j]-y.Params[j]) > 1e-12 {
				return false
			}
		}
		for j := range x.Qubits {
			if x.Qubits[j] != y.Qubits[j] {
				return false
			}
		}
	}
	return true
}
