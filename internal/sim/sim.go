package sim

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"quilbridge/internal/quil"
)

// DefaultMaxQubits bounds the register width a simulator will allocate.
// 2^24 amplitudes is the largest register that still fits comfortably
// in a few hundred megabytes.
const DefaultMaxQubits = 24

// Sentinel errors for program shapes the simulator rejects.
var (
	ErrTooWide          = errors.New("sim: program exceeds the qubit limit")
	ErrMeasureInState   = errors.New("sim: wavefunction programs cannot measure")
	ErrUndeclaredMemory = errors.New("sim: measurement into undeclared memory")
)

// Simulator evaluates Quil programs. The zero value is ready to use
// with the default qubit limit.
type Simulator struct {
	// MaxQubits caps the register width; zero means DefaultMaxQubits.
	MaxQubits int
}

// New returns a simulator with the default limits.
func New() *Simulator { return &Simulator{} }

func (s *Simulator) maxQubits() int {
	if s.MaxQubits > 0 {
		return s.MaxQubits
	}
	return DefaultMaxQubits
}

// width derives the register width from the qubits a program touches.
func (s *Simulator) width(ps ...*quil.Program) (int, error) {
	n := 0
	for _, p := range ps {
		if qs := p.Qubits(); len(qs) > 0 {
			if top := qs[len(qs)-1] + 1; top > n {
				n = top
			}
		}
	}
	if n > s.maxQubits() {
		return 0, errors.Wrapf(ErrTooWide, "%d qubits, limit %d", n, s.maxQubits())
	}
	return n, nil
}

// Wavefunction runs a measurement-free program and returns the final
// amplitudes, little-endian. A leading global RESET is redundant and
// accepted; measurements and per-qubit resets are errors because their
// outcomes are not deterministic.
func (s *Simulator) Wavefunction(p *quil.Program) ([]complex128, error) {
	n, err := s.width(p)
	if err != nil {
		return nil, err
	}
	st := NewState(n)
	for _, ins := range p.Instructions() {
		switch v := ins.(type) {
		case quil.Gate:
			m, err := buildGate(v.Name, v.Params, v.Qubits)
			if err != nil {
				return nil, err
			}
			if err := st.apply(m, v.Qubits...); err != nil {
				return nil, err
			}
		case quil.Measurement:
			return nil, ErrMeasureInState
		case quil.Reset:
			if v.Qubit != nil {
				return nil, errors.Wrap(ErrMeasureInState, "RESET on a single qubit")
			}
			st.reset()
		case quil.Halt:
			return st.Amplitudes(), nil
		case quil.Declare, quil.Pragma, quil.Fence:
			// No effect on the state.
		default:
			return nil, errors.Errorf("sim: cannot simulate %q", ins.Quil())
		}
	}
	return st.Amplitudes(), nil
}

// Sample executes the program for the given number of shots and
// returns the readout table: one row per shot, one column per slot of
// the declared ro region. A zero seed draws entropy from the clock;
// any other seed makes the run reproducible.
func (s *Simulator) Sample(p *quil.Program, shots int, seed int64) ([][]int, error) {
	if shots < 1 {
		shots = p.NumShots()
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	n, err := s.width(p)
	if err != nil {
		return nil, err
	}
	regions, err := memoryRegions(p)
	if err != nil {
		return nil, err
	}
	roWidth := regions["ro"]

	if prefix, measures, ok := splitTerminal(p); ok {
		return s.sampleTerminal(prefix, measures, n, roWidth, shots, rng)
	}

	out := make([][]int, shots)
	for i := 0; i < shots; i++ {
		row, err := runShot(p, n, roWidth, rng)
		if err != nil {
			return nil, err
		}
		out[i] = row
	}
	return out, nil
}

// sampleTerminal runs the unitary prefix once and draws shots from the
// final distribution. Exact for programs whose measurements all come
// after the last gate.
func (s *Simulator) sampleTerminal(prefix *quil.Program, measures []quil.Measurement, n, roWidth, shots int, rng *rand.Rand) ([][]int, error) {
	st := NewState(n)
	for _, ins := range prefix.Instructions() {
		switch v := ins.(type) {
		case quil.Gate:
			m, err := buildGate(v.Name, v.Params, v.Qubits)
			if err != nil {
				return nil, err
			}
			if err := st.apply(m, v.Qubits...); err != nil {
				return nil, err
			}
		case quil.Reset:
			st.reset()
		}
	}
	out := make([][]int, shots)
	for i := 0; i < shots; i++ {
		idx := st.sampleIndex(rng)
		row := make([]int, roWidth)
		for _, m := range measures {
			if m.Target == nil {
				continue
			}
			row[m.Target.Index] = idx >> uint(m.Qubit) & 1
		}
		out[i] = row
	}
	return out, nil
}

// runShot simulates one shot with in-order collapse, for programs with
// mid-circuit measurements or per-qubit resets.
func runShot(p *quil.Program, n, roWidth int, rng *rand.Rand) ([]int, error) {
	st := NewState(n)
	row := make([]int, roWidth)
	for _, ins := range p.Instructions() {
		switch v := ins.(type) {
		case quil.Gate:
			m, err := buildGate(v.Name, v.Params, v.Qubits)
			if err != nil {
				return nil, err
			}
			if err := st.apply(m, v.Qubits...); err != nil {
				return nil, err
			}
		case quil.Measurement:
			outcome, err := st.measure(v.Qubit, rng)
			if err != nil {
				return nil, err
			}
			if v.Target != nil && v.Target.Name == "ro" {
				row[v.Target.Index] = outcome
			}
		case quil.Reset:
			if v.Qubit == nil {
				st.reset()
			} else if err := st.resetQubit(*v.Qubit, rng); err != nil {
				return nil, err
			}
		case quil.Halt:
			return row, nil
		case quil.Declare, quil.Pragma, quil.Fence:
		default:
			return nil, errors.Errorf("sim: cannot simulate %q", ins.Quil())
		}
	}
	return row, nil
}

// Expectation prepares the state with prep, applies each gate-only
// operator program to a copy and returns Re<psi|Op|psi> per operator.
func (s *Simulator) Expectation(prep *quil.Program, operators []*quil.Program) ([]float64, error) {
	all := append([]*quil.Program{prep}, operators...)
	n, err := s.width(all...)
	if err != nil {
		return nil, err
	}

	psi := NewState(n)
	for _, ins := range prep.Instructions() {
		switch v := ins.(type) {
		case quil.Gate:
			m, err := buildGate(v.Name, v.Params, v.Qubits)
			if err != nil {
				return nil, err
			}
			if err := psi.apply(m, v.Qubits...); err != nil {
				return nil, err
			}
		case quil.Measurement:
			return nil, ErrMeasureInState
		case quil.Reset:
			if v.Qubit != nil {
				return nil, errors.Wrap(ErrMeasureInState, "RESET on a single qubit")
			}
			psi.reset()
		case quil.Declare, quil.Pragma, quil.Fence, quil.Halt:
		default:
			return nil, errors.Errorf("sim: cannot simulate %q", ins.Quil())
		}
	}

	out := make([]float64, len(operators))
	for i, op := range operators {
		if !op.GatesOnly() {
			return nil, errors.Errorf("sim: expectation operator %d is not gates-only", i)
		}
		phi := &State{n: psi.n, amps: psi.Amplitudes()}
		for _, ins := range op.Instructions() {
			g := ins.(quil.Gate)
			m, err := buildGate(g.Name, g.Params, g.Qubits)
			if err != nil {
				return nil, err
			}
			if err := phi.apply(m, g.Qubits...); err != nil {
				return nil, err
			}
		}
		dot, err := psi.dot(phi)
		if err != nil {
			return nil, err
		}
		out[i] = real(dot)
	}
	return out, nil
}

// memoryRegions collects DECLARE sizes and checks measurement targets
// against them.
func memoryRegions(p *quil.Program) (map[string]int, error) {
	regions := make(map[string]int)
	for _, ins := range p.Instructions() {
		if d, ok := ins.(quil.Declare); ok {
			regions[d.Name] = d.Size
		}
	}
	for _, m := range p.Measurements() {
		if m.Target == nil {
			continue
		}
		size, ok := regions[m.Target.Name]
		if !ok {
			return nil, errors.Wrap(ErrUndeclaredMemory, m.Target.String())
		}
		if m.Target.Index >= size {
			return nil, errors.Errorf("sim: %s outside %s[%d]", m.Target, m.Target.Name, size)
		}
	}
	return regions, nil
}

// splitTerminal splits a program into a unitary prefix and a trailing
// block of measurements. ok is false when measurements interleave with
// gates or a per-qubit reset forces per-shot simulation.
func splitTerminal(p *quil.Program) (*quil.Program, []quil.Measurement, bool) {
	prefix := quil.NewProgram()
	var measures []quil.Measurement
	sawMeasure := false
	for _, ins := range p.Instructions() {
		switch v := ins.(type) {
		case quil.Measurement:
			sawMeasure = true
			measures = append(measures, v)
		case quil.Gate:
			if sawMeasure {
				return nil, nil, false
			}
			prefix.Add(ins)
		case quil.Reset:
			if v.Qubit != nil || sawMeasure {
				return nil, nil, false
			}
			prefix.Add(ins)
		case quil.Halt:
			return prefix, measures, true
		case quil.Declare, quil.Pragma, quil.Fence:
			// Neutral for sampling.
		default:
			return nil, nil, false
		}
	}
	return prefix, measures, true
}
