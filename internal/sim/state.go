package sim

import (
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/pkg/errors"
)

// State is a dense statevector over n qubits. Basis indices are
// little-endian: the bit for qubit q in index i is (i>>q)&1.
type State struct {
	n    int
	amps []complex128
}

// NewState returns |0...0> over n qubits. n may be zero, in which case
// the state is the single amplitude 1.
func NewState(n int) *State {
	s := &State{n: n, amps: make([]complex128, 1<<uint(n))}
	s.amps[0] = 1
	return s
}

// NumQubits returns the register width.
func (s *State) NumQubits() int { return s.n }

// Amplitudes returns a copy of the statevector.
func (s *State) Amplitudes() []complex128 {
	return append([]complex128(nil), s.amps...)
}

// Probabilities returns |amp|^2 per basis index.
func (s *State) Probabilities() []float64 {
	out := make([]float64, len(s.amps))
	for i, a := range s.amps {
		re, im := real(a), imag(a)
		out[i] = re*re + im*im
	}
	return out
}

// Scale multiplies every amplitude by c.
func (s *State) Scale(c complex128) {
	for i := range s.amps {
		s.amps[i] *= c
	}
}

// reset returns the whole register to |0...0>.
func (s *State) reset() {
	for i := range s.amps {
		s.amps[i] = 0
	}
	s.amps[0] = 1
}

// apply multiplies the k-qubit gate matrix m (row-major, 2^k x 2^k)
// into the state. qs lists the gate's qubit arguments most significant
// first, matching Quil's matrix convention for "GATE q1 q0".
func (s *State) apply(m []complex128, qs ...int) error {
	k := len(qs)
	dim := 1 << uint(k)
	if len(m) != dim*dim {
		return errors.Errorf("sim: %d-qubit gate with %d-entry matrix", k, len(m))
	}
	var gateMask int
	for _, q := range qs {
		if q < 0 || q >= s.n {
			return errors.Errorf("sim: qubit %d outside %d-qubit register", q, s.n)
		}
		gateMask |= 1 << uint(q)
	}

	sub := make([]complex128, dim)
	for base := 0; base < len(s.amps); base++ {
		if base&gateMask != 0 {
			continue
		}
		for j := 0; j < dim; j++ {
			sub[j] = s.amps[base|spread(j, qs)]
		}
		for r := 0; r < dim; r++ {
			var acc complex128
			row := m[r*dim : (r+1)*dim]
			for j, a := range sub {
				if a != 0 {
					acc += row[j] * a
				}
			}
			s.amps[base|spread(r, qs)] = acc
		}
	}
	return nil
}

// spread places the bits of the gate-local index j onto the global
// qubit positions qs, most significant first.
func spread(j int, qs []int) int {
	out := 0
	k := len(qs)
	for idx, q := range qs {
		if j>>(uint(k-1-idx))&1 == 1 {
			out |= 1 << uint(q)
		}
	}
	return out
}

// probOne returns the probability of measuring qubit q as 1.
func (s *State) probOne(q int) float64 {
	mask := 1 << uint(q)
	p := 0.0
	for i, a := range s.amps {
		if i&mask != 0 {
			re, im := real(a), imag(a)
			p += re*re + im*im
		}
	}
	return p
}

// measure samples qubit q, collapses the state and returns the outcome.
func (s *State) measure(q int, rng *rand.Rand) (int, error) {
	if q < 0 || q >= s.n {
		return 0, errors.Errorf("sim: measure qubit %d outside %d-qubit register", q, s.n)
	}
	p1 := s.probOne(q)
	outcome := 0
	keep := 1 - p1
	if rng.Float64() < p1 {
		outcome = 1
		keep = p1
	}
	if keep <= 0 {
		return 0, errors.New("sim: measurement collapsed onto a zero-norm branch")
	}
	mask := 1 << uint(q)
	norm := complex(1/math.Sqrt(keep), 0)
	for i := range s.amps {
		if (i&mask != 0) == (outcome == 1) {
			s.amps[i] *= norm
		} else {
			s.amps[i] = 0
		}
	}
	return outcome, nil
}

// resetQubit measures q and flips it back to |0> if the outcome was 1.
func (s *State) resetQubit(q int, rng *rand.Rand) error {
	outcome, err := s.measure(q, rng)
	if err != nil {
		return err
	}
	if outcome == 1 {
		return s.apply(matX, q)
	}
	return nil
}

// sampleIndex draws one basis index from the state's distribution using
// the cumulative trick: walk until the running mass passes r.
func (s *State) sampleIndex(rng *rand.Rand) int {
	r := rng.Float64()
	acc := 0.0
	last := 0
	for i, a := range s.amps {
		re, im := real(a), imag(a)
		p := re*re + im*im
		if p == 0 {
			continue
		}
		acc += p
		last = i
		if r < acc {
			return i
		}
	}
	// Float round-off can leave acc just under 1; charge the remainder
	// to the last non-zero amplitude.
	return last
}

// dot returns <s|other>.
func (s *State) dot(other *State) (complex128, error) {
	if s.n != other.n {
		return 0, errors.Errorf("sim: inner product of %d- and %d-qubit states", s.n, other.n)
	}
	var acc complex128
	for i, a := range s.amps {
		acc += cmplx.Conj(a) * other.amps[i]
	}
	return acc, nil
}
