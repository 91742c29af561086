package passes

import (
	"math"
	"strings"

	"quilbridge/internal/circuit"
)

// Pass is a circuit rewrite. Apply reports whether it changed the
// circuit; on error the circuit may be partially rewritten and must be
// discarded by the caller.
type Pass interface {
	Name() string
	Apply(c *circuit.Circuit) (bool, error)
}

// PassFunc adapts a function to the Pass interface.
type PassFunc struct {
	PassName string
	Fn       func(c *circuit.Circuit) (bool, error)
}

func (p PassFunc) Name() string                           { return p.PassName }
func (p PassFunc) Apply(c *circuit.Circuit) (bool, error) { return p.Fn(c) }

type sequence struct {
	passes []Pass
}

// Sequence runs passes in order, stopping at the first error.
func Sequence(ps ...Pass) Pass { return &sequence{passes: ps} }

func (s *sequence) Name() string {
	names := make([]string, len(s.passes))
	for i, p := range s.passes {
		names[i] = p.Name()
	}
	return "Sequence(" + strings.Join(names, ", ") + ")"
}

func (s *sequence) Apply(c *circuit.Circuit) (bool, error) {
	changed := false
	for _, p := range s.passes {
		ch, err := p.Apply(c)
		if err != nil {
			return changed, err
		}
		changed = changed || ch
	}
	return changed, nil
}

const angleEps = 1e-11

// normaliseRotation folds a half-turn rotation angle into (-2, 2].
func normaliseRotation(halfTurns float64) float64 {
	t := math.Mod(halfTurns, 4)
	if t <= -2 {
		t += 4
	} else if t > 2 {
		t -= 4
	}
	return t
}

// normalisePhaseAngle folds a phase-gate angle into (-1, 1]; PHASE has
// period two half-turns.
func normalisePhaseAngle(halfTurns float64) float64 {
	t := math.Mod(halfTurns, 2)
	if t <= -1 {
		t += 2
	} else if t > 1 {
		t -= 2
	}
	return t
}

func isZeroAngle(halfTurns float64) bool {
	return math.Abs(halfTurns) < angleEps
}
