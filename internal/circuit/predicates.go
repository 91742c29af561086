package circuit

import (
	"fmt"
	"sort"
	"strings"
)

// Predicate is a property a circuit must satisfy before a backend will
// accept it. Verify returns nil when the circuit conforms and a
// descriptive error when it does not.
type Predicate interface {
	Name() string
	Verify(c *Circuit) error
}

// PredicateFunc adapts a function to the Predicate interface.
type PredicateFunc struct {
	PredName string
	Fn       func(c *Circuit) error
}

func (p PredicateFunc) Name() string            { return p.PredName }
func (p PredicateFunc) Verify(c *Circuit) error { return p.Fn(c) }

// VerifyAll runs every predicate and returns the first failure.
func VerifyAll(c *Circuit, preds []Predicate) error {
	for _, p := range preds {
		if err := p.Verify(c); err != nil {
			return fmt.Errorf("%s: %w", p.Name(), err)
		}
	}
	return nil
}

// GateSetPredicate requires every command's op to be in the allowed set.
type GateSetPredicate struct {
	allowed map[OpType]struct{}
}

// NewGateSetPredicate builds the predicate from the allowed ops.
func NewGateSetPredicate(ops ...OpType) *GateSetPredicate {
	allowed := make(map[OpType]struct{}, len(ops))
	for _, op := range ops {
		allowed[op] = struct{}{}
	}
	return &GateSetPredicate{allowed: allowed}
}

func (p *GateSetPredicate) Name() string { return "GateSet" }

// Allowed returns the op set, sorted by name.
func (p *GateSetPredicate) Allowed() []OpType {
	out := make([]OpType, 0, len(p.allowed))
	for op := range p.allowed {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Contains reports whether op is in the allowed set.
func (p *GateSetPredicate) Contains(op OpType) bool {
	_, ok := p.allowed[op]
	return ok
}

func (p *GateSetPredicate) Verify(c *Circuit) error {
	for _, cmd := range c.Commands() {
		if !p.Contains(cmd.Op) {
			names := make([]string, 0, len(p.allowed))
			for _, op := range p.Allowed() {
				names = append(names, op.String())
			}
			return fmt.Errorf("op %s not in gate set {%s}", cmd.Op, strings.Join(names, ", "))
		}
	}
	return nil
}

// NoClassicalControlPredicate forbids conditional commands.
type NoClassicalControlPredicate struct{}

func (NoClassicalControlPredicate) Name() string { return "NoClassicalControl" }

func (NoClassicalControlPredicate) Verify(c *Circuit) error {
	for _, cmd := range c.Commands() {
		if cmd.Condition != nil {
			return fmt.Errorf("command %s is classically controlled", cmd)
		}
	}
	return nil
}

// NoFastFeedforwardPredicate forbids conditioning a command on a bit
// written by an earlier measurement.
type NoFastFeedforwardPredicate struct{}

func (NoFastFeedforwardPredicate) Name() string { return "NoFastFeedforward" }

func (NoFastFeedforwardPredicate) Verify(c *Circuit) error {
	measured := make(map[Bit]struct{})
	for _, cmd := range c.Commands() {
		if cmd.Condition != nil {
			if _, ok := measured[cmd.Condition.Bit]; ok {
				return fmt.Errorf("command %s feeds forward from measured bit %s", cmd, cmd.Condition.Bit)
			}
		}
		if cmd.Op == Measure {
			for _, b := range cmd.Bits {
				measured[b] = struct{}{}
			}
		}
	}
	return nil
}

// NoMidMeasurePredicate requires measurements to be terminal on their
// qubit: once a qubit is measured nothing but barriers may touch it.
type NoMidMeasurePredicate struct{}

func (NoMidMeasurePredicate) Name() string { return "NoMidMeasure" }

func (NoMidMeasurePredicate) Verify(c *Circuit) error {
	measured := make(map[Qubit]struct{})
	for _, cmd := range c.Commands() {
		if cmd.Op == Barrier {
			continue
		}
		for _, q := range cmd.Qubits {
			if _, ok := measured[q]; ok {
				return fmt.Errorf("%s acts on %s after measurement", cmd.Op, q)
			}
		}
		if cmd.Op == Measure {
			for _, q := range cmd.Qubits {
				measured[q] = struct{}{}
			}
		}
	}
	return nil
}

// MaxNQubitsPredicate bounds the circuit width.
type MaxNQubitsPredicate struct {
	Max int
}

func (p MaxNQubitsPredicate) Name() string { return "MaxNQubits" }

func (p MaxNQubitsPredicate) Verify(c *Circuit) error {
	if n := c.NQubits(); n > p.Max {
		return fmt.Errorf("circuit has %d qubits, device admits %d", n, p.Max)
	}
	return nil
}

// DefaultRegisterPredicate requires all units to live in the default
// registers with contiguous indices from zero.
type DefaultRegisterPredicate struct{}

func (DefaultRegisterPredicate) Name() string { return "DefaultRegister" }

func (DefaultRegisterPredicate) Verify(c *Circuit) error {
	for i, q := range c.Qubits() {
		if !q.IsDefault() || q.Index != i {
			return fmt.Errorf("qubit %s is not default-register contiguous", q)
		}
	}
	for i, b := range c.Bits() {
		if b.Register != DefaultBitRegister || b.Index != i {
			return fmt.Errorf("bit %s is not default-register contiguous", b)
		}
	}
	return nil
}
