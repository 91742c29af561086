package circuit

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Sentinel errors for circuit construction.
var (
	// ErrUnknownUnit indicates a command referenced a qubit or bit that
	// is not part of the circuit.
	ErrUnknownUnit = errors.New("circuit: unknown unit")

	// ErrArityMismatch indicates a command with the wrong number of
	// qubit arguments for its op.
	ErrArityMismatch = errors.New("circuit: wrong number of qubits for op")

	// ErrParamMismatch indicates a command with the wrong number of
	// parameters for its op.
	ErrParamMismatch = errors.New("circuit: wrong number of parameters for op")

	// ErrDuplicateUnit indicates a unit was added twice, or a command
	// addressed the same qubit twice.
	ErrDuplicateUnit = errors.New("circuit: duplicate unit")
)

// Circuit is an ordered list of commands over named qubit and bit
// registers, with a tracked global phase in half-turns.
type Circuit struct {
	name     string
	phase    float64
	qubits   map[Qubit]struct{}
	bits     map[Bit]struct{}
	commands []Command
	perm     map[Qubit]Qubit // implicit output permutation; nil = identity
}

// New returns a circuit with nQubits default-register qubits and nBits
// default-register bits.
func New(nQubits, nBits int) *Circuit {
	c := &Circuit{
		qubits: make(map[Qubit]struct{}),
		bits:   make(map[Bit]struct{}),
	}
	for i := 0; i < nQubits; i++ {
		c.qubits[Q(i)] = struct{}{}
	}
	for i := 0; i < nBits; i++ {
		c.bits[B(i)] = struct{}{}
	}
	return c
}

// Name returns the circuit name (may be empty).
func (c *Circuit) Name() string { return c.name }

// SetName sets the circuit name.
func (c *Circuit) SetName(name string) { c.name = name }

// Phase returns the global phase in half-turns, normalised to [0, 2).
func (c *Circuit) Phase() float64 { return c.phase }

// AddPhase adds a global phase in half-turns.
func (c *Circuit) AddPhase(halfTurns float64) {
	c.phase = math.Mod(c.phase+halfTurns, 2)
	if c.phase < 0 {
		c.phase += 2
	}
}

// AddQubit adds a qubit to the circuit. Adding a qubit twice is an error.
func (c *Circuit) AddQubit(q Qubit) error {
	if _, ok := c.qubits[q]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateUnit, q)
	}
	c.qubits[q] = struct{}{}
	return nil
}

// AddBit adds a classical bit to the circuit.
func (c *Circuit) AddBit(b Bit) error {
	if _, ok := c.bits[b]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateUnit, b)
	}
	c.bits[b] = struct{}{}
	return nil
}

// AddRegister adds size qubits under a named register.
func (c *Circuit) AddRegister(name string, size int) error {
	for i := 0; i < size; i++ {
		if err := c.AddQubit(Qubit{Register: name, Index: i}); err != nil {
			return err
		}
	}
	return nil
}

// AddBitRegister adds size bits under a named register.
func (c *Circuit) AddBitRegister(name string, size int) error {
	for i := 0; i < size; i++ {
		if err := c.AddBit(Bit{Register: name, Index: i}); err != nil {
			return err
		}
	}
	return nil
}

// HasQubit reports whether q is part of the circuit.
func (c *Circuit) HasQubit(q Qubit) bool {
	_, ok := c.qubits[q]
	return ok
}

// HasBit reports whether b is part of the circuit.
func (c *Circuit) HasBit(b Bit) bool {
	_, ok := c.bits[b]
	return ok
}

// NQubits returns the number of qubits.
func (c *Circuit) NQubits() int { return len(c.qubits) }

// NBits returns the number of classical bits.
func (c *Circuit) NBits() int { return len(c.bits) }

// Qubits returns the circuit's qubits in sorted order.
func (c *Circuit) Qubits() []Qubit {
	out := make([]Qubit, 0, len(c.qubits))
	for q := range c.qubits {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Bits returns the circuit's bits in sorted order.
func (c *Circuit) Bits() []Bit {
	out := make([]Bit, 0, len(c.bits))
	for b := range c.bits {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Commands returns a copy of the command list in program order.
func (c *Circuit) Commands() []Command {
	out := make([]Command, len(c.commands))
	for i, cmd := range c.commands {
		out[i] = cmd.Clone()
	}
	return out
}

// NCommands returns the number of commands.
func (c *Circuit) NCommands() int { return len(c.commands) }

// NGatesOf counts commands with the given op.
func (c *Circuit) NGatesOf(op OpType) int {
	n := 0
	for _, cmd := range c.commands {
		if cmd.Op == op {
			n++
		}
	}
	return n
}

// validate checks a command against the circuit's units and the op's
// arity and parameter count.
func (c *Circuit) validate(cmd Command) error {
	if n, fixed := cmd.Op.NumQubits(); fixed && len(cmd.Qubits) != n {
		return fmt.Errorf("%w: %s takes %d qubits, got %d", ErrArityMismatch, cmd.Op, n, len(cmd.Qubits))
	}
	if want := cmd.Op.NumParams(); len(cmd.Params) != want {
		return fmt.Errorf("%w: %s takes %d parameters, got %d", ErrParamMismatch, cmd.Op, want, len(cmd.Params))
	}
	seen := make(map[Qubit]struct{}, len(cmd.Qubits))
	for _, q := range cmd.Qubits {
		if !c.HasQubit(q) {
			return fmt.Errorf("%w: %s", ErrUnknownUnit, q)
		}
		if _, dup := seen[q]; dup {
			return fmt.Errorf("%w: %s repeated in %s", ErrDuplicateUnit, q, cmd.Op)
		}
		seen[q] = struct{}{}
	}
	for _, b := range cmd.Bits {
		if !c.HasBit(b) {
			return fmt.Errorf("%w: %s", ErrUnknownUnit, b)
		}
	}
	if cmd.Condition != nil && !c.HasBit(cmd.Condition.Bit) {
		return fmt.Errorf("%w: condition bit %s", ErrUnknownUnit, cmd.Condition.Bit)
	}
	if cmd.Op == Measure && len(cmd.Bits) != 1 {
		return fmt.Errorf("%w: Measure takes 1 bit, got %d", ErrArityMismatch, len(cmd.Bits))
	}
	return nil
}

// Append validates cmd and appends it to the command list.
func (c *Circuit) Append(cmd Command) error {
	if err := c.validate(cmd); err != nil {
		return err
	}
	c.commands = append(c.commands, cmd.Clone())
	return nil
}

// AddGate appends a parameterless gate on the given qubits.
func (c *Circuit) AddGate(op OpType, qubits ...Qubit) error {
	return c.Append(Command{Op: op, Qubits: qubits})
}

// AddRotation appends a parameterised gate; angles are half-turns.
func (c *Circuit) AddRotation(op OpType, params []float64, qubits ...Qubit) error {
	return c.Append(Command{Op: op, Params: params, Qubits: qubits})
}

// AddConditional appends a command gated on bit == value.
func (c *Circuit) AddConditional(cmd Command, bit Bit, value int) error {
	cmd.Condition = &Condition{Bit: bit, Value: value}
	return c.Append(cmd)
}

// Default-register helpers. Each addresses qubits and bits by index in
// the default registers and errors if the unit does not exist.

func (c *Circuit) H(q int) error    { return c.AddGate(H, Q(q)) }
func (c *Circuit) X(q int) error    { return c.AddGate(X, Q(q)) }
func (c *Circuit) Y(q int) error    { return c.AddGate(Y, Q(q)) }
func (c *Circuit) Z(q int) error    { return c.AddGate(Z, Q(q)) }
func (c *Circuit) S(q int) error    { return c.AddGate(S, Q(q)) }
func (c *Circuit) Sdg(q int) error  { return c.AddGate(Sdg, Q(q)) }
func (c *Circuit) T(q int) error    { return c.AddGate(T, Q(q)) }
func (c *Circuit) Tdg(q int) error  { return c.AddGate(Tdg, Q(q)) }
func (c *Circuit) Reset(q int) error { return c.AddGate(Reset, Q(q)) }

func (c *Circuit) Rx(halfTurns float64, q int) error {
	return c.AddRotation(Rx, []float64{halfTurns}, Q(q))
}

func (c *Circuit) Ry(halfTurns float64, q int) error {
	return c.AddRotation(Ry, []float64{halfTurns}, Q(q))
}

func (c *Circuit) Rz(halfTurns float64, q int) error {
	return c.AddRotation(Rz, []float64{halfTurns}, Q(q))
}

func (c *Circuit) U1(halfTurns float64, q int) error {
	return c.AddRotation(U1, []float64{halfTurns}, Q(q))
}

func (c *Circuit) CX(ctrl, tgt int) error { return c.AddGate(CX, Q(ctrl), Q(tgt)) }
func (c *Circuit) CY(ctrl, tgt int) error { return c.AddGate(CY, Q(ctrl), Q(tgt)) }
func (c *Circuit) CZ(ctrl, tgt int) error { return c.AddGate(CZ, Q(ctrl), Q(tgt)) }

func (c *Circuit) CU1(halfTurns float64, ctrl, tgt int) error {
	return c.AddRotation(CU1, []float64{halfTurns}, Q(ctrl), Q(tgt))
}

func (c *Circuit) CCX(a, b, tgt int) error   { return c.AddGate(CCX, Q(a), Q(b), Q(tgt)) }
func (c *Circuit) SWAP(a, b int) error       { return c.AddGate(SWAP, Q(a), Q(b)) }
func (c *Circuit) CSWAP(a, b, tgt int) error { return c.AddGate(CSWAP, Q(a), Q(b), Q(tgt)) }
func (c *Circuit) ISWAP(a, b int) error      { return c.AddGate(ISWAP, Q(a), Q(b)) }

// Measure appends a measurement of default qubit q into default bit b.
func (c *Circuit) Measure(q, b int) error {
	return c.Append(Command{Op: Measure, Qubits: []Qubit{Q(q)}, Bits: []Bit{B(b)}})
}

// MeasureAll measures every qubit into the same-index default bit,
// adding missing bits as needed. Qubits are taken in sorted order.
func (c *Circuit) MeasureAll() error {
	for i, q := range c.Qubits() {
		b := B(i)
		if !c.HasBit(b) {
			if err := c.AddBit(b); err != nil {
				return err
			}
		}
		if err := c.Append(Command{Op: Measure, Qubits: []Qubit{q}, Bits: []Bit{b}}); err != nil {
			return err
		}
	}
	return nil
}

// AddBarrier appends a barrier over the given qubits; no qubits means
// all of them.
func (c *Circuit) AddBarrier(qubits ...Qubit) error {
	if len(qubits) == 0 {
		qubits = c.Qubits()
	}
	return c.Append(Command{Op: Barrier, Qubits: qubits})
}

// UsedBits returns the bits written by measurements, sorted.
func (c *Circuit) UsedBits() []Bit {
	seen := make(map[Bit]struct{})
	for _, cmd := range c.commands {
		if cmd.Op == Measure {
			for _, b := range cmd.Bits {
				seen[b] = struct{}{}
			}
		}
	}
	out := make([]Bit, 0, len(seen))
	for b := range seen {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Depth returns the circuit depth counting gates and measurements;
// barriers and noops do not contribute.
func (c *Circuit) Depth() int {
	level := make(map[Qubit]int, len(c.qubits))
	max := 0
	for _, cmd := range c.commands {
		if cmd.Op == Barrier || cmd.Op == Noop {
			continue
		}
		d := 0
		for _, q := range cmd.Qubits {
			if level[q] > d {
				d = level[q]
			}
		}
		d++
		for _, q := range cmd.Qubits {
			level[q] = d
		}
		if d > max {
			max = d
		}
	}
	return max
}

// ImplicitPermutation returns the output permutation of qubits. The
// default is the identity over the circuit's qubits.
func (c *Circuit) ImplicitPermutation() map[Qubit]Qubit {
	out := make(map[Qubit]Qubit, len(c.qubits))
	for q := range c.qubits {
		out[q] = q
	}
	for from, to := range c.perm {
		out[from] = to
	}
	return out
}

// SetImplicitPermutation records that the circuit's wires end up
// permuted: the state of qubit from is found on qubit to.
func (c *Circuit) SetImplicitPermutation(perm map[Qubit]Qubit) error {
	for from, to := range perm {
		if !c.HasQubit(from) || !c.HasQubit(to) {
			return fmt.Errorf("%w: permutation %s -> %s", ErrUnknownUnit, from, to)
		}
	}
	c.perm = make(map[Qubit]Qubit, len(perm))
	for from, to := range perm {
		c.perm[from] = to
	}
	return nil
}

// RenameUnits relabels qubits and bits in place, including in commands,
// conditions and the implicit permutation. The maps may be partial.
// Renames must not collide with surviving or target units.
func (c *Circuit) RenameUnits(qubits map[Qubit]Qubit, bits map[Bit]Bit) error {
	newQubits := make(map[Qubit]struct{}, len(c.qubits))
	for q := range c.qubits {
		target := q
		if to, ok := qubits[q]; ok {
			target = to
		}
		if _, dup := newQubits[target]; dup {
			return fmt.Errorf("%w: rename collides on %s", ErrDuplicateUnit, target)
		}
		newQubits[target] = struct{}{}
	}
	newBits := make(map[Bit]struct{}, len(c.bits))
	for b := range c.bits {
		target := b
		if to, ok := bits[b]; ok {
			target = to
		}
		if _, dup := newBits[target]; dup {
			return fmt.Errorf("%w: rename collides on %s", ErrDuplicateUnit, target)
		}
		newBits[target] = struct{}{}
	}

	mapQubit := func(q Qubit) Qubit {
		if to, ok := qubits[q]; ok {
			return to
		}
		return q
	}
	mapBit := func(b Bit) Bit {
		if to, ok := bits[b]; ok {
			return to
		}
		return b
	}

	c.qubits = newQubits
	c.bits = newBits
	for i := range c.commands {
		cmd := &c.commands[i]
		for j, q := range cmd.Qubits {
			cmd.Qubits[j] = mapQubit(q)
		}
		for j, b := range cmd.Bits {
			cmd.Bits[j] = mapBit(b)
		}
		if cmd.Condition != nil {
			cmd.Condition.Bit = mapBit(cmd.Condition.Bit)
		}
	}
	if c.perm != nil {
		perm := make(map[Qubit]Qubit, len(c.perm))
		for from, to := range c.perm {
			perm[mapQubit(from)] = mapQubit(to)
		}
		c.perm = perm
	}
	return nil
}

// Clone returns a deep copy of the circuit.
func (c *Circuit) Clone() *Circuit {
	out := &Circuit{
		name:   c.name,
		phase:  c.phase,
		qubits: make(map[Qubit]struct{}, len(c.qubits)),
		bits:   make(map[Bit]struct{}, len(c.bits)),
	}
	for q := range c.qubits {
		out.qubits[q] = struct{}{}
	}
	for b := range c.bits {
		out.bits[b] = struct{}{}
	}
	out.commands = make([]Command, len(c.commands))
	for i, cmd := range c.commands {
		out.commands[i] = cmd.Clone()
	}
	if c.perm != nil {
		out.perm = make(map[Qubit]Qubit, len(c.perm))
		for from, to := range c.perm {
			out.perm[from] = to
		}
	}
	return out
}

// ReplaceCommands swaps the command list wholesale after validating
// every command. Passes use this to rewrite circuits.
func (c *Circuit) ReplaceCommands(cmds []Command) error {
	for _, cmd := range cmds {
		if err := c.validate(cmd); err != nil {
			return err
		}
	}
	c.commands = make([]Command, len(cmds))
	for i, cmd := range cmds {
		c.commands[i] = cmd.Clone()
	}
	return nil
}
