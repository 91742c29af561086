package circuit

import (
	"fmt"
)

// DefaultQubitRegister is the register new qubits are created in.
const DefaultQubitRegister = "q"

// DefaultBitRegister is the register new classical bits are created in.
const DefaultBitRegister = "c"

// Qubit identifies a single qubit by register name and index.
type Qubit struct {
	Register string `json:"register"`
	Index    int    `json:"index"`
}

// Q returns a qubit in the default register.
func Q(index int) Qubit { return Qubit{Register: DefaultQubitRegister, Index: index} }

// String returns the canonical rendering, e.g. "q[3]".
func (q Qubit) String() string { return fmt.Sprintf("%s[%d]", q.Register, q.Index) }

// Less orders qubits by register name, then index.
func (q Qubit) Less(other Qubit) bool {
	if q.Register != other.Register {
		return q.Register < other.Register
	}
	return q.Index < other.Index
}

// IsDefault reports whether the qubit lives in the default register.
func (q Qubit) IsDefault() bool { return q.Register == DefaultQubitRegister }

// Bit identifies a single classical bit by register name and index.
type Bit struct {
	Register string `json:"register"`
	Index    int    `json:"index"`
}

// B returns a bit in the default register.
func B(index int) Bit { return Bit{Register: DefaultBitRegister, Index: index} }

// String returns the canonical rendering, e.g. "c[0]".
func (b Bit) String() string { return fmt.Sprintf("%s[%d]", b.Register, b.Index) }

// Less orders bits by register name, then index.
func (b Bit) Less(other Bit) bool {
	if b.Register != other.Register {
		return b.Register < other.Register
	}
	return b.Index < other.Index
}

// IsDefault reports whether the bit lives in the default register.
func (b Bit) IsDefault() bool { return b.Register == DefaultBitRegister }

// Condition gates a command on a classical bit holding the given value.
type Condition struct {
	Bit   Bit `json:"bit"`
	Value int `json:"value"`
}

// Command is one operation in a circuit: an op code, its parameters in
// half-turns, the qubits it acts on, the bits it writes (measurements),
// and an optional classical condition.
type Command struct {
	Op        OpType     `json:"op"`
	Params    []float64  `json:"params,omitempty"`
	Qubits    []Qubit    `json:"qubits,omitempty"`
	Bits      []Bit      `json:"bits,omitempty"`
	Condition *Condition `json:"condition,omitempty"`
}

// Clone returns a deep copy of the command.
func (c Command) Clone() Command {
	out := Command{Op: c.Op}
	if len(c.Params) > 0 {
		out.Params = append([]float64(nil), c.Params...)
	}
	if len(c.Qubits) > 0 {
		out.Qubits = append([]Qubit(nil), c.Qubits...)
	}
	if len(c.Bits) > 0 {
		out.Bits = append([]Bit(nil), c.Bits...)
	}
	if c.Condition != nil {
		cond := *c.Condition
		out.Condition = &cond
	}
	return out
}

// String renders a command for error messages and logs.
func (c Command) String() string {
	s := c.Op.String()
	for i, p := range c.Params {
		if i == 0 {
			s += fmt.Sprintf("(%g", p)
		} else {
			s += fmt.Sprintf(", %g", p)
		}
		if i == len(c.Params)-1 {
			s += ")"
		}
	}
	for _, q := range c.Qubits {
		s += " " + q.String()
	}
	for _, b := range c.Bits {
		s += " " + b.String()
	}
	if c.Condition != nil {
		s += fmt.Sprintf(" if %s==%d", c.Condition.Bit, c.Condition.Value)
	}
	return s
}
