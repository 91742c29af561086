package circuit

import (
	"encoding/json"
	"fmt"
)

// OpType enumerates the operations a circuit command may carry.
type OpType int

const (
	// Noop does nothing; it exists so converters can drop identities.
	Noop OpType = iota
	H
	X
	Y
	Z
	S
	Sdg
	T
	Tdg
	Rx
	Ry
	Rz
	U1
	CX
	CY
	CZ
	CU1
	CCX
	SWAP
	CSWAP
	ISWAP
	Measure
	Barrier
	Reset
)

var opNames = map[OpType]string{
	Noop:    "Noop",
	H:       "H",
	X:       "X",
	Y:       "Y",
	Z:       "Z",
	S:       "S",
	Sdg:     "Sdg",
	T:       "T",
	Tdg:     "Tdg",
	Rx:      "Rx",
	Ry:      "Ry",
	Rz:      "Rz",
	U1:      "U1",
	CX:      "CX",
	CY:      "CY",
	CZ:      "CZ",
	CU1:     "CU1",
	CCX:     "CCX",
	SWAP:    "SWAP",
	CSWAP:   "CSWAP",
	ISWAP:   "ISWAP",
	Measure: "Measure",
	Barrier: "Barrier",
	Reset:   "Reset",
}

var opByName = func() map[string]OpType {
	m := make(map[string]OpType, len(opNames))
	for op, name := range opNames {
		m[name] = op
	}
	return m
}()

// opArity maps each op to its qubit count. Barrier is variadic and
// therefore absent.
var opArity = map[OpType]int{
	Noop:    1,
	H:       1,
	X:       1,
	Y:       1,
	Z:       1,
	S:       1,
	Sdg:     1,
	T:       1,
	Tdg:     1,
	Rx:      1,
	Ry:      1,
	Rz:      1,
	U1:      1,
	CX:      2,
	CY:      2,
	CZ:      2,
	CU1:     2,
	CCX:     3,
	SWAP:    2,
	CSWAP:   3,
	ISWAP:   2,
	Measure: 1,
	Reset:   1,
}

var opParams = map[OpType]int{
	Rx:  1,
	Ry:  1,
	Rz:  1,
	U1:  1,
	CU1: 1,
}

// String returns the op name, e.g. "Rx".
func (op OpType) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OpType(%d)", int(op))
}

// ParseOpType resolves an op name back to its OpType.
func ParseOpType(name string) (OpType, error) {
	op, ok := opByName[name]
	if !ok {
		return Noop, fmt.Errorf("circuit: unknown op type %q", name)
	}
	return op, nil
}

// NumQubits returns how many qubits the op acts on, and ok=false for
// variadic ops (Barrier).
func (op OpType) NumQubits() (int, bool) {
	n, ok := opArity[op]
	return n, ok
}

// NumParams returns how many half-turn parameters the op takes.
func (op OpType) NumParams() int { return opParams[op] }

// IsRotation reports whether the op is a parameterised rotation or
// phase gate.
func (op OpType) IsRotation() bool { return opParams[op] > 0 }

// IsGate reports whether the op is a unitary gate, as opposed to a
// measurement, barrier or reset.
func (op OpType) IsGate() bool {
	switch op {
	case Measure, Barrier, Reset:
		return false
	}
	return true
}

// MarshalJSON encodes the op as its name.
func (op OpType) MarshalJSON() ([]byte, error) {
	name, ok := opNames[op]
	if !ok {
		return nil, fmt.Errorf("circuit: cannot marshal op type %d", int(op))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes an op from its name.
func (op *OpType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseOpType(name)
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}
