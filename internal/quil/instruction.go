package quil

import (
	"fmt"
	"strconv"
	"strings"
)

// Instruction is a single Quil program line.
type Instruction interface {
	// Quil renders the instruction in wire syntax.
	Quil() string
}

// MemoryRef addresses one slot of a declared memory region, e.g. ro[3].
type MemoryRef struct {
	Name  string
	Index int
}

func (m MemoryRef) String() string {
	return fmt.Sprintf("%s[%d]", m.Name, m.Index)
}

// Declare reserves a classical memory region.
type Declare struct {
	Name string
	Type string // BIT, OCTET, INTEGER or REAL
	Size int
}

func (d Declare) Quil() string {
	return fmt.Sprintf("DECLARE %s %s[%d]", d.Name, d.Type, d.Size)
}

// Gate applies a named gate with radian parameters to qubits.
type Gate struct {
	Name   string
	Params []float64
	Qubits []int
}

func (g Gate) Quil() string {
	var sb strings.Builder
	sb.WriteString(g.Name)
	if len(g.Params) > 0 {
		sb.WriteByte('(')
		for i, p := range g.Params {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(formatParam(p))
		}
		sb.WriteByte(')')
	}
	for _, q := range g.Qubits {
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(q))
	}
	return sb.String()
}

// Measurement reads a qubit into a memory slot. A nil Target measures
// for effect only.
type Measurement struct {
	Qubit  int
	Target *MemoryRef
}

func (m Measurement) Quil() string {
	if m.Target == nil {
		return fmt.Sprintf("MEASURE %d", m.Qubit)
	}
	return fmt.Sprintf("MEASURE %d %s", m.Qubit, m.Target)
}

// Fence orders all prior instructions on the listed qubits before any
// later ones. No qubits means a global fence.
type Fence struct {
	Qubits []int
}

func (f Fence) Quil() string {
	if len(f.Qubits) == 0 {
		return "FENCE"
	}
	parts := make([]string, len(f.Qubits))
	for i, q := range f.Qubits {
		parts[i] = strconv.Itoa(q)
	}
	return "FENCE " + strings.Join(parts, " ")
}

// Reset returns a qubit, or with a nil Qubit the whole machine, to |0>.
type Reset struct {
	Qubit *int
}

func (r Reset) Quil() string {
	if r.Qubit == nil {
		return "RESET"
	}
	return fmt.Sprintf("RESET %d", *r.Qubit)
}

// Halt ends execution.
type Halt struct{}

func (Halt) Quil() string { return "HALT" }

// Pragma passes a directive through to the executor untouched.
type Pragma struct {
	Name string
	Args []string
}

func (p Pragma) Quil() string {
	if len(p.Args) == 0 {
		return "PRAGMA " + p.Name
	}
	return "PRAGMA " + p.Name + " " + strings.Join(p.Args, " ")
}

// formatParam renders an angle with enough digits to round-trip.
func formatParam(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
