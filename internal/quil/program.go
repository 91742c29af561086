package quil

import (
	"sort"
	"strings"
)

// Program is an ordered list of Quil instructions plus the shot count
// executors repeat it for.
type Program struct {
	instructions []Instruction
	numShots     int
}

// NewProgram returns an empty single-shot program.
func NewProgram() *Program { return &Program{numShots: 1} }

// Add appends instructions in order.
func (p *Program) Add(ins ...Instruction) {
	p.instructions = append(p.instructions, ins...)
}

// NumShots returns how many times an executor repeats the program.
func (p *Program) NumShots() int {
	if p.numShots < 1 {
		return 1
	}
	return p.numShots
}

// WrapInShots sets the shot count. Counts below one are clamped to one.
func (p *Program) WrapInShots(n int) *Program {
	if n < 1 {
		n = 1
	}
	p.numShots = n
	return p
}

// Instructions returns the instruction list. Callers must not mutate it.
func (p *Program) Instructions() []Instruction { return p.instructions }

// Len returns the number of instructions.
func (p *Program) Len() int { return len(p.instructions) }

// Text renders the program, one instruction per line, with a trailing
// newline when non-empty.
func (p *Program) Text() string {
	if len(p.instructions) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, ins := range p.instructions {
		sb.WriteString(ins.Quil())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (p *Program) String() string { return p.Text() }

// Qubits returns the distinct qubits touched by gates, measurements,
// fences and resets, sorted ascending.
func (p *Program) Qubits() []int {
	seen := make(map[int]struct{})
	for _, ins := range p.instructions {
		switch v := ins.(type) {
		case Gate:
			for _, q := range v.Qubits {
				seen[q] = struct{}{}
			}
		case Measurement:
			seen[v.Qubit] = struct{}{}
		case Fence:
			for _, q := range v.Qubits {
				seen[q] = struct{}{}
			}
		case Reset:
			if v.Qubit != nil {
				seen[*v.Qubit] = struct{}{}
			}
		}
	}
	out := make([]int, 0, len(seen))
	for q := range seen {
		out = append(out, q)
	}
	sort.Ints(out)
	return out
}

// DeclaredSize returns the size of the named memory region, or zero if
// the program never declares it.
func (p *Program) DeclaredSize(name string) int {
	for _, ins := range p.instructions {
		if d, ok := ins.(Declare); ok && d.Name == name {
			return d.Size
		}
	}
	return 0
}

// Measurements returns the measurement instructions in program order.
func (p *Program) Measurements() []Measurement {
	var out []Measurement
	for _, ins := range p.instructions {
		if m, ok := ins.(Measurement); ok {
			out = append(out, m)
		}
	}
	return out
}

// GatesOnly reports whether the program consists solely of gate
// applications. Expectation operators must satisfy this.
func (p *Program) GatesOnly() bool {
	for _, ins := range p.instructions {
		if _, ok := ins.(Gate); !ok {
			return false
		}
	}
	return true
}
