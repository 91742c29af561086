package quil

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrSyntax wraps all parse failures.
var ErrSyntax = errors.New("quil: syntax error")

// Parse reads wire-syntax Quil back into a Program. It covers the
// subset this package renders plus the angle spellings humans write
// (pi, -pi/2, 0.5*pi).
func Parse(text string) (*Program, error) {
	p := NewProgram()
	for n, raw := range strings.Split(text, "\n") {
		line := raw
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ins, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrSyntax, n+1, err)
		}
		p.Add(ins)
	}
	return p, nil
}

func parseLine(line string) (Instruction, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "DECLARE":
		return parseDeclare(fields)
	case "MEASURE":
		return parseMeasure(fields)
	case "FENCE":
		qs, err := parseQubits(fields[1:])
		if err != nil {
			return nil, err
		}
		return Fence{Qubits: qs}, nil
	case "RESET":
		if len(fields) == 1 {
			return Reset{}, nil
		}
		q, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("reset qubit %q", fields[1])
		}
		return Reset{Qubit: &q}, nil
	case "HALT":
		return Halt{}, nil
	case "PRAGMA":
		if len(fields) < 2 {
			return nil, errors.New("pragma without a name")
		}
		return Pragma{Name: fields[1], Args: fields[2:]}, nil
	default:
		return parseGate(line)
	}
}

func parseDeclare(fields []string) (Instruction, error) {
	if len(fields) != 3 {
		return nil, errors.New("declare wants NAME TYPE[SIZE]")
	}
	open := strings.IndexByte(fields[2], '[')
	end := strings.IndexByte(fields[2], ']')
	if open < 0 || end < open {
		// Bare type means size one.
		return Declare{Name: fields[1], Type: fields[2], Size: 1}, nil
	}
	size, err := strconv.Atoi(fields[2][open+1 : end])
	if err != nil || size < 1 {
		return nil, fmt.Errorf("declare size %q", fields[2])
	}
	return Declare{Name: fields[1], Type: fields[2][:open], Size: size}, nil
}

func parseMeasure(fields []string) (Instruction, error) {
	if len(fields) < 2 || len(fields) > 3 {
		return nil, errors.New("measure wants QUBIT [TARGET]")
	}
	q, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("measure qubit %q", fields[1])
	}
	if len(fields) == 2 {
		return Measurement{Qubit: q}, nil
	}
	ref, err := parseMemoryRef(fields[2])
	if err != nil {
		return nil, err
	}
	return Measurement{Qubit: q, Target: &ref}, nil
}

func parseMemoryRef(s string) (MemoryRef, error) {
	open := strings.IndexByte(s, '[')
	end := strings.IndexByte(s, ']')
	if open <= 0 || end != len(s)-1 {
		return MemoryRef{}, fmt.Errorf("memory reference %q", s)
	}
	idx, err := strconv.Atoi(s[open+1 : end])
	if err != nil || idx < 0 {
		return MemoryRef{}, fmt.Errorf("memory index %q", s)
	}
	return MemoryRef{Name: s[:open], Index: idx}, nil
}

func parseGate(line string) (Instruction, error) {
	var params []float64
	if open := strings.IndexByte(line, '('); open >= 0 {
		end := strings.IndexByte(line, ')')
		if end < open {
			return nil, errors.New("unbalanced parentheses")
		}
		name := line[:open]
		for _, part := range strings.Split(line[open+1:end], ",") {
			v, err := parseAngle(part)
			if err != nil {
				return nil, err
			}
			params = append(params, v)
		}
		line = name + line[end+1:]
	}
	fields := strings.Fields(line)
	if !validGateName(fields[0]) {
		return nil, fmt.Errorf("gate name %q", fields[0])
	}
	qs, err := parseQubits(fields[1:])
	if err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("gate %s without qubits", fields[0])
	}
	return Gate{Name: fields[0], Params: params, Qubits: qs}, nil
}

func parseQubits(fields []string) ([]int, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]int, len(fields))
	for i, f := range fields {
		q, err := strconv.Atoi(f)
		if err != nil || q < 0 {
			return nil, fmt.Errorf("qubit %q", f)
		}
		out[i] = q
	}
	return out, nil
}

func validGateName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case i > 0 && (r == '-' || r == '_' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return true
}

// parseAngle accepts plain floats plus the pi spellings: pi, -pi,
// pi/2, 1.5*pi.
func parseAngle(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty parameter")
	}
	sign := 1.0
	if s[0] == '+' || s[0] == '-' {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	switch {
	case s == "pi":
		return sign * math.Pi, nil
	case strings.HasPrefix(s, "pi/"):
		den, err := strconv.ParseFloat(s[len("pi/"):], 64)
		if err != nil || den == 0 {
			return 0, fmt.Errorf("parameter %q", s)
		}
		return sign * math.Pi / den, nil
	case strings.HasSuffix(s, "*pi"):
		mul, err := strconv.ParseFloat(s[:len(s)-len("*pi")], 64)
		if err != nil {
			return 0, fmt.Errorf("parameter %q", s)
		}
		return sign * mul * math.Pi, nil
	default:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("parameter %q", s)
		}
		return sign * v, nil
	}
}
