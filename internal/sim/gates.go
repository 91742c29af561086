package sim

import (
	"math"
	"math/cmplx"

	"github.com/pkg/errors"
)

// ErrUnknownGate reports a gate name outside the simulator's table.
var ErrUnknownGate = errors.New("sim: unknown gate")

// gateDef describes one entry of the gate table. build receives the
// radian parameters and returns the row-major matrix.
type gateDef struct {
	qubits int
	params int
	build  func(params []float64) []complex128
}

func fixed(m []complex128) func([]float64) []complex128 {
	return func([]float64) []complex128 { return m }
}

var (
	invSqrt2 = complex(1/math.Sqrt2, 0)

	matI = []complex128{1, 0, 0, 1}
	matX = []complex128{0, 1, 1, 0}
	matY = []complex128{0, -1i, 1i, 0}
	matZ = []complex128{1, 0, 0, -1}
	matH = []complex128{invSqrt2, invSqrt2, invSqrt2, -invSqrt2}
	matS = []complex128{1, 0, 0, 1i}
	matT = []complex128{1, 0, 0, cmplx.Exp(complex(0, math.Pi/4))}

	matCZ = []complex128{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, -1,
	}
	matCNOT = []complex128{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
		0, 0, 1, 0,
	}
	matSWAP = []complex128{
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
	}
	matISWAP = []complex128{
		1, 0, 0, 0,
		0, 0, 1i, 0,
		0, 1i, 0, 0,
		0, 0, 0, 1,
	}
)

func matRX(theta float64) []complex128 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, -math.Sin(theta/2))
	return []complex128{c, s, s, c}
}

func matRY(theta float64) []complex128 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return []complex128{c, -s, s, c}
}

func matRZ(theta float64) []complex128 {
	return []complex128{
		cmplx.Exp(complex(0, -theta/2)), 0,
		0, cmplx.Exp(complex(0, theta/2)),
	}
}

func matPHASE(theta float64) []complex128 {
	return []complex128{1, 0, 0, cmplx.Exp(complex(0, theta))}
}

func matCPHASE(theta float64) []complex128 {
	return []complex128{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, cmplx.Exp(complex(0, theta)),
	}
}

// matXY is the parameterised iSWAP family; XY(pi) == ISWAP.
func matXY(theta float64) []complex128 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, math.Sin(theta/2))
	return []complex128{
		1, 0, 0, 0,
		0, c, s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	}
}

func controlled(m []complex128) []complex128 {
	// Doubles the dimension: identity on the control-0 block, m on the
	// control-1 block.
	dim := 1
	for dim*dim < len(m) {
		dim++
	}
	out := make([]complex128, 4*dim*dim)
	for i := 0; i < dim; i++ {
		out[i*(2*dim)+i] = 1
	}
	for r := 0; r < dim; r++ {
		for c := 0; c < dim; c++ {
			out[(dim+r)*(2*dim)+dim+c] = m[r*dim+c]
		}
	}
	return out
}

var gateTable = map[string]gateDef{
	"I":     {qubits: 1, build: fixed(matI)},
	"X":     {qubits: 1, build: fixed(matX)},
	"Y":     {qubits: 1, build: fixed(matY)},
	"Z":     {qubits: 1, build: fixed(matZ)},
	"H":     {qubits: 1, build: fixed(matH)},
	"S":     {qubits: 1, build: fixed(matS)},
	"T":     {qubits: 1, build: fixed(matT)},
	"RX":    {qubits: 1, params: 1, build: func(p []float64) []complex128 { return matRX(p[0]) }},
	"RY":    {qubits: 1, params: 1, build: func(p []float64) []complex128 { return matRY(p[0]) }},
	"RZ":    {qubits: 1, params: 1, build: func(p []float64) []complex128 { return matRZ(p[0]) }},
	"PHASE": {qubits: 1, params: 1, build: func(p []float64) []complex128 { return matPHASE(p[0]) }},

	"CZ":     {qubits: 2, build: fixed(matCZ)},
	"CNOT":   {qubits: 2, build: fixed(matCNOT)},
	"SWAP":   {qubits: 2, build: fixed(matSWAP)},
	"ISWAP":  {qubits: 2, build: fixed(matISWAP)},
	"CPHASE": {qubits: 2, params: 1, build: func(p []float64) []complex128 { return matCPHASE(p[0]) }},
	"XY":     {qubits: 2, params: 1, build: func(p []float64) []complex128 { return matXY(p[0]) }},

	"CCNOT": {qubits: 3, build: fixed(controlled(matCNOT))},
	"CSWAP": {qubits: 3, build: fixed(controlled(matSWAP))},
}

// GateSpec reports the qubit and parameter arity for a gate name, with
// ok=false for names the simulator does not implement.
func GateSpec(name string) (qubits, params int, ok bool) {
	def, ok := gateTable[name]
	if !ok {
		return 0, 0, false
	}
	return def.qubits, def.params, true
}

// buildGate validates arity and returns the matrix for one application.
func buildGate(name string, params []float64, qubits []int) ([]complex128, error) {
	def, ok := gateTable[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownGate, name)
	}
	if len(qubits) != def.qubits {
		return nil, errors.Errorf("sim: %s takes %d qubits, got %d", name, def.qubits, len(qubits))
	}
	if len(params) != def.params {
		return nil, errors.Errorf("sim: %s takes %d parameters, got %d", name, def.params, len(params))
	}
	seen := make(map[int]struct{}, len(qubits))
	for _, q := range qubits {
		if _, dup := seen[q]; dup {
			return nil, errors.Errorf("sim: %s repeats qubit %d", name, q)
		}
		seen[q] = struct{}{}
	}
	return def.build(params), nil
}
