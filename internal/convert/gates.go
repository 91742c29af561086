package convert

import (
	"fmt"

	"quilbridge/internal/circuit"
)

// quilNames maps circuit ops to Quil standard gate names. Ops absent
// here (CY, conditional anything) have no Quil spelling and fail
// conversion.
var quilNames = map[circuit.OpType]string{
	circuit.Noop:  "I",
	circuit.X:     "X",
	circuit.Y:     "Y",
	circuit.Z:     "Z",
	circuit.H:     "H",
	circuit.S:     "S",
	circuit.T:     "T",
	circuit.Rx:    "RX",
	circuit.Ry:    "RY",
	circuit.Rz:    "RZ",
	circuit.U1:    "PHASE",
	circuit.CX:    "CNOT",
	circuit.CZ:    "CZ",
	circuit.CU1:   "CPHASE",
	circuit.CCX:   "CCNOT",
	circuit.SWAP:  "SWAP",
	circuit.CSWAP: "CSWAP",
	circuit.ISWAP: "ISWAP",
}

// opsByQuilName is the inverse of quilNames.
var opsByQuilName = func() map[string]circuit.OpType {
	out := make(map[string]circuit.OpType, len(quilNames))
	for op, name := range quilNames {
		out[name] = op
	}
	return out
}()

// UnsupportedError reports an op or instruction the target
// representation cannot express.
type UnsupportedError struct {
	Msg string
}

func (e *UnsupportedError) Error() string { return "convert: " + e.Msg }

func unsupportedf(format string, args ...interface{}) error {
	return &UnsupportedError{Msg: fmt.Sprintf(format, args...)}
}
