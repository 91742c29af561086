// Package convert translates between the circuit IR and Quil programs.
// Circuit angles are half-turns; Quil angles are radians. Conversion
// is lossy only for ops the other side cannot express, which surface
// as UnsupportedError.
package convert
