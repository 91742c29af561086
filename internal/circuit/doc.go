// Package circuit defines the local intermediate representation for
// quantum circuits: typed qubit/bit units, an operation vocabulary,
// ordered command lists with a tracked global phase, and the validity
// predicates backends use to decide whether a circuit can run as-is.
//
// Rotation parameters and the global phase are expressed in half-turns
// (multiples of pi), so a value of 1.0 means a rotation by pi radians.
package circuit
