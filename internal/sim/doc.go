// Package sim is a dense statevector simulator for the Quil subset the
// QVM serves: multishot sampling, wavefunction snapshots and operator
// expectation values. Basis indices are little-endian, qubit 0 is the
// least significant bit.
package sim
