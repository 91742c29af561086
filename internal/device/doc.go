// Package device models quantum device descriptions: the wire form
// served by the devices endpoint, the coupling-map graph, and the
// error characterisation derived from calibration fidelities.
package device
