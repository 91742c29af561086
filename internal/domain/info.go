package domain

import (
	"quilbridge/internal/circuit"
	"quilbridge/internal/device"
)

// BackendInfo describes a backend and the device behind it.
type BackendInfo struct {
	// Name of the backend implementation, e.g. "ForestBackend".
	Name string
	// Device is the name of the device the backend drives.
	Device string
	// Version of this package.
	Version string
	// GateSet lists the ops the backend accepts, sorted.
	GateSet []circuit.OpType
	// Characterisation holds the device's coupling map and calibration;
	// nil for backends without one (simulators).
	Characterisation *device.Characterisation
	// Averaged holds per-node and per-coupler mean error rates derived
	// from the characterisation.
	Averaged device.Averaged
}

// Architecture returns the device coupling map, or nil when the
// backend has no characterisation.
func (b BackendInfo) Architecture() *device.Architecture {
	if b.Characterisation == nil {
		return nil
	}
	return b.Characterisation.Architecture
}

// Capabilities states what a backend can do and how it behaves.
type Capabilities struct {
	Shots       bool
	Counts      bool
	State       bool
	Expectation bool

	// PersistentHandles reports whether handles stay valid across
	// processes (backed by a handle store).
	PersistentHandles bool
}
