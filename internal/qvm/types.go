package qvm

import "quilbridge/internal/device"

// Synchronous request kinds accepted on POST /qvm.
const (
	TypeMultishot    = "multishot"
	TypeWavefunction = "wavefunction"
	TypeExpectation  = "expectation"
	TypeVersion      = "version"
)

// Job statuses on the wire.
const (
	StatusConnected = "connected"
	StatusLoaded    = "loaded"
	StatusRunning   = "running"
	StatusDone      = "done"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// SyncRequest is the POST /qvm body. Which fields matter depends on
// Type; the field names follow the classic QVM API.
type SyncRequest struct {
	Type         string          `json:"type"`
	CompiledQuil string          `json:"compiled-quil,omitempty"`
	Addresses    map[string]bool `json:"addresses,omitempty"`
	Trials       int             `json:"trials,omitempty"`
	RNGSeed      *int64          `json:"rng-seed,omitempty"`
	StatePrep    string          `json:"state-preparation,omitempty"`
	Operators    []string        `json:"operators,omitempty"`
}

// RunResponse carries a shot table: one row per trial, one column per
// ro bit. The same shape is returned for finished job results.
type RunResponse struct {
	RO [][]int `json:"ro"`
}

// WavefunctionResponse carries amplitudes as [re, im] pairs indexed by
// basis state.
type WavefunctionResponse struct {
	Amplitudes [][2]float64 `json:"amplitudes"`
}

// ExpectationResponse carries one expectation value per operator, in
// request order.
type ExpectationResponse struct {
	Expectations []float64 `json:"expectations"`
}

// VersionResponse reports the server build.
type VersionResponse struct {
	Version string `json:"version"`
}

// JobRequest is the POST /jobs body.
type JobRequest struct {
	Quil  string `json:"quil"`
	Shots int    `json:"shots"`
	Seed  *int64 `json:"seed,omitempty"`
}

// JobInfo describes a job on the wire. Error is set once the job has
// failed; Digest identifies the submitted program text.
type JobInfo struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Digest string `json:"digest,omitempty"`
	Error  string `json:"error,omitempty"`
}

// DevicesResponse lists the devices qvmd serves.
type DevicesResponse struct {
	Devices []device.Description `json:"devices"`
}

// ErrorResponse is the JSON error body qvmd returns with non-2xx codes.
type ErrorResponse struct {
	Error string `json:"error"`
}
