// Package main runs qvmd, the Quil executor daemon. It simulates
// submitted programs on an in-process statevector simulator and serves
// both the synchronous endpoint (run, wavefunction, expectation) and
// an asynchronous job queue with persistent state.
//
// HTTP API
//
//	POST /qvm
//	    Synchronous execution. The request type selects version info,
//	    multishot sampling, a full wavefunction, or operator
//	    expectation values.
//
//	POST /jobs
//	    Queue a program for asynchronous execution.
//
//	GET /jobs/{id}
//	    Report a job's status.
//
//	GET /jobs/{id}/result
//	    Return a finished job's readout table.
//
//	DELETE /jobs/{id}
//	    Cancel a queued or running job.
//
//	GET /devices?qpus=&qvms=
//	    List the devices this executor advertises.
//
//	GET /metrics
//	    Prometheus metrics.
//
//	GET /healthz
//	    Liveness probe.
//
// Behaviour
//
//   - Jobs are written to the store before they are queued, so a
//     restart requeues anything that had not finished.
//   - With -data unset the job store lives in memory and is lost on
//     exit; point -data at a directory to keep jobs across restarts.
//   - Responses are JSON. Non-2xx statuses carry {"error": "..."}.
//   - The default listen address is 127.0.0.1:5000.
//
// See internal/server for the full endpoint semantics.
package main
