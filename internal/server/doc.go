// Package server implements the qvmd HTTP service: a Quil simulator
// daemon with a synchronous endpoint for small interactive requests
// and a persistent job queue for batched shot execution.
//
// HTTP API
//
//	POST /qvm
//	    Synchronous execution. The "type" field selects the operation:
//	    multishot (sample a measured program), wavefunction (return the
//	    final amplitudes as [re, im] pairs), expectation (Hermitian
//	    operator expectations against a prepared state) or version.
//
//	POST /jobs
//	    Enqueue a program for asynchronous execution. Returns the job
//	    id, its BLAKE2b program digest and the initial status. Answers
//	    429 when the backlog is full.
//
//	GET /jobs/{id}
//	    Return the job's current status (connected, loaded, running,
//	    done, failed or cancelled).
//
//	GET /jobs/{id}/result
//	    Return the shot table once the job is done. Answers 404 while
//	    the job is still pending and 409 if it failed or was cancelled.
//
//	DELETE /jobs/{id}
//	    Cancel a queued or running job. Answers 409 once the job has
//	    reached a terminal status.
//
//	GET /devices?qpus=BOOL&qvms=BOOL
//	    List the advertised device descriptions, filtered by kind.
//	    Absent parameters default to qpus=true, qvms=false.
//
//	GET /metrics
//	    Prometheus metrics.
//
//	GET /healthz
//	    Liveness probe.
//
// Behaviour
//
//   - Jobs are persisted before they are queued. On restart the daemon
//     requeues every job that had not reached a terminal status.
//   - When the worker queue is full, submissions park in the connected
//     state and a retry loop drains them as slots free up. Submissions
//     beyond the configured backlog are rejected with 429.
//   - Responses are JSON. Non-2xx statuses carry {"error": "..."}.
//   - Programs are bounded by the configured register width; wider
//     programs are rejected rather than swapped to disk.
package server
