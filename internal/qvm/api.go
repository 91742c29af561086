package qvm

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"quilbridge/internal/device"
)

// Version fetches the server build string.
func (c *Client) Version(ctx context.Context) (string, error) {
	var out VersionResponse
	if err := c.post(ctx, "/qvm", SyncRequest{Type: TypeVersion}, &out); err != nil {
		return "", err
	}
	return out.Version, nil
}

// Run executes a measured program synchronously and returns the shot
// table. A nil seed leaves the server's RNG free-running.
func (c *Client) Run(ctx context.Context, program string, shots int, seed *int64) ([][]int, error) {
	req := SyncRequest{
		Type:         TypeMultishot,
		CompiledQuil: program,
		Addresses:    map[string]bool{"ro": true},
		Trials:       shots,
		RNGSeed:      seed,
	}
	var out RunResponse
	if err := c.post(ctx, "/qvm", req, &out); err != nil {
		return nil, err
	}
	return out.RO, nil
}

// Wavefunction simulates the program and returns the final amplitudes.
func (c *Client) Wavefunction(ctx context.Context, program string) ([]complex128, error) {
	req := SyncRequest{Type: TypeWavefunction, CompiledQuil: program}
	var out WavefunctionResponse
	if err := c.post(ctx, "/qvm", req, &out); err != nil {
		return nil, err
	}
	amps := make([]complex128, len(out.Amplitudes))
	for i, pair := range out.Amplitudes {
		amps[i] = complex(pair[0], pair[1])
	}
	return amps, nil
}

// Expectation prepares a state and returns <psi|O|psi> for each
// operator program, in order.
func (c *Client) Expectation(ctx context.Context, prep string, operators []string) ([]float64, error) {
	req := SyncRequest{Type: TypeExpectation, StatePrep: prep, Operators: operators}
	var out ExpectationResponse
	if err := c.post(ctx, "/qvm", req, &out); err != nil {
		return nil, err
	}
	return out.Expectations, nil
}

// SubmitJob enqueues a program for asynchronous execution.
func (c *Client) SubmitJob(ctx context.Context, program string, shots int, seed *int64) (JobInfo, error) {
	var out JobInfo
	err := c.post(ctx, "/jobs", JobRequest{Quil: program, Shots: shots, Seed: seed}, &out)
	return out, err
}

// JobStatus fetches the current state of a job.
func (c *Client) JobStatus(ctx context.Context, id string) (JobInfo, error) {
	var out JobInfo
	err := c.get(ctx, "/jobs/"+url.PathEscape(id), nil, &out)
	return out, err
}

// JobResult fetches a finished job's shot table. The server answers
// 404 until the job is done, surfaced here as an *HTTPError.
func (c *Client) JobResult(ctx context.Context, id string) ([][]int, error) {
	var out RunResponse
	if err := c.get(ctx, "/jobs/"+url.PathEscape(id)+"/result", nil, &out); err != nil {
		return nil, err
	}
	return out.RO, nil
}

// CancelJob cancels a queued or running job.
func (c *Client) CancelJob(ctx context.Context, id string) (JobInfo, error) {
	var out JobInfo
	err := c.do(ctx, http.MethodDelete, "/jobs/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// ListDevices fetches the devices qvmd serves, filtered to QPUs, QVMs
// or both.
func (c *Client) ListDevices(ctx context.Context, qpus, qvms bool) ([]device.Description, error) {
	q := url.Values{}
	q.Set("qpus", strconv.FormatBool(qpus))
	q.Set("qvms", strconv.FormatBool(qvms))
	var out DevicesResponse
	if err := c.get(ctx, "/devices", q, &out); err != nil {
		return nil, err
	}
	return out.Devices, nil
}
