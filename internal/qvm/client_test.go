// internal/qvm/client_test.go
package qvm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"quilbridge/internal/qvm"
)

func testClient(t *testing.T, handler http.Handler) *qvm.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return qvm.NewClient(&qvm.ClientConfig{BaseURL: srv.URL})
}

func TestRun_SendsMultishotRequest(t *testing.T) {
	var got qvm.SyncRequest
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/qvm", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "quilbridge/"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(qvm.RunResponse{RO: [][]int{{0, 1}, {1, 1}}})
	}))

	seed := int64(42)
	table, err := client.Run(context.Background(), "DECLARE ro BIT[2]\nX 0\n", 2, &seed)
	require.NoError(t, err)
	require.Equal(t, [][]int{{0, 1}, {1, 1}}, table)

	require.Equal(t, qvm.TypeMultishot, got.Type)
	require.Equal(t, "DECLARE ro BIT[2]\nX 0\n", got.CompiledQuil)
	require.Equal(t, map[string]bool{"ro": true}, got.Addresses)
	require.Equal(t, 2, got.Trials)
	require.NotNil(t, got.RNGSeed)
	require.Equal(t, int64(42), *got.RNGSeed)
}

func TestWavefunction_DecodesAmplitudePairs(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req qvm.SyncRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, qvm.TypeWavefunction, req.Type)
		json.NewEncoder(w).Encode(qvm.WavefunctionResponse{
			Amplitudes: [][2]float64{{0.6, 0}, {0, 0.8}},
		})
	}))

	amps, err := client.Wavefunction(context.Background(), "H 0\n")
	require.NoError(t, err)
	require.Equal(t, []complex128{complex(0.6, 0), complex(0, 0.8)}, amps)
}

func TestExpectation_SendsOperators(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req qvm.SyncRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, qvm.TypeExpectation, req.Type)
		require.Equal(t, "X 0\n", req.StatePrep)
		require.Equal(t, []string{"Z 0\n", "X 0\n"}, req.Operators)
		json.NewEncoder(w).Encode(qvm.ExpectationResponse{Expectations: []float64{-1, 0}})
	}))

	vals, err := client.Expectation(context.Background(), "X 0\n", []string{"Z 0\n", "X 0\n"})
	require.NoError(t, err)
	require.Equal(t, []float64{-1, 0}, vals)
}

func TestVersion(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(qvm.VersionResponse{Version: "qvmd 1.0.0"})
	}))

	v, err := client.Version(context.Background())
	require.NoError(t, err)
	require.Equal(t, "qvmd 1.0.0", v)
}

func TestSubmitJob_RoundTrip(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/jobs", r.URL.Path)
		var req qvm.JobRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, 100, req.Shots)
		require.Nil(t, req.Seed)
		json.NewEncoder(w).Encode(qvm.JobInfo{
			ID: "job-1", Status: qvm.StatusLoaded, Digest: "abc123",
		})
	}))

	info, err := client.SubmitJob(context.Background(), "DECLARE ro BIT[1]\nMEASURE 0 ro[0]\n", 100, nil)
	require.NoError(t, err)
	require.Equal(t, "job-1", info.ID)
	require.Equal(t, qvm.StatusLoaded, info.Status)
	require.Equal(t, "abc123", info.Digest)
}

func TestJobStatus_PathAndDecode(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/jobs/job-9", r.URL.Path)
		json.NewEncoder(w).Encode(qvm.JobInfo{
			ID: "job-9", Status: qvm.StatusFailed, Error: "undeclared memory region",
		})
	}))

	info, err := client.JobStatus(context.Background(), "job-9")
	require.NoError(t, err)
	require.Equal(t, qvm.StatusFailed, info.Status)
	require.Equal(t, "undeclared memory region", info.Error)
}

func TestJobResult_NotReadyIsHTTPError(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(qvm.ErrorResponse{Error: "job job-2 has no result yet"})
	}))

	_, err := client.JobResult(context.Background(), "job-2")
	var httpErr *qvm.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	require.Equal(t, "job job-2 has no result yet", httpErr.Message)
}

func TestCancelJob_UsesDelete(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/jobs/job-3", r.URL.Path)
		json.NewEncoder(w).Encode(qvm.JobInfo{ID: "job-3", Status: qvm.StatusCancelled})
	}))

	info, err := client.CancelJob(context.Background(), "job-3")
	require.NoError(t, err)
	require.Equal(t, qvm.StatusCancelled, info.Status)
}

func TestListDevices_SetsFilters(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/devices", r.URL.Path)
		require.Equal(t, "true", r.URL.Query().Get("qpus"))
		require.Equal(t, "false", r.URL.Query().Get("qvms"))
		w.Write([]byte(`{"devices":[{"name":"9q-square","is_qpu":true}]}`))
	}))

	devices, err := client.ListDevices(context.Background(), true, false)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	require.Equal(t, "9q-square", devices[0].Name)
	require.True(t, devices[0].QPU)
}

func TestDo_RetriesServerErrors(t *testing.T) {
	attempts := 0
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(qvm.ErrorResponse{Error: "busy"})
			return
		}
		json.NewEncoder(w).Encode(qvm.VersionResponse{Version: "ok"})
	}))

	v, err := client.Version(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", v)
	require.Equal(t, 3, attempts)
}

func TestDo_DoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(qvm.ErrorResponse{Error: "parse error at line 1"})
	}))

	_, err := client.SubmitJob(context.Background(), "BAD QUIL", 1, nil)
	var httpErr *qvm.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	require.Equal(t, "parse error at line 1", httpErr.Message)
	require.Equal(t, 1, attempts)
}
