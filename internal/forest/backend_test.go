// internal/forest/backend_test.go
package forest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quilbridge/internal/circuit"
	"quilbridge/internal/device"
	"quilbridge/internal/domain"
	"quilbridge/internal/forest"
	"quilbridge/internal/qvm"
	"quilbridge/internal/server"
	"quilbridge/internal/store"
)

// startExecutor runs a full in-process qvmd over an in-memory job
// store and returns a client pointed at it.
func startExecutor(t *testing.T, devices ...server.DeviceConfig) *qvm.Client {
	t.Helper()
	cfg := server.Config{Devices: devices}.WithDefaults()
	st, err := server.OpenMemoryJobStore()
	require.NoError(t, err)
	m := server.NewManager(cfg, st, zap.NewNop())
	require.NoError(t, m.Start(context.Background()))
	srv, err := server.NewServer(cfg, m, zap.NewNop())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		m.Stop()
		st.Close()
	})
	return qvm.NewClient(&qvm.ClientConfig{BaseURL: ts.URL})
}

func lineDeviceConfig() server.DeviceConfig {
	return server.DeviceConfig{
		Name: "3q-line", Topology: "grid", Rows: 1, Cols: 3,
		QPU: true, F1QRB: 0.999, FCZ: 0.99, FRO: 0.95,
	}
}

func lineDescription(t *testing.T) device.Description {
	t.Helper()
	d, err := lineDeviceConfig().Description()
	require.NoError(t, err)
	return d
}

func fakeClient(ts *httptest.Server) *qvm.Client {
	return qvm.NewClient(&qvm.ClientConfig{BaseURL: ts.URL})
}

func bellCircuit(t *testing.T) *circuit.Circuit {
	t.Helper()
	c := circuit.New(2, 2)
	require.NoError(t, c.H(0))
	require.NoError(t, c.CX(0, 1))
	require.NoError(t, c.MeasureAll())
	return c
}

func TestBackend_EndToEndBellCircuit(t *testing.T) {
	client := startExecutor(t, lineDeviceConfig())
	ctx := context.Background()

	desc, err := forest.FindDevice(ctx, client, "3q-line")
	require.NoError(t, err)
	b, err := forest.NewBackend(client, desc, nil)
	require.NoError(t, err)

	c := bellCircuit(t)
	_, err = b.DefaultCompilationPass(1).Apply(c)
	require.NoError(t, err)
	require.NoError(t, circuit.VerifyAll(c, b.RequiredPredicates()))

	handles, err := b.ProcessCircuits(ctx, []*circuit.Circuit{c}, []int{64}, domain.ProcessOptions{Seed: 9})
	require.NoError(t, err)
	require.Len(t, handles, 1)

	res, err := domain.WaitResult(ctx, b, handles[0], 10*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, res.Shots, 64)
	require.Equal(t, []circuit.Bit{circuit.B(0), circuit.B(1)}, res.Bits)

	counts := res.Counts()
	require.Equal(t, 64, counts["00"]+counts["11"], "bell states must be correlated: %v", counts)
	require.Positive(t, counts["00"])
	require.Positive(t, counts["11"])

	st, err := b.CircuitStatus(ctx, handles[0])
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, st.Status)
}

func TestBackend_SeededBatchIsReproducible(t *testing.T) {
	client := startExecutor(t, lineDeviceConfig())
	ctx := context.Background()

	desc, err := forest.FindDevice(ctx, client, "")
	require.NoError(t, err)
	b, err := forest.NewBackend(client, desc, nil)
	require.NoError(t, err)

	run := func() *domain.Result {
		c := bellCircuit(t)
		_, err := b.DefaultCompilationPass(2).Apply(c)
		require.NoError(t, err)
		handles, err := b.ProcessCircuits(ctx, []*circuit.Circuit{c}, []int{32}, domain.ProcessOptions{Seed: 41})
		require.NoError(t, err)
		res, err := domain.WaitResult(ctx, b, handles[0], 10*time.Millisecond)
		require.NoError(t, err)
		return res
	}

	require.Equal(t, run().Shots, run().Shots)
}

func TestBackend_PersistentHandles_SurviveRebuild(t *testing.T) {
	client := startExecutor(t, lineDeviceConfig())
	ctx := context.Background()
	desc, err := forest.FindDevice(ctx, client, "3q-line")
	require.NoError(t, err)

	handleStore, err := store.NewHandleStore(t.TempDir())
	require.NoError(t, err)

	first, err := forest.NewBackend(client, desc, handleStore)
	require.NoError(t, err)
	require.True(t, first.Capabilities().PersistentHandles)

	c := bellCircuit(t)
	_, err = first.DefaultCompilationPass(1).Apply(c)
	require.NoError(t, err)
	handles, err := first.ProcessCircuits(ctx, []*circuit.Circuit{c}, []int{16}, domain.ProcessOptions{Seed: 3})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		st, err := first.CircuitStatus(ctx, handles[0])
		return err == nil && st.Status == domain.StatusCompleted
	}, 10*time.Second, 10*time.Millisecond)

	// A later process sees only the handle string and the store.
	parsed, err := domain.ParseHandle(handles[0].String())
	require.NoError(t, err)
	second, err := forest.NewBackend(client, desc, handleStore)
	require.NoError(t, err)

	res, err := second.Result(ctx, parsed)
	require.NoError(t, err)
	require.Len(t, res.Shots, 16)
	require.Equal(t, []circuit.Bit{circuit.B(0), circuit.B(1)}, res.Bits)

	st, err := second.CircuitStatus(ctx, parsed)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, st.Status)
}

func TestBackend_ZeroMeasureCircuitShortCircuits(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		http.Error(w, "unexpected", http.StatusInternalServerError)
	}))
	defer ts.Close()

	b, err := forest.NewBackend(fakeClient(ts), lineDescription(t), nil)
	require.NoError(t, err)

	c := circuit.New(1, 0)
	require.NoError(t, c.Rz(0.5, 0))
	handles, err := b.ProcessCircuits(context.Background(), []*circuit.Circuit{c}, []int{5},
		domain.ProcessOptions{SkipValidCheck: true})
	require.NoError(t, err)

	st, err := b.CircuitStatus(context.Background(), handles[0])
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, st.Status)

	res, err := b.Result(context.Background(), handles[0])
	require.NoError(t, err)
	require.Equal(t, 5, res.NShots())
	require.Empty(t, res.Bits)
}

func TestBackend_SubmitCarriesShotsSeedAndReset(t *testing.T) {
	requests := make(chan qvm.JobRequest, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/jobs", r.URL.Path)
		var req qvm.JobRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests <- req
		json.NewEncoder(w).Encode(qvm.JobInfo{ID: "job-1", Status: qvm.StatusLoaded})
	}))
	defer ts.Close()

	b, err := forest.NewBackend(fakeClient(ts), lineDescription(t), nil)
	require.NoError(t, err)

	c := circuit.New(1, 1)
	require.NoError(t, c.Rx(1, 0))
	require.NoError(t, c.Measure(0, 0))
	_, err = b.ProcessCircuits(context.Background(), []*circuit.Circuit{c}, []int{7},
		domain.ProcessOptions{SkipValidCheck: true, Seed: 5})
	require.NoError(t, err)

	got := <-requests
	require.Equal(t, 7, got.Shots)
	require.NotNil(t, got.Seed)
	require.Equal(t, int64(5), *got.Seed)
	require.Contains(t, got.Quil, "RESET")
	require.Contains(t, got.Quil, "DECLARE ro BIT[1]")
	require.Contains(t, got.Quil, "MEASURE 0 ro[0]")
}

func TestBackend_ResultFiltersUnmeasuredColumns(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/jobs":
			json.NewEncoder(w).Encode(qvm.JobInfo{ID: "job-9", Status: qvm.StatusLoaded})
		case r.Method == http.MethodGet && r.URL.Path == "/jobs/job-9/result":
			json.NewEncoder(w).Encode(qvm.RunResponse{RO: [][]int{{1, 1, 0}, {0, 1, 1}}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	b, err := forest.NewBackend(fakeClient(ts), lineDescription(t), nil)
	require.NoError(t, err)

	// Bits c[0] and c[2] are measured; column c[1] is the executor's
	// padding and must be cut.
	c := circuit.New(3, 3)
	require.NoError(t, c.Measure(0, 0))
	require.NoError(t, c.Measure(2, 2))
	handles, err := b.ProcessCircuits(context.Background(), []*circuit.Circuit{c}, []int{2},
		domain.ProcessOptions{SkipValidCheck: true})
	require.NoError(t, err)

	res, err := b.Result(context.Background(), handles[0])
	require.NoError(t, err)
	require.Equal(t, [][]int{{1, 0}, {0, 1}}, res.Shots)
	require.Equal(t, []circuit.Bit{circuit.B(0), circuit.B(2)}, res.Bits)
}

func TestBackend_CircuitStatusMapping(t *testing.T) {
	var (
		mu   sync.Mutex
		wire = qvm.JobInfo{ID: "job-2", Status: qvm.StatusLoaded}
	)
	setWire := func(info qvm.JobInfo) {
		mu.Lock()
		wire = info
		mu.Unlock()
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/jobs":
			json.NewEncoder(w).Encode(qvm.JobInfo{ID: "job-2", Status: qvm.StatusLoaded})
		case r.Method == http.MethodGet && r.URL.Path == "/jobs/job-2":
			mu.Lock()
			info := wire
			mu.Unlock()
			json.NewEncoder(w).Encode(info)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	b, err := forest.NewBackend(fakeClient(ts), lineDescription(t), nil)
	require.NoError(t, err)

	c := circuit.New(1, 1)
	require.NoError(t, c.Measure(0, 0))
	handles, err := b.ProcessCircuits(context.Background(), []*circuit.Circuit{c}, []int{1},
		domain.ProcessOptions{SkipValidCheck: true})
	require.NoError(t, err)
	h := handles[0]

	cases := []struct {
		wire string
		want domain.Status
	}{
		{qvm.StatusConnected, domain.StatusSubmitted},
		{qvm.StatusLoaded, domain.StatusSubmitted},
		{qvm.StatusRunning, domain.StatusRunning},
		{qvm.StatusDone, domain.StatusCompleted},
		{qvm.StatusCancelled, domain.StatusCancelled},
	}
	for _, tc := range cases {
		setWire(qvm.JobInfo{ID: "job-2", Status: tc.wire})
		st, err := b.CircuitStatus(context.Background(), h)
		require.NoError(t, err, tc.wire)
		require.Equal(t, tc.want, st.Status, tc.wire)
	}

	setWire(qvm.JobInfo{ID: "job-2", Status: qvm.StatusFailed, Error: "register too wide"})
	st, err := b.CircuitStatus(context.Background(), h)
	require.NoError(t, err)
	require.Equal(t, domain.StatusErrored, st.Status)
	require.Equal(t, "register too wide", st.Message)

	setWire(qvm.JobInfo{ID: "job-2", Status: "exploded"})
	_, err = b.CircuitStatus(context.Background(), h)
	require.ErrorIs(t, err, domain.ErrJobStatusUnavailable)
}

func TestBackend_UnknownHandleIsCircuitNotRun(t *testing.T) {
	client := startExecutor(t, lineDeviceConfig())
	b, err := forest.NewBackend(client, lineDescription(t), nil)
	require.NoError(t, err)

	var notRun domain.CircuitNotRunError
	_, err = b.CircuitStatus(context.Background(), domain.NewHandle())
	require.ErrorAs(t, err, &notRun)

	_, err = b.Result(context.Background(), domain.NewHandle())
	require.ErrorAs(t, err, &notRun)
}

func TestBackend_ValidCheckRejectsForeignGates(t *testing.T) {
	client := startExecutor(t, lineDeviceConfig())
	b, err := forest.NewBackend(client, lineDescription(t), nil)
	require.NoError(t, err)

	c := circuit.New(1, 1)
	require.NoError(t, c.H(0))
	require.NoError(t, c.Measure(0, 0))

	_, err = b.ProcessCircuits(context.Background(), []*circuit.Circuit{c}, []int{1}, domain.ProcessOptions{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "GateSet")
}

func TestBackend_ShotsListMismatchFails(t *testing.T) {
	client := startExecutor(t, lineDeviceConfig())
	b, err := forest.NewBackend(client, lineDescription(t), nil)
	require.NoError(t, err)

	cs := []*circuit.Circuit{circuit.New(1, 0), circuit.New(1, 0), circuit.New(1, 0)}
	_, err = b.ProcessCircuits(context.Background(), cs, []int{1, 2}, domain.ProcessOptions{SkipValidCheck: true})
	require.Error(t, err)
}

func TestBackend_InfoDescribesDevice(t *testing.T) {
	client := startExecutor(t, lineDeviceConfig())
	b, err := forest.NewBackend(client, lineDescription(t), nil)
	require.NoError(t, err)

	info := b.Info()
	require.Equal(t, "ForestBackend", info.Name)
	require.Equal(t, "3q-line", info.Device)
	require.NotNil(t, info.Characterisation)
	require.Len(t, info.Architecture().Nodes(), 3)
	require.Contains(t, info.GateSet, circuit.CZ)
	require.Contains(t, info.GateSet, circuit.Measure)
	require.NotEmpty(t, info.Averaged.NodeErrors)

	caps := b.Capabilities()
	require.True(t, caps.Shots)
	require.True(t, caps.Counts)
	require.False(t, caps.State)
	require.False(t, caps.PersistentHandles)
}

func TestAvailableDevices_FiltersAndCharacterises(t *testing.T) {
	client := startExecutor(t,
		lineDeviceConfig(),
		server.DeviceConfig{Name: "4q-sim", Topology: "ring", Qubits: 4},
	)
	ctx := context.Background()

	qpus, err := forest.AvailableDevices(ctx, client, true, false)
	require.NoError(t, err)
	require.Len(t, qpus, 1)
	require.Equal(t, "3q-line", qpus[0].Device)
	require.NotNil(t, qpus[0].Characterisation)
	require.Len(t, qpus[0].Architecture().Nodes(), 3)

	all, err := forest.AvailableDevices(ctx, client, true, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestFindDevice_EmptyNamePrefersQPU(t *testing.T) {
	client := startExecutor(t,
		server.DeviceConfig{Name: "4q-sim", Topology: "ring", Qubits: 4},
		lineDeviceConfig(),
	)
	ctx := context.Background()

	d, err := forest.FindDevice(ctx, client, "")
	require.NoError(t, err)
	require.Equal(t, "3q-line", d.Name)

	d, err = forest.FindDevice(ctx, client, "4q-sim")
	require.NoError(t, err)
	require.Equal(t, "4q-sim", d.Name)

	_, err = forest.FindDevice(ctx, client, "nope")
	require.Error(t, err)
	require.Contains(t, err.Error(), "nope")
}
