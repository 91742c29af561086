// internal/server/manager_test.go
package server_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quilbridge/internal/digest"
	"quilbridge/internal/quil"
	"quilbridge/internal/qvm"
	"quilbridge/internal/server"
)

const measuredX = "DECLARE ro BIT[1]\nX 0\nMEASURE 0 ro[0]"

// newManager builds a manager over an in-memory store. start controls
// whether the worker pool runs; leaving it stopped keeps submitted
// jobs queued, which makes pre-run states observable.
func newManager(t *testing.T, cfg server.Config, start bool) *server.Manager {
	t.Helper()
	store, err := server.OpenMemoryJobStore()
	require.NoError(t, err)
	m := server.NewManager(cfg.WithDefaults(), store, zap.NewNop())
	if start {
		require.NoError(t, m.Start(context.Background()))
	}
	t.Cleanup(func() {
		m.Stop()
		store.Close()
	})
	return m
}

func waitTerminal(t *testing.T, m *server.Manager, id string) *server.Job {
	t.Helper()
	var j *server.Job
	require.Eventually(t, func() bool {
		var err error
		j, err = m.Job(id)
		return err == nil && j.Terminal()
	}, 10*time.Second, 5*time.Millisecond)
	return j
}

func TestManager_Submit_RunsJobToDone(t *testing.T) {
	m := newManager(t, server.Config{}, true)

	j, err := m.Submit(measuredX, 20, nil)
	require.NoError(t, err)
	require.NotEmpty(t, j.ID)
	require.Equal(t, digest.Hex([]byte(measuredX)), j.Digest)

	final := waitTerminal(t, m, j.ID)
	require.Equal(t, qvm.StatusDone, final.Status)
	require.Len(t, final.Result, 20)
	for _, row := range final.Result {
		require.Equal(t, []int{1}, row)
	}
	require.NotNil(t, final.StartedAt)
	require.NotNil(t, final.EndedAt)
}

func TestManager_Submit_RejectsBadProgram(t *testing.T) {
	m := newManager(t, server.Config{}, true)

	_, err := m.Submit("FROB 0", 1, nil)
	require.ErrorIs(t, err, quil.ErrSyntax)
}

func TestManager_WideProgramFails(t *testing.T) {
	m := newManager(t, server.Config{MaxQubits: 2}, true)

	j, err := m.Submit("DECLARE ro BIT[1]\nX 5\nMEASURE 5 ro[0]", 1, nil)
	require.NoError(t, err)

	final := waitTerminal(t, m, j.ID)
	require.Equal(t, qvm.StatusFailed, final.Status)
	require.NotEmpty(t, final.Error)
}

func TestManager_SeededJobsAreDeterministic(t *testing.T) {
	m := newManager(t, server.Config{}, true)
	program := "DECLARE ro BIT[1]\nH 0\nMEASURE 0 ro[0]"
	seed := int64(7)

	a, err := m.Submit(program, 50, &seed)
	require.NoError(t, err)
	b, err := m.Submit(program, 50, &seed)
	require.NoError(t, err)

	finalA := waitTerminal(t, m, a.ID)
	finalB := waitTerminal(t, m, b.ID)
	require.Equal(t, qvm.StatusDone, finalA.Status)
	require.Equal(t, finalA.Result, finalB.Result)
}

func TestManager_Cancel_QueuedJob(t *testing.T) {
	m := newManager(t, server.Config{}, false)

	j, err := m.Submit(measuredX, 1, nil)
	require.NoError(t, err)
	require.Equal(t, qvm.StatusLoaded, j.Status)

	cancelled, err := m.Cancel(j.ID)
	require.NoError(t, err)
	require.Equal(t, qvm.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.EndedAt)

	_, err = m.Cancel(j.ID)
	require.ErrorIs(t, err, server.ErrJobTerminal)
}

func TestManager_Cancel_UnknownJob(t *testing.T) {
	m := newManager(t, server.Config{}, false)

	_, err := m.Cancel("nope")
	require.ErrorIs(t, err, server.ErrJobNotFound)
}

func TestManager_CancelledJobStaysCancelledAfterStart(t *testing.T) {
	m := newManager(t, server.Config{}, false)

	j, err := m.Submit(measuredX, 1, nil)
	require.NoError(t, err)
	_, err = m.Cancel(j.ID)
	require.NoError(t, err)

	require.NoError(t, m.Start(context.Background()))

	// Give a worker the chance to dequeue the cancelled id.
	time.Sleep(50 * time.Millisecond)
	final, err := m.Job(j.ID)
	require.NoError(t, err)
	require.Equal(t, qvm.StatusCancelled, final.Status)
	require.Nil(t, final.Result)
}

func TestManager_QueueFull_RejectsSubmit(t *testing.T) {
	m := newManager(t, server.Config{QueueSize: 1}, false)

	first, err := m.Submit(measuredX, 1, nil)
	require.NoError(t, err)
	require.Equal(t, qvm.StatusLoaded, first.Status)

	second, err := m.Submit(measuredX, 1, nil)
	require.NoError(t, err)
	require.Equal(t, qvm.StatusConnected, second.Status)

	_, err = m.Submit(measuredX, 1, nil)
	require.ErrorIs(t, err, server.ErrQueueFull)
}

func TestManager_ParkedJobRunsOnceQueueDrains(t *testing.T) {
	m := newManager(t, server.Config{QueueSize: 1, Workers: 1}, false)

	first, err := m.Submit(measuredX, 1, nil)
	require.NoError(t, err)
	parked, err := m.Submit(measuredX, 1, nil)
	require.NoError(t, err)
	require.Equal(t, qvm.StatusConnected, parked.Status)

	require.NoError(t, m.Start(context.Background()))

	require.Equal(t, qvm.StatusDone, waitTerminal(t, m, first.ID).Status)
	require.Equal(t, qvm.StatusDone, waitTerminal(t, m, parked.ID).Status)
}

func TestManager_Restart_RequeuesUnfinishedJobs(t *testing.T) {
	dir := t.TempDir()

	store, err := server.OpenJobStore(dir)
	require.NoError(t, err)
	stopped := server.NewManager(server.Config{}.WithDefaults(), store, zap.NewNop())
	j, err := stopped.Submit(measuredX, 3, nil)
	require.NoError(t, err)
	require.Equal(t, qvm.StatusLoaded, j.Status)
	require.NoError(t, store.Close())

	reopened, err := server.OpenJobStore(dir)
	require.NoError(t, err)
	m := server.NewManager(server.Config{}.WithDefaults(), reopened, zap.NewNop())
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(func() {
		m.Stop()
		reopened.Close()
	})

	final := waitTerminal(t, m, j.ID)
	require.Equal(t, qvm.StatusDone, final.Status)
	require.Equal(t, [][]int{{1}, {1}, {1}}, final.Result)
}

func TestManager_Jobs_NewestFirst(t *testing.T) {
	m := newManager(t, server.Config{}, false)

	a, err := m.Submit(measuredX, 1, nil)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	b, err := m.Submit(measuredX, 1, nil)
	require.NoError(t, err)

	jobs, err := m.Jobs()
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	require.Equal(t, b.ID, jobs[0].ID)
	require.Equal(t, a.ID, jobs[1].ID)
}
