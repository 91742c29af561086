// internal/server/jobstore_test.go
package server_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quilbridge/internal/qvm"
	"quilbridge/internal/server"
)

func sampleJob(id string) *server.Job {
	seed := int64(42)
	started := time.Date(2025, 3, 1, 10, 0, 1, 0, time.UTC)
	ended := time.Date(2025, 3, 1, 10, 0, 2, 0, time.UTC)
	return &server.Job{
		ID:        id,
		Program:   "DECLARE ro BIT[1]\nX 0\nMEASURE 0 ro[0]",
		Shots:     5,
		Seed:      &seed,
		Digest:    "abc123",
		Status:    qvm.StatusDone,
		Result:    [][]int{{1}, {1}, {1}, {1}, {1}},
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		StartedAt: &started,
		EndedAt:   &ended,
	}
}

func TestJobStore_PutGetRoundTrip(t *testing.T) {
	store, err := server.OpenMemoryJobStore()
	require.NoError(t, err)
	defer store.Close()

	want := sampleJob("job-1")
	require.NoError(t, store.Put(want))

	got, err := store.Get("job-1")
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestJobStore_GetUnknownJobFails(t *testing.T) {
	store, err := server.OpenMemoryJobStore()
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get("nope")
	require.ErrorIs(t, err, server.ErrJobNotFound)
}

func TestJobStore_GetReturnsIndependentCopies(t *testing.T) {
	store, err := server.OpenMemoryJobStore()
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(sampleJob("job-1")))

	first, err := store.Get("job-1")
	require.NoError(t, err)
	first.Result[0][0] = 99
	first.Status = qvm.StatusFailed

	second, err := store.Get("job-1")
	require.NoError(t, err)
	require.Equal(t, 1, second.Result[0][0])
	require.Equal(t, qvm.StatusDone, second.Status)
}

func TestJobStore_ListReturnsAllJobs(t *testing.T) {
	store, err := server.OpenMemoryJobStore()
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(sampleJob("job-a")))
	require.NoError(t, store.Put(sampleJob("job-b")))
	require.NoError(t, store.Put(sampleJob("job-c")))

	jobs, err := store.List()
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	ids := make([]string, len(jobs))
	for i, j := range jobs {
		ids[i] = j.ID
	}
	require.ElementsMatch(t, []string{"job-a", "job-b", "job-c"}, ids)
}

func TestJobStore_ReopenKeepsJobs(t *testing.T) {
	dir := t.TempDir()

	store, err := server.OpenJobStore(dir)
	require.NoError(t, err)
	want := sampleJob("job-1")
	require.NoError(t, store.Put(want))
	require.NoError(t, store.Close())

	reopened, err := server.OpenJobStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get("job-1")
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestJob_Terminal(t *testing.T) {
	for _, status := range []string{qvm.StatusDone, qvm.StatusFailed, qvm.StatusCancelled} {
		require.True(t, (&server.Job{Status: status}).Terminal(), status)
	}
	for _, status := range []string{qvm.StatusConnected, qvm.StatusLoaded, qvm.StatusRunning} {
		require.False(t, (&server.Job{Status: status}).Terminal(), status)
	}
}
