package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"quilbridge/internal/domain"
)

func TestHandle_RoundTrip(t *testing.T) {
	h := domain.NewHandle()
	parsed, err := domain.ParseHandle(h.String())
	require.NoError(t, err)
	require.Equal(t, h, parsed)
}

func TestHandle_ExtraPayload(t *testing.T) {
	h := domain.NewHandle()
	h.Extra = `{"name":"pp"}`
	parsed, err := domain.ParseHandle(h.String())
	require.NoError(t, err)
	require.Equal(t, h.ID, parsed.ID)
	require.Equal(t, h.Extra, parsed.Extra)
}

func TestParseHandle_Malformed(t *testing.T) {
	_, err := domain.ParseHandle("not-a-uuid")
	require.ErrorIs(t, err, domain.ErrBadHandle)
}

func TestStatus_Terminal(t *testing.T) {
	require.True(t, domain.StatusCompleted.Terminal())
	require.True(t, domain.StatusErrored.Terminal())
	require.True(t, domain.StatusCancelled.Terminal())
	require.False(t, domain.StatusRunning.Terminal())
	require.False(t, domain.StatusSubmitted.Terminal())
}

func TestResult_Counts(t *testing.T) {
	r := &domain.Result{
		Shots: [][]int{{0, 0}, {1, 1}, {0, 0}, {1, 1}, {1, 0}},
	}
	require.Equal(t, map[string]int{"00": 2, "11": 2, "10": 1}, r.Counts())
}

func TestResult_DistinctShots_Sorted(t *testing.T) {
	r := &domain.Result{
		Shots: [][]int{{1, 1}, {0, 0}, {1, 1}, {0, 1}},
	}
	require.Equal(t, [][]int{{0, 0}, {0, 1}, {1, 1}}, r.DistinctShots())
}

func TestEmptyResult(t *testing.T) {
	r := domain.EmptyResult(3)
	require.Equal(t, 3, r.NShots())
	require.Equal(t, map[string]int{"": 3}, r.Counts())
}

func TestShotsList(t *testing.T) {
	out, err := domain.ShotsList([]int{10}, 3)
	require.NoError(t, err)
	require.Equal(t, []int{10, 10, 10}, out)

	out, err = domain.ShotsList([]int{1, 2, 3}, 3)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, out)

	_, err = domain.ShotsList([]int{1, 2}, 3)
	require.Error(t, err)
}

func TestCircuitNotRunError_Message(t *testing.T) {
	h := domain.NewHandle()
	err := domain.CircuitNotRunError{Handle: h}
	require.Contains(t, err.Error(), h.ID)
}
