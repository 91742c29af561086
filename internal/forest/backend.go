// internal/forest/backend.go
package forest

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"quilbridge/internal/circuit"
	"quilbridge/internal/convert"
	"quilbridge/internal/device"
	"quilbridge/internal/domain"
	"quilbridge/internal/passes"
	"quilbridge/internal/qvm"
	"quilbridge/internal/store"
	"quilbridge/internal/version"
)

var shotGates = []circuit.OpType{
	circuit.CZ,
	circuit.ISWAP,
	circuit.Rx,
	circuit.Rz,
	circuit.Measure,
	circuit.Barrier,
}

// submission is the cached bookkeeping for one processed circuit: the
// executor job, how to cut its shot table down to the measured bits,
// and the result once fetched.
type submission struct {
	jobID      string
	bits       []circuit.Bit
	bitIndices []int
	result     *domain.Result
}

// Backend runs shot-based circuits on a device served by qvmd, through
// the asynchronous jobs API. Handles survive the process when a handle
// store is attached.
type Backend struct {
	client  *qvm.Client
	char    *device.Characterisation
	info    domain.BackendInfo
	handles *store.HandleStore

	mu    sync.Mutex
	cache map[string]*submission
}

var _ domain.Backend = (*Backend)(nil)

// NewBackend builds a shot backend over the described device. handles
// may be nil, in which case submissions live only as long as the
// process.
func NewBackend(client *qvm.Client, desc device.Description, handles *store.HandleStore) (*Backend, error) {
	char, err := device.Process(desc)
	if err != nil {
		return nil, errors.Wrapf(err, "characterise device %s", desc.Name)
	}
	return &Backend{
		client:  client,
		char:    char,
		info:    backendInfo("ForestBackend", desc.Name, char, shotGates),
		handles: handles,
		cache:   make(map[string]*submission),
	}, nil
}

func (b *Backend) Info() domain.BackendInfo { return b.info }

func (b *Backend) Capabilities() domain.Capabilities {
	return domain.Capabilities{
		Shots:             true,
		Counts:            true,
		PersistentHandles: b.handles != nil,
	}
}

func (b *Backend) RequiredPredicates() []circuit.Predicate {
	return []circuit.Predicate{
		circuit.NoClassicalControlPredicate{},
		circuit.NoFastFeedforwardPredicate{},
		circuit.NoMidMeasurePredicate{},
		circuit.NewGateSetPredicate(shotGates...),
		device.NewConnectivityPredicate(b.char.Architecture),
	}
}

// DefaultCompilationPass rewrites a circuit to satisfy every required
// predicate. Levels above 0 add cleanup; level 2 also squashes
// single-qubit rotation runs. Levels outside 0..2 are clamped.
func (b *Backend) DefaultCompilationPass(level int) passes.Pass {
	arch := b.char.Architecture
	seq := []passes.Pass{passes.FlattenRegisters()}
	if level >= 1 {
		seq = append(seq, passes.RemoveRedundancies())
	}
	seq = append(seq,
		passes.Rebase(),
		passes.NoiseAwarePlacement(b.char),
		passes.NaivePlacement(arch),
		passes.Route(arch),
		passes.Rebase(),
	)
	if level >= 2 {
		seq = append(seq, passes.EulerAngleReduction())
	}
	if level >= 1 {
		seq = append(seq, passes.RemoveRedundancies())
	}
	return passes.Sequence(seq...)
}

// ProcessCircuits converts and submits each circuit as a job. Circuits
// that measure nothing are not submitted at all: their result is a
// ready table of empty rows. On a mid-batch failure the circuits
// already submitted stay cached (and persisted, with a handle store),
// but their handles are not returned.
func (b *Backend) ProcessCircuits(ctx context.Context, circuits []*circuit.Circuit, shots []int, opts domain.ProcessOptions) ([]domain.ResultHandle, error) {
	shotsList, err := domain.ShotsList(shots, len(circuits))
	if err != nil {
		return nil, err
	}
	if !opts.SkipValidCheck {
		for i, c := range circuits {
			if err := circuit.VerifyAll(c, b.RequiredPredicates()); err != nil {
				return nil, errors.Wrapf(err, "circuit %d", i)
			}
		}
	}

	var seed *int64
	if opts.Seed != 0 {
		s := opts.Seed
		seed = &s
	}

	handles := make([]domain.ResultHandle, len(circuits))
	for i, c := range circuits {
		h := domain.NewHandle()
		sub := &submission{}
		if c.NGatesOf(circuit.Measure) == 0 {
			sub.result = domain.EmptyResult(shotsList[i])
		} else {
			p, bits, err := convert.ToQuilWithBits(c, convert.Options{ActiveReset: true})
			if err != nil {
				return nil, errors.Wrapf(err, "circuit %d", i)
			}
			info, err := b.client.SubmitJob(ctx, p.Text(), shotsList[i], seed)
			if err != nil {
				return nil, errors.Wrapf(err, "submit circuit %d", i)
			}
			sub.jobID = info.ID
			sub.bits = bits
			sub.bitIndices = bitIndices(bits)
		}

		b.mu.Lock()
		b.cache[h.ID] = sub
		b.mu.Unlock()

		if err := b.persist(h, c, sub); err != nil {
			return nil, err
		}
		handles[i] = h
	}
	return handles, nil
}

// CircuitStatus maps the executor's job state onto the circuit
// lifecycle. Handles whose results are already cached answer without a
// network round trip.
func (b *Backend) CircuitStatus(ctx context.Context, handle domain.ResultHandle) (domain.CircuitStatus, error) {
	sub, err := b.lookup(handle)
	if err != nil {
		return domain.CircuitStatus{}, err
	}
	if sub.result != nil {
		return domain.CircuitStatus{Status: domain.StatusCompleted}, nil
	}

	info, err := b.client.JobStatus(ctx, sub.jobID)
	if err != nil {
		if isHTTPStatus(err, http.StatusNotFound) {
			return domain.CircuitStatus{}, domain.CircuitNotRunError{Handle: handle}
		}
		return domain.CircuitStatus{}, errors.Wrap(err, "query job status")
	}
	switch info.Status {
	case qvm.StatusDone:
		return domain.CircuitStatus{Status: domain.StatusCompleted}, nil
	case qvm.StatusRunning:
		return domain.CircuitStatus{Status: domain.StatusRunning}, nil
	case qvm.StatusLoaded, qvm.StatusConnected:
		return domain.CircuitStatus{Status: domain.StatusSubmitted}, nil
	case qvm.StatusFailed:
		return domain.CircuitStatus{Status: domain.StatusErrored, Message: info.Error}, nil
	case qvm.StatusCancelled:
		return domain.CircuitStatus{Status: domain.StatusCancelled}, nil
	}
	return domain.CircuitStatus{}, domain.ErrJobStatusUnavailable
}

// Result fetches, filters and caches the shot table for a handle. The
// executor answers 404 until the job is done; that error passes
// through so callers can poll.
func (b *Backend) Result(ctx context.Context, handle domain.ResultHandle) (*domain.Result, error) {
	sub, err := b.lookup(handle)
	if err != nil {
		return nil, err
	}
	if sub.result != nil {
		return sub.result, nil
	}

	raw, err := b.client.JobResult(ctx, sub.jobID)
	if err != nil {
		return nil, errors.Wrap(err, "fetch job result")
	}
	shotTable := make([][]int, len(raw))
	for i, row := range raw {
		filtered := make([]int, len(sub.bitIndices))
		for k, idx := range sub.bitIndices {
			if idx >= len(row) {
				return nil, errors.Errorf("forest: shot row has %d columns, need bit %d", len(row), idx)
			}
			filtered[k] = row[idx]
		}
		shotTable[i] = filtered
	}
	res := &domain.Result{Shots: shotTable, Bits: sub.bits}

	b.mu.Lock()
	sub.result = res
	b.mu.Unlock()

	if b.handles != nil {
		if err := b.handles.SetResult(handle.ID, res); err != nil {
			return nil, errors.Wrap(err, "persist result")
		}
	}
	return res, nil
}

// lookup resolves a handle to its submission, falling back to the
// handle store for submissions made by earlier processes.
func (b *Backend) lookup(handle domain.ResultHandle) (*submission, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.cache[handle.ID]; ok {
		return sub, nil
	}
	if b.handles == nil {
		return nil, domain.CircuitNotRunError{Handle: handle}
	}
	rec, err := b.handles.Load(handle.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.CircuitNotRunError{Handle: handle}
		}
		return nil, errors.Wrap(err, "load handle")
	}

	sub := &submission{
		jobID:      rec.JobID,
		bitIndices: rec.BitIndices,
		result:     rec.Result,
	}
	reg := rec.BitRegister
	if reg == "" {
		reg = circuit.DefaultBitRegister
	}
	for _, idx := range rec.BitIndices {
		sub.bits = append(sub.bits, circuit.Bit{Register: reg, Index: idx})
	}
	b.cache[handle.ID] = sub
	return sub, nil
}

func (b *Backend) persist(h domain.ResultHandle, c *circuit.Circuit, sub *submission) error {
	if b.handles == nil {
		return nil
	}
	rec := store.Record{
		Handle:      h.ID,
		Device:      b.info.Device,
		JobID:       sub.jobID,
		BitIndices:  sub.bitIndices,
		SubmittedAt: time.Now().UTC(),
		Result:      sub.result,
	}
	if len(sub.bits) > 0 {
		rec.BitRegister = sub.bits[0].Register
	}
	if raw, err := json.Marshal(c); err == nil {
		rec.Circuit = raw
	}
	return errors.Wrap(b.handles.Save(rec), "persist handle")
}

// bitIndices maps measured bits to their readout columns: the Quil
// writer targets ro[bit index], so the column is the index itself.
func bitIndices(bits []circuit.Bit) []int {
	out := make([]int, len(bits))
	for i, b := range bits {
		out[i] = b.Index
	}
	return out
}

func backendInfo(name, deviceName string, char *device.Characterisation, gates []circuit.OpType) domain.BackendInfo {
	sorted := append([]circuit.OpType(nil), gates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	info := domain.BackendInfo{
		Name:    name,
		Device:  deviceName,
		Version: version.Version,
		GateSet: sorted,
	}
	if char != nil {
		info.Characterisation = char
		info.Averaged = char.Averaged()
	}
	return info
}

// isHTTPStatus reports whether err carries the given HTTP status.
func isHTTPStatus(err error, status int) bool {
	var httpErr *qvm.HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == status
}
