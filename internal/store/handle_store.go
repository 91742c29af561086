package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"quilbridge/internal/domain"
)

const handlesDir = "handles"

// ErrNotFound reports a handle with no stored record.
var ErrNotFound = errors.New("store: handle not found")

// Record is everything needed to pick a submission back up in a later
// invocation: which job on which device, how to read its shot table,
// and the circuit that produced it.
type Record struct {
	Handle      string          `json:"handle"`
	Device      string          `json:"device"`
	JobID       string          `json:"job_id"`
	BitRegister string          `json:"bit_register,omitempty"`
	BitIndices  []int           `json:"bit_indices,omitempty"`
	Circuit     json.RawMessage `json:"circuit,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
	Result      *domain.Result  `json:"result,omitempty"`
}

// HandleStore persists submissions as one JSON file per handle under
// <home>/handles. All methods are concurrency-safe.
type HandleStore struct {
	dir string
	mu  sync.Mutex
}

// NewHandleStore roots a store at home, creating the handles directory.
func NewHandleStore(home string) (*HandleStore, error) {
	dir := filepath.Join(home, handlesDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "store: create handles dir")
	}
	return &HandleStore{dir: dir}, nil
}

func (s *HandleStore) path(handle string) string {
	return filepath.Join(s.dir, handle+".json")
}

// Save writes the record under its handle.
func (s *HandleStore) Save(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Handle == "" {
		return errors.New("store: record has no handle")
	}
	return writeJSON(s.path(rec.Handle), rec, 0o600)
}

// Load retrieves the record for handle.
func (s *HandleStore) Load(handle string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(handle)
}

func (s *HandleStore) load(handle string) (Record, error) {
	var rec Record
	b, err := readFile(s.path(handle))
	if err != nil {
		return rec, err
	}
	if b == nil {
		return rec, errors.Wrap(ErrNotFound, handle)
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return rec, errors.Wrapf(err, "store: decode %s", handle)
	}
	return rec, nil
}

// SetResult attaches a finished result to the stored record.
func (s *HandleStore) SetResult(handle string, res *domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(handle)
	if err != nil {
		return err
	}
	rec.Result = res
	return writeJSON(s.path(handle), rec, 0o600)
}

// List returns every stored record, oldest submission first.
func (s *HandleStore) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(err, "store: list handles")
	}
	out := make([]Record, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		rec, err := s.load(strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].Handle < out[j].Handle
	})
	return out, nil
}

// Delete removes the record for handle. Deleting a handle that was
// never stored is not an error.
func (s *HandleStore) Delete(handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(handle))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
