// internal/server/jobstore.go
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	lru "github.com/hashicorp/golang-lru/v2"

	"quilbridge/internal/qvm"
)

// ErrJobNotFound is returned when a job id has no record.
var ErrJobNotFound = errors.New("server: job not found")

const (
	jobPrefix    = "jobs/"
	jobPrefixEnd = "jobs0" // '0' is '/'+1
	jobCacheSize = 256
)

// Job is the persistent record of one queued program execution.
type Job struct {
	ID      string `json:"id"`
	Program string `json:"program"`
	Shots   int    `json:"shots"`
	Seed    *int64 `json:"seed,omitempty"`
	Digest  string `json:"digest"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`

	Result [][]int `json:"result,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

func (j *Job) clone() *Job {
	cpy := *j
	if j.Seed != nil {
		s := *j.Seed
		cpy.Seed = &s
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		cpy.StartedAt = &t
	}
	if j.EndedAt != nil {
		t := *j.EndedAt
		cpy.EndedAt = &t
	}
	if j.Result != nil {
		cpy.Result = make([][]int, len(j.Result))
		for i, row := range j.Result {
			cpy.Result[i] = append([]int(nil), row...)
		}
	}
	return &cpy
}

// Terminal reports whether the job has reached a final status.
func (j *Job) Terminal() bool {
	switch j.Status {
	case qvm.StatusDone, qvm.StatusFailed, qvm.StatusCancelled:
		return true
	}
	return false
}

// JobStore persists jobs in a pebble database with a small read cache.
// All methods are safe for concurrent use.
type JobStore struct {
	db    *pebble.DB
	cache *lru.Cache[string, *Job]
}

// OpenJobStore opens (or creates) the job database under dir.
func OpenJobStore(dir string) (*JobStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}
	return newJobStore(db)
}

// OpenMemoryJobStore opens a job store backed by an in-memory
// filesystem. Contents are lost on Close.
func OpenMemoryJobStore() (*JobStore, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}
	return newJobStore(db)
}

func newJobStore(db *pebble.DB) (*JobStore, error) {
	cache, err := lru.New[string, *Job](jobCacheSize)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &JobStore{db: db, cache: cache}, nil
}

func jobKey(id string) []byte { return []byte(jobPrefix + id) }

// Put writes the job record, replacing any previous version.
func (s *JobStore) Put(j *Job) error {
	raw, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", j.ID, err)
	}
	if err := s.db.Set(jobKey(j.ID), raw, &pebble.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("write job %s: %w", j.ID, err)
	}
	s.cache.Add(j.ID, j.clone())
	return nil
}

// Get returns a copy of the job record.
func (s *JobStore) Get(id string) (*Job, error) {
	if j, ok := s.cache.Get(id); ok {
		return j.clone(), nil
	}
	raw, closer, err := s.db.Get(jobKey(id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
		}
		return nil, fmt.Errorf("read job %s: %w", id, err)
	}
	defer closer.Close()

	var j Job
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	s.cache.Add(id, j.clone())
	return &j, nil
}

// List returns copies of every stored job, ordered by id.
func (s *JobStore) List() ([]*Job, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(jobPrefix),
		UpperBound: []byte(jobPrefixEnd),
	})
	if err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	var jobs []*Job
	for iter.First(); iter.Valid(); iter.Next() {
		var j Job
		if err := json.Unmarshal(iter.Value(), &j); err != nil {
			iter.Close()
			return nil, fmt.Errorf("decode job %s: %w", iter.Key(), err)
		}
		jobs = append(jobs, &j)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

// Close flushes and closes the underlying database.
func (s *JobStore) Close() error {
	s.cache.Purge()
	return s.db.Close()
}
