// Package trace keeps the results of scenario runs in a bbolt database, one
// record per run, so runs can be listed and compared later.
package trace

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/delaneyj/fiberparty/scenario"
	bolt "go.etcd.io/bbolt"
	"gopkg.in/yaml.v3"
)

const bucketRuns = "runs"

// ErrNoRun is returned when a run sequence is not in the store.
var ErrNoRun = errors.New("no such run")

// Run is one recorded scenario run.
type Run struct {
	Seq      int               `yaml:"-"`
	Name     string            `yaml:"name"`
	Recorded time.Time         `yaml:"recorded"`
	Steps    []scenario.Result `yaml:"steps"`
	// Size is the encoded size of the record, filled in on read.
	Size int `yaml:"-"`
}

type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open trace store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketRuns))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize trace store: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record stores a run and returns its sequence number.
func (s *Store) Record(name string, steps []scenario.Result) (int, error) {
	data, err := yaml.Marshal(Run{Name: name, Recorded: s.now().UTC(), Steps: steps})
	if err != nil {
		return 0, fmt.Errorf("encode run: %w", err)
	}
	var seq uint64
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRuns))
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(marshalSeq(seq), data)
	})
	return int(seq), err
}

// Run reads the run with sequence number seq.
func (s *Store) Run(seq int) (Run, error) {
	var run Run
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketRuns)).Get(marshalSeq(uint64(seq)))
		if v == nil {
			return fmt.Errorf("%w: %d", ErrNoRun, seq)
		}
		var err error
		run, err = decodeRun(uint64(seq), v)
		return err
	})
	return run, err
}

// Runs lists every run, oldest first.
func (s *Store) Runs() ([]Run, error) {
	var runs []Run
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketRuns)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			run, err := decodeRun(unmarshalSeq(k), v)
			if err != nil {
				return err
			}
			runs = append(runs, run)
		}
		return nil
	})
	return runs, err
}

// Delete removes a run. Deleting a missing run is not an error.
func (s *Store) Delete(seq int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketRuns)).Delete(marshalSeq(uint64(seq)))
	})
}

// decodeRun copies out of v, which is only valid inside the transaction.
func decodeRun(seq uint64, v []byte) (Run, error) {
	var run Run
	if err := yaml.Unmarshal(v, &run); err != nil {
		return Run{}, fmt.Errorf("decode run %d: %w", seq, err)
	}
	run.Seq = int(seq)
	run.Size = len(v)
	return run, nil
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}
