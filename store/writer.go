// Package store writes encoded records into a bolt database.
//
// The writer owns the database handle exclusively (single-writer
// discipline) and batches puts into fixed-size transactions. A transaction
// commit is the atomicity boundary: a crash mid-batch loses at most the
// uncommitted records and never corrupts committed ones.
//
// The reserved metadata keys (__keys__, __len__, __classnum__) are written
// by Finalize in one trailing transaction. Their presence is the signal
// that the database is complete; a reader finding data keys but no __len__
// is looking at an aborted run.
package store

import (
	"errors"
	"fmt"
	"strconv"

	bolt "go.etcd.io/bbolt"

	"github.com/hupe1980/trainpack/record"
)

// Reserved metadata keys, written only on successful completion.
const (
	MetaKeys     = "__keys__"
	MetaLen      = "__len__"
	MetaClassNum = "__classnum__"
)

// BucketName is the single bolt bucket holding all records and metadata.
var BucketName = []byte("records")

// DefaultWriteFrequency is the number of staged records between commits.
const DefaultWriteFrequency = 5000

// ErrClosed is returned when the writer is used after Close or a failure.
var ErrClosed = errors.New("store: writer closed")

// StoreError wraps a failure of the underlying database.
//
// The original underlying error can be accessed via errors.Unwrap.
type StoreError struct {
	Op    string
	cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.cause)
}

func (e *StoreError) Unwrap() error { return e.cause }

// Options configures a Writer.
type Options struct {
	// WriteFrequency is the number of records staged before a commit.
	// Defaults to DefaultWriteFrequency.
	WriteFrequency int
	// Compression is the encoding family used for the metadata values.
	// Must match the record blobs so the whole database decodes uniformly.
	Compression record.Compression
	// InitialMmapSize is an advisory size hint handed to bolt. Not an
	// enforced cap.
	InitialMmapSize int
}

type writerState int

const (
	stateWriting writerState = iota
	stateFinalized
	stateClosed
	stateFailed
)

// Writer appends records under sequential ASCII-decimal keys.
// Not safe for concurrent use: exactly one goroutine drives it.
type Writer struct {
	db    *bolt.DB
	tx    *bolt.Tx
	path  string
	opts  Options
	keys  []string
	state writerState
}

// Open creates (or reuses) the database at path and begins the first
// transaction.
func Open(path string, opts Options) (*Writer, error) {
	if opts.WriteFrequency <= 0 {
		opts.WriteFrequency = DefaultWriteFrequency
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{
		InitialMmapSize: opts.InitialMmapSize,
		NoSync:          true, // commits batch; Close syncs once
	})
	if err != nil {
		return nil, &StoreError{Op: "open", cause: err}
	}

	w := &Writer{db: db, path: path, opts: opts}
	if err := w.begin(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

// Path returns the database file path.
func (w *Writer) Path() string { return w.path }

// Count returns the number of records appended so far.
func (w *Writer) Count() int { return len(w.keys) }

func (w *Writer) begin() error {
	tx, err := w.db.Begin(true)
	if err != nil {
		return w.fail("begin", err)
	}
	if _, err := tx.CreateBucketIfNotExists(BucketName); err != nil {
		_ = tx.Rollback()
		return w.fail("create bucket", err)
	}
	w.tx = tx
	return nil
}

// Append stages blob under the next sequential key and returns that key.
// Every WriteFrequency records the current transaction is committed and a
// new one opened.
func (w *Writer) Append(blob []byte) (string, error) {
	if w.state != stateWriting {
		return "", ErrClosed
	}

	idx := len(w.keys)
	key := strconv.Itoa(idx)

	if err := w.tx.Bucket(BucketName).Put([]byte(key), blob); err != nil {
		return "", w.fail("put", err)
	}
	w.keys = append(w.keys, key)

	if idx%w.opts.WriteFrequency == 0 {
		if err := w.tx.Commit(); err != nil {
			w.tx = nil
			return "", w.fail("commit", err)
		}
		if err := w.begin(); err != nil {
			return "", err
		}
	}
	return key, nil
}

// Finalize commits any staged records, then writes the three metadata keys
// in one final transaction. After Finalize only Close is valid.
func (w *Writer) Finalize(classNum int) error {
	if w.state != stateWriting {
		return ErrClosed
	}

	if err := w.tx.Commit(); err != nil {
		w.tx = nil
		return w.fail("commit", err)
	}
	w.tx = nil

	meta := []struct {
		key   string
		value any
	}{
		{MetaKeys, w.keys},
		{MetaLen, len(w.keys)},
		{MetaClassNum, classNum},
	}

	err := w.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(BucketName)
		for _, m := range meta {
			blob, err := record.EncodeValue(m.value, w.opts.Compression)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(m.key), blob); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return w.fail("finalize", err)
	}

	w.state = stateFinalized
	return nil
}

func (w *Writer) fail(op string, err error) error {
	if w.tx != nil {
		_ = w.tx.Rollback()
		w.tx = nil
	}
	w.state = stateFailed
	return &StoreError{Op: op, cause: err}
}

// Close releases the database handle. Safe to call on every exit path and
// after a failure; only the first call does work. Uncommitted records are
// rolled back, never partially visible.
func (w *Writer) Close() error {
	if w.state == stateClosed {
		return nil
	}

	if w.tx != nil {
		_ = w.tx.Rollback()
		w.tx = nil
	}

	var syncErr error
	if w.state == stateFinalized {
		syncErr = w.db.Sync()
	}
	w.state = stateClosed

	if err := w.db.Close(); err != nil {
		return &StoreError{Op: "close", cause: err}
	}
	if syncErr != nil {
		return &StoreError{Op: "sync", cause: syncErr}
	}
	return nil
}
