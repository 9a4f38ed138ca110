package store

import (
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/hupe1980/trainpack/record"
)

// ErrIncomplete is returned when opening a database whose metadata trailers
// are missing, i.e. a run that never finished.
var ErrIncomplete = fmt.Errorf("store: database incomplete (no %s key)", MetaLen)

// Reader provides read-only access to a finalized database.
type Reader struct {
	db       *bolt.DB
	len      int
	classNum int
	keys     []string
}

// OpenReader opens a finalized database read-only. It fails with
// ErrIncomplete if the metadata trailers are absent.
func OpenReader(path string) (*Reader, error) {
	db, err := bolt.Open(path, 0o400, &bolt.Options{ReadOnly: true})
	if err != nil {
		return nil, &StoreError{Op: "open", cause: err}
	}

	r := &Reader{db: db}
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(BucketName)
		if b == nil {
			return ErrIncomplete
		}
		blob := b.Get([]byte(MetaLen))
		if blob == nil {
			return ErrIncomplete
		}
		if err := record.DecodeValue(blob, &r.len); err != nil {
			return err
		}
		if blob := b.Get([]byte(MetaClassNum)); blob != nil {
			if err := record.DecodeValue(blob, &r.classNum); err != nil {
				return err
			}
		}
		if blob := b.Get([]byte(MetaKeys)); blob != nil {
			if err := record.DecodeValue(blob, &r.keys); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

// Len returns the record count from the __len__ trailer.
func (r *Reader) Len() int { return r.len }

// ClassNum returns the label-space size from the __classnum__ trailer.
func (r *Reader) ClassNum() int { return r.classNum }

// Keys returns the ordered key list from the __keys__ trailer.
func (r *Reader) Keys() []string { return r.keys }

// Get decodes the record stored under key.
func (r *Reader) Get(key string) (record.Record, error) {
	var blob []byte
	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(BucketName).Get([]byte(key))
		if v == nil {
			return fmt.Errorf("store: no record for key %q", key)
		}
		blob = append(blob, v...) // bolt memory is tx-scoped
		return nil
	})
	if err != nil {
		return record.Record{}, err
	}
	return record.Decode(blob)
}

// Close releases the database handle.
func (r *Reader) Close() error {
	return r.db.Close()
}
