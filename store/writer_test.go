package store

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/hupe1980/trainpack/record"
)

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "train.db")
}

func encodeRecord(t *testing.T, label int64) []byte {
	t.Helper()
	blob, err := record.Encode(record.Record{
		Image: []byte(fmt.Sprintf("image-%d", label)),
		Label: label,
	}, record.CompressionLZ4)
	require.NoError(t, err)
	return blob
}

func TestWriter_SequentialKeys(t *testing.T) {
	w, err := Open(tempDB(t), Options{Compression: record.CompressionLZ4})
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 3; i++ {
		key, err := w.Append(encodeRecord(t, int64(i)))
		require.NoError(t, err)
		require.Equal(t, fmt.Sprint(i), key)
	}
	require.Equal(t, 3, w.Count())
}

func TestWriter_CommitBoundaries(t *testing.T) {
	// write frequency 2 with 5 records commits after records 0, 2 and 4;
	// every record must survive exactly once, none lost across boundaries.
	path := tempDB(t)
	w, err := Open(path, Options{WriteFrequency: 2, Compression: record.CompressionLZ4})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := w.Append(encodeRecord(t, int64(i)))
		require.NoError(t, err)
	}

	// Abandon the run before Finalize: committed data stays, trailers are
	// absent, so the database is verifiably incomplete.
	require.NoError(t, w.Close())

	db, err := bolt.Open(path, 0o600, nil)
	require.NoError(t, err)
	defer db.Close()

	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(BucketName)
		require.NotNil(t, b)
		for i := 0; i < 5; i++ {
			blob := b.Get([]byte(fmt.Sprint(i)))
			require.NotNil(t, blob, "record %d missing", i)

			rec, err := record.Decode(blob)
			require.NoError(t, err)
			require.Equal(t, int64(i), rec.Label)
		}
		require.Nil(t, b.Get([]byte(MetaLen)))
		require.Nil(t, b.Get([]byte(MetaKeys)))
		require.Nil(t, b.Get([]byte(MetaClassNum)))
		return nil
	})
	require.NoError(t, err)
}

func TestWriter_FinalizeWritesTrailers(t *testing.T) {
	path := tempDB(t)
	w, err := Open(path, Options{WriteFrequency: 2, Compression: record.CompressionZSTD})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := w.Append(encodeRecord(t, int64(i)))
		require.NoError(t, err)
	}
	require.NoError(t, w.Finalize(7))
	require.NoError(t, w.Close())

	r, err := OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, 5, r.Len())
	require.Equal(t, 7, r.ClassNum())
	require.Equal(t, []string{"0", "1", "2", "3", "4"}, r.Keys())

	for i, key := range r.Keys() {
		rec, err := r.Get(key)
		require.NoError(t, err)
		require.Equal(t, int64(i), rec.Label)
	}
}

func TestWriter_ClosedAfterFinalize(t *testing.T) {
	w, err := Open(tempDB(t), Options{Compression: record.CompressionLZ4})
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Append(encodeRecord(t, 0))
	require.NoError(t, err)
	require.NoError(t, w.Finalize(1))

	_, err = w.Append(encodeRecord(t, 1))
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, w.Finalize(1), ErrClosed)
}

func TestWriter_CloseIdempotent(t *testing.T) {
	w, err := Open(tempDB(t), Options{Compression: record.CompressionLZ4})
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

func TestOpenReader_Incomplete(t *testing.T) {
	path := tempDB(t)
	w, err := Open(path, Options{Compression: record.CompressionLZ4})
	require.NoError(t, err)

	_, err = w.Append(encodeRecord(t, 0))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = OpenReader(path)
	require.ErrorIs(t, err, ErrIncomplete)
}
