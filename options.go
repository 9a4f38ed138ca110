package trainpack

import (
	"github.com/hupe1980/trainpack/blobstore"
	"github.com/hupe1980/trainpack/record"
	"github.com/hupe1980/trainpack/store"
)

// DefaultWorkers is the default number of concurrent resolve/encode
// workers.
const DefaultWorkers = 16

type options struct {
	workers        int
	writeFrequency int
	compression    record.Compression
	logger         *Logger
	imageStore     blobstore.Store
	maskStore      blobstore.Store
}

func defaultOptions() *options {
	return &options{
		workers:        DefaultWorkers,
		writeFrequency: store.DefaultWriteFrequency,
		compression:    record.CompressionLZ4,
		logger:         NewLogger(nil),
	}
}

// Option configures Pack.
type Option func(*options)

// WithWorkers sets the number of concurrent resolve/encode workers.
// Values below 1 fall back to the default.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithWriteFrequency sets the number of records staged per store
// transaction. Values below 1 fall back to the default.
func WithWriteFrequency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.writeFrequency = n
		}
	}
}

// WithCompression selects the record compression codec.
func WithCompression(c record.Compression) Option {
	return func(o *options) { o.compression = c }
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithImageStore overrides where image bytes are read from. The default is
// the local filesystem. When ingesting from object storage, leave
// Config.Source empty and root the store at the bucket prefix instead
// (blobstore/minio, blobstore/s3).
func WithImageStore(s blobstore.Store) Option {
	return func(o *options) { o.imageStore = s }
}

// WithMaskStore overrides where mask bytes are read from. Defaults to the
// image store's backend.
func WithMaskStore(s blobstore.Store) Option {
	return func(o *options) { o.maskStore = s }
}
