package trainpack

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/trainpack/blobstore"
	"github.com/hupe1980/trainpack/manifest"
	"github.com/hupe1980/trainpack/store"
)

// perImageEstimate is the advisory per-record byte estimate used for the
// store size hint: one decoded 224x224 RGB image.
const perImageEstimate = 224 * 224 * 3

// Config identifies the dataset to ingest.
type Config struct {
	// ImageList is the manifest file path.
	ImageList string
	// Attribute selects which label column to filter and index by.
	Attribute manifest.Attribute
	// Source is the image root the manifest's relative paths are resolved
	// against. Leave empty when the image store is rooted elsewhere.
	Source string
	// MaskSource, when set together with Source, derives a mask path per
	// sample and stores mask bytes alongside the image.
	MaskSource string
	// Dest is the directory the database file is created in. The file is
	// named after the image list: "train.txt" becomes "train.db".
	Dest string
}

// Pack runs the full ingestion pipeline and returns the path of the
// resulting database file.
//
// Records are committed in filtered manifest order under sequential keys.
// Any failure cancels the run; the destination database then lacks the
// metadata trailers and is verifiably incomplete.
func Pack(ctx context.Context, cfg Config, optFns ...Option) (string, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(o)
	}
	if o.imageStore == nil {
		o.imageStore = blobstore.NewLocal("")
	}
	if o.maskStore == nil {
		o.maskStore = o.imageStore
	}

	log := o.logger

	log.Info("loading dataset", "image_list", cfg.ImageList, "attribute", string(cfg.Attribute))

	m, err := manifest.Load(cfg.ImageList, cfg.Attribute,
		manifest.WithSourceRoot(cfg.Source),
		manifest.WithMaskRoot(cfg.MaskSource),
	)
	if err != nil {
		return "", err
	}
	if len(m.Entries) == 0 {
		return "", fmt.Errorf("%w: %s", ErrEmptyDataset, cfg.ImageList)
	}

	withMasks := cfg.MaskSource != "" && cfg.Source != ""
	dbPath := filepath.Join(cfg.Dest, dbName(cfg.ImageList))
	sizeHint := sizeEstimate(len(m.Entries), withMasks)

	log.Info("generating database",
		"path", dbPath,
		"records", len(m.Entries),
		"classnum", m.ClassNum,
		"max_size_estimate", sizeHint,
	)

	w, err := store.Open(dbPath, store.Options{
		WriteFrequency:  o.writeFrequency,
		Compression:     o.compression,
		InitialMmapSize: sizeHint,
	})
	if err != nil {
		return "", err
	}
	// Release the handle exactly once on every exit path; Close after a
	// failure rolls back anything uncommitted.
	defer w.Close()

	if err := runPipeline(ctx, m.Entries, o, w); err != nil {
		return "", err
	}

	if err := w.Finalize(m.ClassNum); err != nil {
		return "", err
	}

	log.Info("flushing database", "path", dbPath)
	if err := w.Close(); err != nil {
		return "", err
	}

	log.Info("done", "path", dbPath, "records", len(m.Entries))
	return dbPath, nil
}

// runPipeline drives the producer pool and consumes results in manifest
// order, appending each to the writer.
func runPipeline(ctx context.Context, entries []manifest.Entry, o *options, w *store.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := newProducerPool(entries, o)
	ordered, wait := pool.start(ctx)

	progress := rate.Sometimes{Interval: time.Second}
	total := len(entries)

	var consumeErr error
	for t := range ordered {
		if consumeErr != nil {
			continue // canceled, drain the remaining tasks
		}
		select {
		case res := <-t.out:
			if res.err != nil {
				consumeErr = res.err
				cancel()
				continue
			}
			if _, err := w.Append(res.blob); err != nil {
				consumeErr = err
				cancel()
				continue
			}
			progress.Do(func() {
				o.logger.Info("progress", "written", t.idx+1, "total", total)
			})
		case <-ctx.Done():
			consumeErr = ctx.Err()
		}
	}

	// A worker's own failure outranks the cancellation noise it causes
	// downstream; a consumer-side store failure outranks the cancellation
	// it causes upstream.
	werr := wait()
	switch {
	case werr != nil && !errors.Is(werr, context.Canceled):
		return werr
	case consumeErr != nil && !errors.Is(consumeErr, context.Canceled):
		return consumeErr
	case werr != nil:
		return werr
	case consumeErr != nil:
		return consumeErr
	default:
		return ctx.Err()
	}
}

func dbName(imageList string) string {
	base := filepath.Base(imageList)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".db"
}

func sizeEstimate(records int, withMasks bool) int {
	size := records * perImageEstimate
	if withMasks {
		size *= 2
	}
	return size * 2 // safety margin, a hint rather than a cap
}
