package trainpack

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/trainpack/manifest"
	"github.com/hupe1980/trainpack/record"
)

// result is one worker's output for a single manifest entry.
type result struct {
	blob []byte
	err  error
}

// task pairs a manifest entry with its index and a one-slot delivery
// channel. The consumer receives tasks in manifest order and blocks on each
// task's channel, so out-of-order worker completions are reassembled at the
// consumption point.
type task struct {
	idx   int
	entry manifest.Entry
	out   chan result
}

// producerPool resolves and encodes records concurrently ahead of the
// writer. In-flight work is bounded by the ordered channel's capacity, one
// prefetch window per worker, so memory stays flat on large datasets.
type producerPool struct {
	entries []manifest.Entry
	o       *options
}

func newProducerPool(entries []manifest.Entry, o *options) *producerPool {
	return &producerPool{entries: entries, o: o}
}

// start launches the dispatcher and workers. It returns the ordered task
// stream and a wait function reporting the first worker error.
func (p *producerPool) start(ctx context.Context) (<-chan *task, func() error) {
	g, ctx := errgroup.WithContext(ctx)

	tasks := make(chan *task)
	ordered := make(chan *task, p.o.workers)

	g.Go(func() error {
		defer close(tasks)
		defer close(ordered)

		for i, entry := range p.entries {
			t := &task{idx: i, entry: entry, out: make(chan result, 1)}

			// Publish to the ordered stream first: its bounded capacity
			// is what throttles how far workers run ahead.
			select {
			case ordered <- t:
			case <-ctx.Done():
				return nil
			}
			select {
			case tasks <- t:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	})

	for range p.o.workers {
		g.Go(func() error {
			for t := range tasks {
				blob, err := p.produce(ctx, t)
				// The buffered send never blocks, so the consumer can
				// always be released before the pool winds down.
				t.out <- result{blob: blob, err: err}
				if err != nil {
					return err
				}
			}
			return nil
		})
	}

	return ordered, g.Wait
}

// produce reads the sample's raw bytes and encodes them into a record blob.
func (p *producerPool) produce(ctx context.Context, t *task) ([]byte, error) {
	img, err := p.o.imageStore.Read(ctx, t.entry.Sample)
	if err != nil {
		return nil, &SampleReadError{Path: t.entry.Sample, Index: t.idx, cause: err}
	}

	rec := record.Record{Image: img, Label: int64(t.entry.Label)}

	if t.entry.Mask != "" {
		mask, err := p.o.maskStore.Read(ctx, t.entry.Mask)
		if err != nil {
			return nil, &SampleReadError{Path: t.entry.Mask, Index: t.idx, cause: err}
		}
		rec.Mask = mask
	}

	blob, err := record.Encode(rec, p.o.compression)
	if err != nil {
		return nil, fmt.Errorf("encode record %d: %w", t.idx, err)
	}
	return blob, nil
}
