// Package trainpack converts labeled image lists into a single embedded
// key-value database optimized for random-access reads during training.
//
// The pipeline filters and indexes the source manifest, streams raw file
// bytes and labels through serialization and compression on a worker pool,
// and commits them to the store under strict ordering and batching
// discipline: memory stays bounded regardless of dataset size, and a
// partial failure never produces a database that claims completeness.
//
// # Quick Start
//
//	ctx := context.Background()
//	dbPath, err := trainpack.Pack(ctx, trainpack.Config{
//	    ImageList: "train.txt",
//	    Attribute: manifest.AttributeGender,
//	    Source:    "/data/images",
//	    Dest:      "/data/db",
//	})
//
// With segmentation masks and tuning:
//
//	dbPath, err := trainpack.Pack(ctx, trainpack.Config{
//	    ImageList:  "train.txt",
//	    Attribute:  manifest.AttributeRace,
//	    Source:     "/data/images",
//	    MaskSource: "/data/masks",
//	    Dest:       "/data/db",
//	},
//	    trainpack.WithWorkers(32),
//	    trainpack.WithCompression(record.CompressionZSTD),
//	)
//
// # Layout of the output database
//
// Records live under ASCII-decimal keys "0".."N-1" in filtered manifest
// order. Three reserved keys are written only after every record commits:
//
//	__keys__      ordered key list
//	__len__       record count N
//	__classnum__  label-space size
//
// A reader can therefore always tell a complete database from an aborted
// run: store.OpenReader refuses databases without __len__.
//
// # Failure model
//
// Every error is fatal to the run. A missing sample file, an encoding
// failure or a store failure cancels outstanding work and surfaces the
// first error; there is no per-record retry or skip, because a dataset
// with silently missing indices is worse than a failed run.
package trainpack
