// Command trainpack converts a labeled image list into an embedded
// key-value database for training.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/hupe1980/trainpack"
	"github.com/hupe1980/trainpack/manifest"
	"github.com/hupe1980/trainpack/record"
)

func main() {
	app := &cli.App{
		Name:  "trainpack",
		Usage: "pack a labeled image list into an embedded key-value database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "image-list",
				Aliases:  []string{"l"},
				Usage:    "list of images with per-image attribute labels",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "path to the images",
			},
			&cli.StringFlag{
				Name:    "mask-source",
				Aliases: []string{"ms"},
				Usage:   "path to the image masks (optional)",
			},
			&cli.StringFlag{
				Name:    "attribute",
				Aliases: []string{"a"},
				Usage: fmt.Sprintf("which attribute to load (%s)",
					joinAttributes()),
				Required: true,
			},
			&cli.StringFlag{
				Name:     "dest",
				Aliases:  []string{"d"},
				Usage:    "directory to create the database file in",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "number of concurrent resolve/encode workers",
				Value:   trainpack.DefaultWorkers,
			},
			&cli.IntFlag{
				Name:  "write-frequency",
				Usage: "records staged per store transaction",
			},
			&cli.StringFlag{
				Name:  "compression",
				Usage: "record compression codec (none, lz4, zstd)",
				Value: "lz4",
			},
			&cli.BoolFlag{
				Name:  "json-log",
				Usage: "emit JSON-formatted logs",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "trainpack: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := trainpack.NewTextLogger(level)
	if c.Bool("json-log") {
		logger = trainpack.NewJSONLogger(level)
	}

	compression, err := record.ParseCompression(c.String("compression"))
	if err != nil {
		return err
	}

	attr := manifest.Attribute(c.String("attribute"))
	if !attr.Valid() {
		return fmt.Errorf("unknown attribute %q (expected one of %s)", attr, joinAttributes())
	}

	dbPath, err := trainpack.Pack(ctx, trainpack.Config{
		ImageList:  c.String("image-list"),
		Attribute:  attr,
		Source:     c.String("source"),
		MaskSource: c.String("mask-source"),
		Dest:       c.String("dest"),
	},
		trainpack.WithWorkers(c.Int("workers")),
		trainpack.WithWriteFrequency(c.Int("write-frequency")),
		trainpack.WithCompression(compression),
		trainpack.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	fmt.Println(dbPath)
	return nil
}

func joinAttributes() string {
	names := make([]string, 0, len(manifest.Attributes()))
	for _, a := range manifest.Attributes() {
		names = append(names, string(a))
	}
	return strings.Join(names, ", ")
}
