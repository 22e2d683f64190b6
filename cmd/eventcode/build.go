package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rrmetrics/eventcode/aggregate"
	"github.com/rrmetrics/eventcode/domain"
	"github.com/rrmetrics/eventcode/export"
	"github.com/rrmetrics/eventcode/grid"
	"github.com/rrmetrics/eventcode/pipeline"
	"github.com/rrmetrics/eventcode/store/sqlite"
)

type buildFlags struct {
	input       string
	mode        string
	demo        int
	seed        uint64
	out         string
	grid        bool
	concurrency int
}

func parseBuildFlags(args []string) (buildFlags, error) {
	var bf buildFlags
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.StringVar(&bf.input, "input", "", "cell CSV with header unit,<year>,...")
	fs.StringVar(&bf.mode, "mode", modeClasses, "cell values: classes (MTBS product classes) or severity")
	fs.IntVar(&bf.demo, "demo", 0, "generate this many demo cells instead of reading -input")
	fs.Uint64Var(&bf.seed, "seed", 1, "demo seed")
	fs.StringVar(&bf.out, "o", ".", "output directory")
	fs.BoolVar(&bf.grid, "grid", false, "also write the packed key grid")
	fs.IntVar(&bf.concurrency, "j", 0, "concurrent tiles (default GOMAXPROCS)")
	if err := fs.Parse(args); err != nil {
		return bf, err
	}

	if (bf.input == "") == (bf.demo <= 0) {
		return bf, fmt.Errorf("exactly one of -input and -demo is required")
	}
	if fs.NArg() != 0 {
		return bf, fmt.Errorf("unexpected arguments %v", fs.Args())
	}

	return bf, nil
}

func loadInput(bf buildFlags, dom domain.Domain) pipeline.Input {
	if bf.demo > 0 {
		logf("generating %d demo cells (seed %d)", bf.demo, bf.seed)
		return demoCells(dom, bf.demo, bf.seed)
	}

	f, err := os.Open(bf.input)
	if err != nil {
		exitf("%s", err)
	}
	defer f.Close()

	in, err := readCells(f, dom, bf.mode)
	if err != nil {
		exitf("reading %s: %s", bf.input, err)
	}

	return in
}

// entry point for 'eventcode build ...'
func build(bf buildFlags) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dom := loadDomain()
	logf("domain %s", dom)
	in := loadInput(bf, dom)

	var opts []pipeline.Option
	if bf.concurrency > 0 {
		opts = append(opts, pipeline.WithConcurrency(bf.concurrency))
	}
	if dashv {
		opts = append(opts, pipeline.WithLogger(logger))
	}

	res, err := pipeline.Build(ctx, dom, in, opts...)
	if err != nil {
		exitf("build: %s", err)
	}

	reducer, err := aggregate.NewReducer(aggregate.WithTileSize(dom.TileSize))
	if err != nil {
		exitf("%s", err)
	}
	records, err := aggregate.Area(ctx, reducer, res.Keys, aggregate.Region{Resolution: dom.Resolution})
	if err != nil {
		exitf("area: %s", err)
	}

	paths, err := export.WriteResult(bf.out, res, records)
	if err != nil {
		exitf("export: %s", err)
	}
	for _, p := range paths {
		logf("wrote %s", p)
	}

	if bf.grid {
		path := filepath.Join(bf.out, export.FileName(dom, "keys", "grid"))
		err := grid.WriteFile(path, res.Keys,
			grid.WithFingerprint(dom.Fingerprint()),
			grid.WithCompression(dom.Compression),
			grid.WithWidth(dom.Width),
		)
		if err != nil {
			exitf("writing grid: %s", err)
		}
		logf("wrote %s", path)
	}

	if dashdb != "" {
		store, err := sqlite.Open(ctx, dashdb)
		if err != nil {
			exitf("%s", err)
		}
		defer store.Close()

		if err := store.SaveResult(ctx, res); err != nil {
			exitf("saving run: %s", err)
		}
		if err := store.SaveRecords(ctx, res.RunID, records); err != nil {
			exitf("saving records: %s", err)
		}
		logf("stored run %s in %s", res.RunID, dashdb)
	}

	fmt.Printf("%s\t%d cells\t%d burned\t%d keys\t%s\n",
		res.RunID, res.Stats.Cells, res.Stats.Burned, res.Composite.Len(), res.Stats.Elapsed)
}

func init() {
	addApplet(applet{
		name: "build",
		help: "[-input <cells.csv> [-mode classes|severity] | -demo <n> [-seed <s>]] [-o <dir>] [-grid] [-j <n>]",
		desc: "encode cells, write key tables and area aggregates, optionally store the run",
		run: func(args []string) bool {
			bf, err := parseBuildFlags(args[1:])
			if err != nil {
				logger.Print(err)
				return false
			}
			build(bf)
			return true
		},
	})
}
