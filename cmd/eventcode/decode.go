package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rrmetrics/eventcode/pipeline"
	"github.com/rrmetrics/eventcode/store/sqlite"
)

func formatCell(key uint64, cell pipeline.Cell) string {
	if cell.Masked {
		return fmt.Sprintf("%d\tmasked", key)
	}

	s := fmt.Sprintf("%d\tunit=%d\tyears=%v", key, cell.Unit, cell.Years)
	if cell.Severities != nil {
		s += fmt.Sprintf("\tseverity=%v", cell.Severities)
	}

	return s
}

// entry point for 'eventcode decode ...'
func decode(runID string, keys []string) {
	if dashdb == "" {
		exitf("decode needs -db")
	}

	id, err := uuid.Parse(runID)
	if err != nil {
		exitf("run id %q: %s", runID, err)
	}

	ctx := context.Background()
	store, err := sqlite.Open(ctx, dashdb)
	if err != nil {
		exitf("%s", err)
	}
	defer store.Close()

	dec, err := store.LoadDecoder(ctx, id)
	if err != nil {
		exitf("loading run %s: %s", id, err)
	}

	for _, arg := range keys {
		key, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			exitf("key %q: %s", arg, err)
		}

		cell, err := dec.Decode(key)
		if err != nil {
			exitf("decoding %d: %s", key, err)
		}
		fmt.Println(formatCell(key, cell))
	}
}

func init() {
	addApplet(applet{
		name: "decode",
		help: "<run-id> <key>...",
		desc: "decode packed keys of a stored run",
		run: func(args []string) bool {
			if len(args) < 3 {
				return false
			}
			decode(args[1], args[2:])
			return true
		},
	})
}
