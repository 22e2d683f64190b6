package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rrmetrics/eventcode/store/sqlite"
)

// entry point for 'eventcode runs ...'
func listRuns(dataset string) {
	if dashdb == "" {
		exitf("runs needs -db")
	}

	ctx := context.Background()
	store, err := sqlite.Open(ctx, dashdb)
	if err != nil {
		exitf("%s", err)
	}
	defer store.Close()

	runs, err := store.ListRuns(ctx, dataset)
	if err != nil {
		exitf("%s", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tDATASET\tCELLS\tBURNED\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.Domain.Dataset+r.Domain.Suffix(), r.Stats.Cells, r.Stats.Burned, r.CreatedAt.Format(time.RFC3339))
	}
	w.Flush()
}

func init() {
	addApplet(applet{
		name: "runs",
		help: "[dataset]",
		desc: "list stored runs, newest first",
		run: func(args []string) bool {
			if len(args) > 2 {
				return false
			}
			dataset := ""
			if len(args) == 2 {
				dataset = args[1]
			}
			listRuns(dataset)
			return true
		},
	})
}
