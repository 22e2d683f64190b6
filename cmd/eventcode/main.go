// Command eventcode builds fire-year, severity and composite key tables from
// per-year event grids, and decodes packed keys of stored builds.
//
// usage:
//
//	eventcode [-config domain.yaml] [-v] build [-input cells.csv | -demo N] [-o dir] [-db runs.db] [-grid]
//	eventcode [-config domain.yaml] config
//	eventcode -db runs.db runs [dataset]
//	eventcode -db runs.db decode <run-id> <key>...
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/rrmetrics/eventcode/domain"
)

var (
	dashv      bool
	dashh      bool
	dashconfig string
	dashdb     string
)

func init() {
	flag.BoolVar(&dashv, "v", false, "verbose")
	flag.BoolVar(&dashh, "h", false, "show usage help")
	flag.StringVar(&dashconfig, "config", "", "domain YAML file (default: built-in domain, "+domain.EnvPrefix+"* overrides apply)")
	flag.StringVar(&dashdb, "db", "", "SQLite run store")
}

type applet struct {
	name string
	help string
	desc string
	// run returns false when args do not match the applet usage.
	run func(args []string) bool
}

var applets = map[string]applet{}

func addApplet(a applet) {
	applets[a.name] = a
}

var logger = log.New(os.Stderr, "eventcode: ", log.LstdFlags)

func exitf(f string, args ...any) {
	logger.Printf(f, args...)
	os.Exit(1)
}

func logf(f string, args ...any) {
	if dashv {
		logger.Printf(f, args...)
	}
}

func loadDomain() domain.Domain {
	dom, err := domain.Load(dashconfig)
	if err != nil {
		exitf("loading domain: %s", err)
	}

	return dom
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage:\n")
	names := make([]string, 0, len(applets))
	for name := range applets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		a := applets[name]
		fmt.Fprintf(os.Stderr, "    %s [flags] %s %s\n", os.Args[0], a.name, a.help)
		fmt.Fprintf(os.Stderr, "        %s\n", a.desc)
	}
	fmt.Fprintf(os.Stderr, "flag usage:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 || dashh {
		usage()
		os.Exit(1)
	}

	a, ok := applets[args[0]]
	if !ok {
		usage()
		exitf("unknown command %q", args[0])
	}

	if !a.run(args) {
		exitf("usage: %s %s", a.name, a.help)
	}
}
