// Command clusterprep prepares tab-delimited measurement files for AutoClass C
// clustering: it validates and merges the inputs, writes the engine's input
// file set, and can launch the engine in the background.
//
// Each input argument has the form
//
//	path:type[:error]
//
// where type is real_scalar, real_location or discrete, and error is the
// measurement error required for the two real-valued types, e.g.
//
//	clusterprep -out results expr.tsv:real_scalar:0.01 anno.tsv:discrete
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"clusterprep/internal/dataset"
	"clusterprep/internal/session"

	// register all snapshot backends; -snapshot selects one.
	_ "clusterprep/internal/snapshot/all"
)

func main() {
	var (
		outDir      string
		name        string
		missing     string
		sep         string
		tolerate    bool
		runEngine   bool
		printFiles  bool
		snapshotTo  string
		snapshotDSN string
		maxDuration int
		maxTries    int
		maxCycles   int
	)

	flag.StringVar(&outDir, "out", ".", "directory receiving the generated files")
	flag.StringVar(&name, "name", "clust", "basename of the generated file set")
	flag.StringVar(&missing, "missing", "?", "placeholder written for missing values in the engine data file")
	flag.StringVar(&sep, "sep", "\t", "output field separator")
	flag.BoolVar(&tolerate, "tolerate-errors", false, "keep executing steps after a failure instead of skipping them")
	flag.BoolVar(&runEngine, "run", false, "launch the clustering engine after generating the files")
	flag.BoolVar(&printFiles, "print", false, "print the generated control files to stdout")
	flag.StringVar(&snapshotTo, "snapshot", "", "export the merged table to a database backend (sqlite, postgres)")
	flag.StringVar(&snapshotDSN, "snapshot-dsn", "", "DSN for the snapshot backend")
	flag.IntVar(&maxDuration, "max-duration", 3600, "search wall-clock limit in seconds (0 = unlimited)")
	flag.IntVar(&maxTries, "max-n-tries", 200, "maximum number of independent search trials")
	flag.IntVar(&maxCycles, "max-cycles", 1000, "maximum optimization cycles per trial")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: clusterprep [flags] path:type[:error] ...\n\n")
		fmt.Fprintf(os.Stderr, "types: real_scalar, real_location, discrete\n")
		fmt.Fprintf(os.Stderr, "real-valued types require an error value, e.g. expr.tsv:real_scalar:0.01\n\nflags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	specs := make([]inputSpec, 0, flag.NArg())
	for _, arg := range flag.Args() {
		spec, err := parseInputSpec(arg)
		if err != nil {
			fatalf("invalid input %q: %v", arg, err)
		}
		specs = append(specs, spec)
	}

	if snapshotTo == "" && snapshotDSN != "" {
		fatalf("-snapshot-dsn requires -snapshot")
	}

	sess := session.New(session.Config{
		OutputDir:       outDir,
		Basename:        name,
		MissingEncoding: missing,
		Separator:       sep,
		TolerateError:   tolerate,
		MaxDuration:     &maxDuration,
		MaxTries:        maxTries,
		MaxCycles:       maxCycles,
	})

	for _, spec := range specs {
		sess.AddInputData(spec.Path, spec.Role, spec.Err)
	}
	sess.MergeDatasets()
	sess.PrepareInputFiles()

	if snapshotTo != "" {
		dsn := snapshotDSN
		if dsn == "" && snapshotTo == "sqlite" {
			dsn = name + ".db"
		}
		sess.ExportSnapshot(context.Background(), snapshotTo, dsn)
	}

	if printFiles {
		fmt.Print(sess.PrintFiles())
	}
	if runEngine {
		sess.Run()
	}

	if sess.HadError() {
		log.Printf("preparation finished with errors")
		os.Exit(1)
	}
	log.Printf("preparation complete")
}

type inputSpec struct {
	Path string
	Role dataset.Role
	Err  float64
}

// parseInputSpec parses "path:type[:error]". The error segment is recognized
// by parsing as a float, so file paths containing colons still work as long
// as the type segment follows them.
func parseInputSpec(s string) (inputSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return inputSpec{}, fmt.Errorf("expected path:type[:error]")
	}

	var (
		roleStr string
		errVal  float64
		haveErr bool
	)
	last := parts[len(parts)-1]
	if v, err := strconv.ParseFloat(last, 64); err == nil && len(parts) >= 3 {
		errVal = v
		haveErr = true
		roleStr = parts[len(parts)-2]
		parts = parts[:len(parts)-2]
	} else {
		roleStr = last
		parts = parts[:len(parts)-1]
	}

	role, err := dataset.ParseRole(roleStr)
	if err != nil {
		return inputSpec{}, err
	}
	if role.Real() && !haveErr {
		return inputSpec{}, fmt.Errorf("type %q requires an error value", role)
	}

	path := strings.Join(parts, ":")
	if path == "" {
		return inputSpec{}, fmt.Errorf("empty path")
	}
	return inputSpec{Path: path, Role: role, Err: errVal}, nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
