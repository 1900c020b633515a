// Package session orchestrates one clustering-preparation run: it collects
// datasets, merges them, renders the engine's input file set, and launches the
// engine.
//
// No error escapes a Session method. Each operation runs behind a guard that
// logs failures and sets a sticky error flag; once the flag is set, later
// operations are skipped (and logged as skipped) unless the session was
// configured to tolerate errors. Callers check HadError for session health.
package session

import (
	"log"
	"strings"

	"clusterprep/internal/dataset"
	"clusterprep/internal/encdetect"
)

// Config holds session settings. Zero values get sensible defaults via New.
type Config struct {
	// OutputDir receives every generated file. Defaults to the working directory.
	OutputDir string
	// Basename is the stem of the generated file set. Defaults to "clust".
	Basename string
	// MissingEncoding is the placeholder written for absent cells in the
	// engine's data file. Defaults to "?".
	MissingEncoding string
	// Separator is the output field delimiter. Defaults to tab.
	Separator string
	// TolerateError keeps later operations running after a failure.
	TolerateError bool

	// Search tunables for the engine's cluster-count search.
	// MaxDuration caps the search wall clock in seconds; 0 runs until halted.
	// Nil selects the default of 3600.
	MaxDuration *int
	MaxTries    int // independent search trials
	MaxCycles   int // optimization cycles per trial

	// Detector overrides text-encoding detection; nil uses the default.
	Detector encdetect.Detector
}

// Session owns the datasets and merged table of one preparation run.
type Session struct {
	cfg      Config
	datasets []*dataset.Dataset
	full     *dataset.Dataset
	hadError bool
}

// New builds a Session, filling Config defaults.
func New(cfg Config) *Session {
	if cfg.Basename == "" {
		cfg.Basename = "clust"
	}
	if cfg.MissingEncoding == "" {
		cfg.MissingEncoding = "?"
	}
	if cfg.Separator == "" {
		cfg.Separator = "\t"
	}
	if cfg.MaxDuration == nil {
		d := 3600
		cfg.MaxDuration = &d
	}
	if cfg.MaxTries == 0 {
		cfg.MaxTries = 200
	}
	if cfg.MaxCycles == 0 {
		cfg.MaxCycles = 1000
	}
	return &Session{cfg: cfg}
}

// HadError reports whether any operation of this session has failed.
func (s *Session) HadError() bool { return s.hadError }

// FullDataset returns the merged dataset, or nil before a successful merge.
func (s *Session) FullDataset() *dataset.Dataset { return s.full }

// run executes op under the sticky-error policy: skipped after a prior
// failure (unless tolerating errors), and failures are logged line by line
// rather than propagated.
func (s *Session) run(name string, op func() error) {
	if s.hadError && !s.cfg.TolerateError {
		log.Printf("skipping %s: a previous step failed", name)
		return
	}
	if err := op(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			log.Printf("error: %s", line)
		}
		s.hadError = true
	}
}

// AddInputData loads one tab-delimited file under the given role, cleans its
// column names, and verifies its data types. errVal is meaningful only for
// the two real-valued roles. A failure aborts this call only.
func (s *Session) AddInputData(path string, role dataset.Role, errVal float64) {
	s.run("add input data", func() error {
		if role.Real() {
			log.Printf("reading data file '%s' as '%s' with error %g", path, role, errVal)
		} else {
			log.Printf("reading data file '%s' as '%s'", path, role)
		}
		ds := &dataset.Dataset{}
		if err := ds.Read(path, role, errVal, s.cfg.Detector); err != nil {
			return err
		}
		if _, err := ds.CleanColumnNames(); err != nil {
			return err
		}
		if err := ds.CheckDataTypes(); err != nil {
			return err
		}
		s.datasets = append(s.datasets, ds)
		return nil
	})
}

// MergeDatasets outer-joins every loaded dataset into the session's full
// dataset and runs missing-value detection on the result.
func (s *Session) MergeDatasets() {
	s.run("merge datasets", func() error {
		if len(s.datasets) > 1 {
			log.Printf("merging input data")
		}
		full, err := dataset.Merge(s.datasets)
		if err != nil {
			return err
		}
		s.full = full
		nrows, ncols := full.Table.Shape()
		log.Printf("final table has %d rows and %d columns", nrows, ncols+1)
		log.Printf("searching for missing values")
		full.SearchMissingValues()
		return nil
	})
}
