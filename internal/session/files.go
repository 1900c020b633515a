package session

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"clusterprep/internal/dataset"
)

// runScriptName is fixed: the engine wrapper script callers and Run expect.
const runScriptName = "run_autoclass.sh"

func (s *Session) path(ext string) string {
	return filepath.Join(s.cfg.OutputDir, s.cfg.Basename+ext)
}

func (s *Session) requireMerged() error {
	if s.full == nil {
		return fmt.Errorf("no merged dataset; run MergeDatasets first")
	}
	return nil
}

// CreateDataFile writes the two delimited views of the merged table: the
// engine's primary input (no header, missing cells as the configured token)
// and a human-readable copy (header present, missing cells empty).
func (s *Session) CreateDataFile() {
	s.run("create data file", func() error {
		if err := s.requireMerged(); err != nil {
			return err
		}
		log.Printf("writing %s file", s.cfg.Basename+".db2")
		log.Printf("if any, missing values will be encoded as '%s'", s.cfg.MissingEncoding)
		content, err := s.renderData(false, s.cfg.MissingEncoding)
		if err != nil {
			return err
		}
		if err := os.WriteFile(s.path(".db2"), []byte(content), 0o644); err != nil {
			return err
		}
		log.Printf("writing %s file [for later use]", s.cfg.Basename+".tsv")
		content, err = s.renderData(true, "")
		if err != nil {
			return err
		}
		return os.WriteFile(s.path(".tsv"), []byte(content), 0o644)
	})
}

// renderData writes through encoding/csv so cells holding the separator, a
// quote or a newline come out quoted and survive a re-read.
func (s *Session) renderData(header bool, missing string) (string, error) {
	t := s.full.Table
	sep, _ := utf8.DecodeRuneInString(s.cfg.Separator)

	var b strings.Builder
	w := csv.NewWriter(&b)
	w.Comma = sep

	if header {
		rec := append([]string{t.KeyName}, t.Columns...)
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	rec := make([]string, 0, len(t.Columns)+1)
	for _, key := range t.Keys {
		rec = rec[:0]
		rec = append(rec, key)
		for _, v := range t.Rows[key] {
			if v == "" {
				v = missing
			}
			rec = append(rec, v)
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	w.Flush()
	return b.String(), w.Error()
}

// CreateHeaderFile writes the .hd2 attribute declarations. Attribute 0 is the
// row-key "dummy" column; data columns are 1-indexed. Real scalar columns are
// zero-anchored, so their observed minimum must be >= 0.0.
func (s *Session) CreateHeaderFile() {
	s.run("create header file", func() error {
		if err := s.requireMerged(); err != nil {
			return err
		}
		log.Printf("writing .hd2 file")
		content, err := s.renderHeader()
		if err != nil {
			return err
		}
		return os.WriteFile(s.path(".hd2"), []byte(content), 0o644)
	})
}

func (s *Session) renderHeader() (string, error) {
	t := s.full.Table
	var b strings.Builder
	fmt.Fprintf(&b, "num_db2_format_defs %d\n", 2)
	b.WriteString("\n")
	fmt.Fprintf(&b, "number_of_attributes %d\n", len(t.Columns)+1)
	fmt.Fprintf(&b, "separator_char '%s'\n", s.cfg.Separator)
	b.WriteString("\n")
	fmt.Fprintf(&b, "0 dummy nil \"%s\"\n", t.KeyName)
	for i, col := range t.Columns {
		meta := s.full.ColumnMeta[col]
		switch meta.Role {
		case dataset.RealScalar:
			// Zero-anchored model: the default zero_point of 0.0 is only valid
			// for non-negative data.
			min, err := t.Min(col)
			if err != nil {
				return "", err
			}
			if min < 0.0 {
				return "", fmt.Errorf("min value for %s should be >= 0.0, got %g", col, min)
			}
			fmt.Fprintf(&b, "%d real scalar \"%s\" zero_point 0.0 rel_error %g\n", i+1, col, meta.Err)
		case dataset.RealLocation:
			fmt.Fprintf(&b, "%d real location \"%s\" error %g\n", i+1, col, meta.Err)
		case dataset.Discrete:
			fmt.Fprintf(&b, "%d discrete nominal \"%s\" range %d\n", i+1, col, t.DistinctCount(col))
		default:
			return "", fmt.Errorf("column %q has unrecognized role %v", col, meta.Role)
		}
	}
	return b.String(), nil
}

// CreateModelFile writes the .model file: data columns partitioned by role and
// missing-flag into the engine's model terms, with attribute 0 (the row-key)
// always ignored.
func (s *Session) CreateModelFile() {
	s.run("create model file", func() error {
		if err := s.requireMerged(); err != nil {
			return err
		}
		log.Printf("writing .model file")
		content, err := s.renderModel()
		if err != nil {
			return err
		}
		return os.WriteFile(s.path(".model"), []byte(content), 0o644)
	})
}

func (s *Session) renderModel() (string, error) {
	var (
		realNormal  []string // real-valued, no missing data
		realMissing []string // real-valued, with missing data
		multinomial []string // discrete
	)
	for i, col := range s.full.Table.Columns {
		meta := s.full.ColumnMeta[col]
		idx := fmt.Sprintf("%d", i+1)
		switch meta.Role {
		case dataset.RealScalar, dataset.RealLocation:
			if meta.HasMissing {
				realMissing = append(realMissing, idx)
			} else {
				realNormal = append(realNormal, idx)
			}
		case dataset.Discrete:
			multinomial = append(multinomial, idx)
		default:
			return "", fmt.Errorf("column %q has unrecognized role %v", col, meta.Role)
		}
	}

	// One model term for the ignored label column, plus one per non-empty bucket.
	models := 1
	for _, bucket := range [][]string{realNormal, realMissing, multinomial} {
		if len(bucket) > 0 {
			models++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "model_index 0 %d\n", models)
	b.WriteString("ignore 0\n")
	if len(realNormal) > 0 {
		fmt.Fprintf(&b, "single_normal_cn %s\n", strings.Join(realNormal, " "))
	}
	if len(realMissing) > 0 {
		fmt.Fprintf(&b, "single_normal_cm %s\n", strings.Join(realMissing, " "))
	}
	if len(multinomial) > 0 {
		fmt.Fprintf(&b, "single_multinomial %s\n", strings.Join(multinomial, " "))
	}
	return b.String(), nil
}

// CreateSearchParamsFile writes the .s-params search controls: quiet,
// non-stopping, fresh search, the three tunables, and the fixed list of
// starting cluster-count guesses.
func (s *Session) CreateSearchParamsFile() {
	s.run("create search params file", func() error {
		log.Printf("writing .s-params file")
		var b strings.Builder
		b.WriteString("screen_output_p = false \n")
		b.WriteString("break_on_warnings_p = false \n")
		b.WriteString("force_new_search_p = true \n")
		// max_duration: maximum number of seconds to run; 0 runs until halted.
		fmt.Fprintf(&b, "max_duration = %d \n", *s.cfg.MaxDuration)
		fmt.Fprintf(&b, "max_n_tries = %d \n", s.cfg.MaxTries)
		fmt.Fprintf(&b, "max_cycles = %d \n", s.cfg.MaxCycles)
		b.WriteString("start_j_list = 2, 3, 5, 7, 10, 15, 25, 35, 45, 55, 65, 75, 85, 95, 105 \n")
		return os.WriteFile(s.path(".s-params"), []byte(b.String()), 0o644)
	})
}

// CreateReportParamsFile writes the fixed .r-params report controls.
func (s *Session) CreateReportParamsFile() {
	s.run("create report params file", func() error {
		log.Printf("writing .r-params file")
		var b strings.Builder
		b.WriteString("xref_class_report_att_list = 0, 1, 2 \n")
		b.WriteString("report_mode = \"data\" \n")
		b.WriteString("comment_data_headers_p = true \n")
		return os.WriteFile(s.path(".r-params"), []byte(b.String()), 0o644)
	})
}

// CreateRunScript writes the executable shell script that runs the engine's
// search and then its report generation. The autoclass binary must be on PATH.
func (s *Session) CreateRunScript() {
	s.run("create run script", func() error {
		log.Printf("writing run file")
		base := s.cfg.Basename
		var b strings.Builder
		fmt.Fprintf(&b, "autoclass -search %s.db2 %s.hd2 %s.model %s.s-params \n", base, base, base, base)
		fmt.Fprintf(&b, "autoclass -reports %s.results-bin %s.search %s.r-params \n", base, base, base)
		return os.WriteFile(filepath.Join(s.cfg.OutputDir, runScriptName), []byte(b.String()), 0o755)
	})
}

// PrepareInputFiles generates the whole file set in the engine's expected
// order: data, header, model, search params, report params, run script.
func (s *Session) PrepareInputFiles() {
	log.Printf("preparing data and parameters files")
	s.CreateDataFile()
	s.CreateHeaderFile()
	s.CreateModelFile()
	s.CreateSearchParamsFile()
	s.CreateReportParamsFile()
	s.CreateRunScript()
}

// PrintFiles concatenates the generated control files with banner separators
// for display. Files not yet generated are skipped.
func (s *Session) PrintFiles() string {
	banner := strings.Repeat("-", 74)
	names := []string{
		s.cfg.Basename + ".hd2",
		s.cfg.Basename + ".model",
		s.cfg.Basename + ".s-params",
		s.cfg.Basename + ".r-params",
		runScriptName,
	}
	var b strings.Builder
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(s.cfg.OutputDir, name))
		if err != nil {
			continue
		}
		b.WriteString("\n")
		b.WriteString(banner)
		b.WriteString("\n")
		b.WriteString(name)
		b.WriteString("\n")
		b.WriteString(banner)
		b.WriteString("\n")
		b.Write(content)
	}
	return b.String()
}
